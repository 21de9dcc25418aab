package walkpad

import "testing"

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{61, "1:01"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{-5, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.seconds); got != tt.want {
			t.Errorf("FormatTime(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatDistanceAndSpeed(t *testing.T) {
	if got := FormatDistance(123); got != "1.23" {
		t.Errorf("FormatDistance(123) = %q", got)
	}
	if got := FormatSpeed(35); got != "3.5" {
		t.Errorf("FormatSpeed(35) = %q", got)
	}
}

func TestEnumNames(t *testing.T) {
	if StateStarting.String() != "Starting" || BeltState(9).String() != "Unknown" {
		t.Error("unexpected belt state names")
	}
	if m, ok := ParseMode("manual"); !ok || m != ModeManual {
		t.Errorf("ParseMode(manual) = %v, %v", m, ok)
	}
	if _, ok := ParseMode("turbo"); ok {
		t.Error("ParseMode accepted unknown mode")
	}
	if Sensitivity(0).Valid() || !SensitivityLow.Valid() {
		t.Error("unexpected sensitivity validity")
	}
	if v, ok := ParseSensitivity("HIGH"); !ok || v != SensitivityHigh {
		t.Errorf("ParseSensitivity(HIGH) = %v, %v", v, ok)
	}
	if u, ok := ParseUnit("imperial"); !ok || u != UnitImperial {
		t.Errorf("ParseUnit(imperial) = %v, %v", u, ok)
	}
	if _, ok := ParseUnit("furlong"); ok {
		t.Error("ParseUnit accepted unknown unit")
	}
}
