package walkpad

import "fmt"

// FormatTime 秒数格式化为 M:SS，超过一小时为 H:MM:SS
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatDistance 距离（10 米单位）格式化为公里，两位小数
func FormatDistance(distance int) string {
	return fmt.Sprintf("%.2f", float64(distance)/100)
}

// FormatSpeed 速度（0.1 km/h 单位）格式化为 km/h，一位小数
func FormatSpeed(speed int) string {
	return fmt.Sprintf("%.1f", float64(speed)/10)
}
