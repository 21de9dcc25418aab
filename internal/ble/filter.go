package ble

import "strings"

// DefaultNamePrefixes WalkingPad 系列设备广播名前缀
var DefaultNamePrefixes = []string{"WalkingPad", "KS-", "R1", "R2", "A1", "C1", "C2", "X21", "P1"}

// DefaultBondedHints 从已配对设备中挑选目标时匹配的名称片段
var DefaultBondedHints = []string{"walkingpad", "r1", "r2", "ks-"}

// Filter 扫描过滤条件
type Filter struct {
	NamePrefixes []string
	AcceptAll    bool
}

// Match 名称前缀匹配，不区分大小写
func (f Filter) Match(name string) bool {
	if f.AcceptAll {
		return true
	}
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)
	for _, p := range f.NamePrefixes {
		if strings.HasPrefix(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// PickBonded 按名称片段挑选已配对设备，都不匹配时取第一个
func PickBonded(devices []Handle, hints []string) (Handle, bool) {
	if len(devices) == 0 {
		return Handle{}, false
	}
	for _, d := range devices {
		name := strings.ToLower(d.Name)
		for _, h := range hints {
			if strings.Contains(name, strings.ToLower(h)) {
				return d, true
			}
		}
	}
	return devices[0], true
}
