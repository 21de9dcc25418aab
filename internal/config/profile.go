package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeviceProfile 设备识别规则，来自独立的 YAML 文件（configs/walkingpad.yaml）
type DeviceProfile struct {
	// NamePrefixes 扫描时按广播名前缀过滤（不区分大小写）
	NamePrefixes []string `yaml:"name_prefixes"`
	// BondedHints 从已配对设备中挑选目标时匹配的名称片段
	BondedHints []string `yaml:"bonded_hints"`
}

// DefaultProfile WalkingPad 系列默认规则
func DefaultProfile() DeviceProfile {
	return DeviceProfile{
		NamePrefixes: []string{"WalkingPad", "KS-", "R1", "R2", "A1", "C1", "C2", "X21", "P1"},
		BondedHints:  []string{"walkingpad", "r1", "r2", "ks-"},
	}
}

// LoadProfile 读取设备规则；path 为空返回默认规则，缺省字段回落到默认值
func LoadProfile(path string) (DeviceProfile, error) {
	def := DefaultProfile()
	if path == "" {
		return def, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return DeviceProfile{}, fmt.Errorf("read device profile: %w", err)
	}
	var p DeviceProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return DeviceProfile{}, fmt.Errorf("parse device profile: %w", err)
	}
	if len(p.NamePrefixes) == 0 {
		p.NamePrefixes = def.NamePrefixes
	}
	if len(p.BondedHints) == 0 {
		p.BondedHints = def.BondedHints
	}
	return p, nil
}
