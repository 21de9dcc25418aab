package models

import (
	"time"
)

// 注意：不使用 gorm.Model，显式声明每个字段，避免隐式 DeletedAt

// WorkoutRecord 映射 workout_records 表
// 同一设备的 (on_time, start_time) 唯一，重复同步不会产生重复行
type WorkoutRecord struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// 设备蓝牙地址
	DeviceAddress string `gorm:"column:device_address;type:text;not null;uniqueIndex:uq_workout_device_time,priority:1"`
	DeviceName    string `gorm:"column:device_name;type:text"`
	// 设备侧时间戳（秒）
	OnTime    int32 `gorm:"column:on_time;not null;uniqueIndex:uq_workout_device_time,priority:2"`
	StartTime int32 `gorm:"column:start_time;not null;uniqueIndex:uq_workout_device_time,priority:3"`
	// 时长（秒）、距离（10 米）、步数
	Duration  int32 `gorm:"column:duration;not null"`
	Distance  int32 `gorm:"column:distance;not null"`
	Steps     int32 `gorm:"column:steps;not null"`
	Remaining int32 `gorm:"column:remaining;not null;default:0"`
	// 网关收到的时间
	ReceivedAt time.Time `gorm:"column:received_at;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (WorkoutRecord) TableName() string { return "workout_records" }
