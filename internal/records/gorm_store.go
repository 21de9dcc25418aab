package records

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
	"github.com/taoyao-code/walkpad-gateway/internal/storage/models"
)

// GormStore 基于 GORM 的 PostgreSQL 实现
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Save 唯一键冲突时忽略，RowsAffected 为 0 即重复记录
func (s *GormStore) Save(ctx context.Context, e Entry) (bool, error) {
	row := toModel(e)
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_address"}, {Name: "on_time"}, {Name: "start_time"}},
			DoNothing: true,
		}).
		Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) List(ctx context.Context, address string, limit int) ([]Entry, error) {
	q := s.db.WithContext(ctx).Order("received_at DESC")
	if address != "" {
		q = q.Where("device_address = ?", address)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.WorkoutRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromModel(r))
	}
	return out, nil
}

func toModel(e Entry) models.WorkoutRecord {
	return models.WorkoutRecord{
		DeviceAddress: e.Device.Address,
		DeviceName:    e.Device.Name,
		OnTime:        int32(e.Record.OnTime),
		StartTime:     int32(e.Record.StartTime),
		Duration:      int32(e.Record.Duration),
		Distance:      int32(e.Record.Distance),
		Steps:         int32(e.Record.Steps),
		Remaining:     int32(e.Record.Remaining),
		ReceivedAt:    e.ReceivedAt,
	}
}

func fromModel(r models.WorkoutRecord) Entry {
	return Entry{
		Device: ble.Handle{Address: r.DeviceAddress, Name: r.DeviceName},
		Record: walkpad.Record{
			OnTime:    int(r.OnTime),
			StartTime: int(r.StartTime),
			Duration:  int(r.Duration),
			Distance:  int(r.Distance),
			Steps:     int(r.Steps),
			Remaining: int(r.Remaining),
		},
		ReceivedAt: r.ReceivedAt,
	}
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*GormStore)(nil)
)
