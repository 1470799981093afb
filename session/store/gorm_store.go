package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"axiapac.com/timeclock/session"
	"axiapac.com/timeclock/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Executor runs a function against a schema-scoped database handle.
// *core.DatabaseManager satisfies it.
type Executor interface {
	Exec(ctx context.Context, fn func(db *gorm.DB) error) error
}

type SessionRow struct {
	Key       string    `gorm:"column:session_key;primaryKey;size:128"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SessionRow) TableName() string {
	return "clockin_sessions"
}

// GormStore shares session records between machines through MySQL.
type GormStore struct {
	db    Executor
	clock utils.Clock
}

func NewGormStore(db Executor, clock utils.Clock) *GormStore {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &GormStore{db: db, clock: clock}
}

func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.Exec(ctx, func(db *gorm.DB) error {
		if err := db.AutoMigrate(&SessionRow{}); err != nil {
			return fmt.Errorf("migrate clockin_sessions: %w", err)
		}
		return nil
	})
}

func (s *GormStore) Load(ctx context.Context, key string) (session.Record, error) {
	var row SessionRow
	err := s.db.Exec(ctx, func(db *gorm.DB) error {
		return db.Where("session_key = ?", key).Take(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return session.Record{}, session.ErrNoSession
	}
	if err != nil {
		return session.Record{}, fmt.Errorf("load session %s: %w", key, err)
	}

	if !s.clock.Now().Before(row.ExpiresAt) {
		if err := s.Delete(ctx, key); err != nil {
			return session.Record{}, err
		}
		return session.Record{}, session.ErrNoSession
	}
	return decode(row.Payload)
}

func (s *GormStore) Save(ctx context.Context, key string, rec session.Record, expires time.Time) error {
	payload, err := encode(rec)
	if err != nil {
		return err
	}
	row := SessionRow{
		Key:       key,
		Payload:   payload,
		ExpiresAt: expires.UTC(),
		UpdatedAt: s.clock.Now().UTC(),
	}
	return s.db.Exec(ctx, func(db *gorm.DB) error {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("save session %s: %w", key, err)
		}
		return nil
	})
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.Exec(ctx, func(db *gorm.DB) error {
		if err := db.Where("session_key = ?", key).Delete(&SessionRow{}).Error; err != nil {
			return fmt.Errorf("delete session %s: %w", key, err)
		}
		return nil
	})
}
