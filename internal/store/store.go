// Package store persists race results with gorm, on postgres in production
// and sqlite locally.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DoyleJ11/typrr/internal/chat"
)

var ErrNotFound = errors.New("not found")
var ErrInvalidSort = errors.New("invalid sort key")

const (
	LeaderboardSize = 10
	RecentRaceCount = 10
	charsPerWord    = 5
)

type SortKey string

const (
	SortBest    SortKey = "wpm"
	SortAverage SortKey = "avg"
	SortTime    SortKey = "time"
)

// ParseSortKey accepts avg, wpm or time; empty means wpm.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortBest, nil
	case SortBest, SortAverage, SortTime:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSort, s)
	}
}

func (k SortKey) column() string {
	if k == SortAverage {
		return "average_wpm"
	}
	return "best_wpm"
}

type Store struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

// IsPostgres reports whether dsn selects the postgres driver.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects and migrates the schema.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("store")

	var dialector gorm.Dialector
	if IsPostgres(dsn) {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(zap.NewStdLog(log), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if !IsPostgres(dsn) {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		// sqlite allows one writer; a single connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&User{}, &TypeStat{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("database ready", zap.String("dialect", db.Dialector.Name()))
	return &Store{db: db, log: log, now: time.Now}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RecordResult upserts the participant, stores the stat and updates the
// aggregates in one transaction.
func (s *Store) RecordResult(ctx context.Context, p chat.Participant, wpm, accuracy, wordCount int) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "updated_at"}),
		}).Create(&User{ID: p.ID, Username: p.Name}).Error
		if err != nil {
			return err
		}

		var u User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&u, "id = ?", p.ID).Error; err != nil {
			return err
		}

		stat := TypeStat{UserID: p.ID, WPM: wpm, Accuracy: accuracy, WordCount: wordCount, Timestamp: s.now()}
		if err := tx.Create(&stat).Error; err != nil {
			return err
		}

		average := (u.AverageWPM*float64(u.TotalRaces) + float64(wpm)) / float64(u.TotalRaces+1)
		return tx.Model(&u).Updates(map[string]any{
			"total_races": u.TotalRaces + 1,
			"best_wpm":    max(u.BestWPM, wpm),
			"average_wpm": average,
			"total_chars": u.TotalChars + wordCount*charsPerWord,
		}).Error
	})
	if err != nil {
		return fmt.Errorf("record result for %s: %w", p.ID, err)
	}
	s.log.Debug("result recorded", zap.String("user", p.ID), zap.Int("wpm", wpm))
	return nil
}

// Leaderboard returns the top users with at least one race.
func (s *Store) Leaderboard(ctx context.Context, key SortKey) ([]LeaderboardEntry, error) {
	var out []LeaderboardEntry
	err := s.db.WithContext(ctx).
		Model(&User{}).
		Select("id AS user_id, username, best_wpm, average_wpm, total_races").
		Where("total_races > ?", 0).
		Order(key.column() + " DESC").
		Order("id").
		Limit(LeaderboardSize).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return out, nil
}

// Profile returns ErrNotFound for users who never raced.
func (s *Store) Profile(ctx context.Context, userID string) (Profile, error) {
	var u User
	err := s.db.WithContext(ctx).First(&u, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Profile{}, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", userID, err)
	}
	p := Profile{User: u}

	var latest TypeStat
	err = s.db.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp DESC").Order("id DESC").First(&latest).Error
	switch {
	case err == nil:
		p.Latest = &latest
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return Profile{}, fmt.Errorf("profile %s: %w", userID, err)
	}
	return p, nil
}

func (s *Store) RecentRaces(ctx context.Context, userID string) ([]TypeStat, error) {
	var out []TypeStat
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(RecentRaceCount).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("recent races %s: %w", userID, err)
	}
	return out, nil
}
