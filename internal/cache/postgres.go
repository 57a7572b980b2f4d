package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketLens/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type barRow struct {
	Symbol    string    `gorm:"primaryKey;size:20"`
	Date      time.Time `gorm:"primaryKey;type:date"`
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
	FetchedAt time.Time `gorm:"index;not null"`
}

func (barRow) TableName() string { return "bars" }

type entryRow struct {
	Symbol    string    `gorm:"primaryKey;size:20"`
	Query     string    `gorm:"size:32;not null"`
	BarCount  int       `gorm:"not null"`
	FirstDate time.Time `gorm:"type:date;not null"`
	LastDate  time.Time `gorm:"type:date;not null"`
	FetchedAt time.Time `gorm:"index;not null"`
}

func (entryRow) TableName() string { return "cache_entries" }

type preferenceRow struct {
	ID        uint   `gorm:"primaryKey"`
	Symbol    string `gorm:"size:20;index;not null"`
	Period    string `gorm:"size:32;not null"`
	CreatedAt time.Time
}

func (preferenceRow) TableName() string { return "user_preferences" }

// PostgresStore persists the cache to PostgreSQL through gorm.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects to dsn, configures the pool and migrates the schema.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(&barRow{}, &entryRow{}, &preferenceRow{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Msg("postgres cache connected and migrated")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Entry(ctx context.Context, symbol string) (Entry, error) {
	var row entryRow
	err := s.db.WithContext(ctx).First(&row, "symbol = ?", symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("read entry %s: %w", symbol, err)
	}
	return Entry{
		Symbol:    row.Symbol,
		Query:     row.Query,
		BarCount:  row.BarCount,
		FirstDate: model.DateOf(row.FirstDate),
		LastDate:  model.DateOf(row.LastDate),
		FetchedAt: row.FetchedAt.UTC(),
	}, nil
}

func (s *PostgresStore) Bars(ctx context.Context, e Entry) (model.BarSeries, error) {
	var rows []barRow
	err := s.db.WithContext(ctx).
		Where("symbol = ? AND date BETWEEN ? AND ?", e.Symbol, e.FirstDate, e.LastDate).
		Order("date").
		Find(&rows).Error
	if err != nil {
		return model.BarSeries{}, fmt.Errorf("read bars %s: %w", e.Symbol, err)
	}
	bars := make([]model.Bar, len(rows))
	for i, r := range rows {
		bars[i] = model.Bar{
			Date:   model.DateOf(r.Date),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}
	if err := checkConsistency(e, bars); err != nil {
		return model.BarSeries{}, err
	}
	return seriesFor(e, bars), nil
}

func (s *PostgresStore) Save(ctx context.Context, symbol string, q model.Query, series model.BarSeries, fetchedAt time.Time) error {
	rows := make([]barRow, len(series.Bars))
	for i, b := range series.Bars {
		rows[i] = barRow{
			Symbol:    symbol,
			Date:      b.Date,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
			FetchedAt: fetchedAt,
		}
	}
	e := newEntry(symbol, q, series, fetchedAt)
	entry := entryRow{
		Symbol:    e.Symbol,
		Query:     e.Query,
		BarCount:  e.BarCount,
		FirstDate: e.FirstDate,
		LastDate:  e.LastDate,
		FetchedAt: e.FetchedAt,
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if n := len(rows); n > 0 {
			err := tx.Where("symbol = ? AND date >= ? AND date <= ?", symbol, rows[0].Date, rows[n-1].Date).
				Delete(&barRow{}).Error
			if err != nil {
				return fmt.Errorf("clear window %s: %w", symbol, err)
			}
			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
				UpdateAll: true,
			}).CreateInBatches(rows, 500).Error
			if err != nil {
				return fmt.Errorf("upsert bars %s: %w", symbol, err)
			}
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			UpdateAll: true,
		}).Create(&entry).Error
		if err != nil {
			return fmt.Errorf("upsert entry %s: %w", symbol, err)
		}
		return nil
	})
}

func (s *PostgresStore) SavePreference(ctx context.Context, symbol string, q model.Query, at time.Time) error {
	return s.db.WithContext(ctx).Create(&preferenceRow{Symbol: symbol, Period: q.String(), CreatedAt: at}).Error
}

func (s *PostgresStore) EvictBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("fetched_at < ?", cutoff).Delete(&entryRow{})
		if res.Error != nil {
			return fmt.Errorf("evict entries: %w", res.Error)
		}
		n = res.RowsAffected
		if err := tx.Where("fetched_at < ?", cutoff).Delete(&barRow{}).Error; err != nil {
			return fmt.Errorf("evict bars: %w", err)
		}
		return nil
	})
	return n, err
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	log.Info().Msg("closing postgres cache")
	return sqlDB.Close()
}
