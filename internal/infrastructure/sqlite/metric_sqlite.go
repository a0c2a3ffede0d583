// Package sqlite implements the metric-row store on gorm. The default
// deployment uses SQLite, but the repository works against any gorm
// dialector (the Postgres driver is selected through configuration).
package sqlite

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stockintel/internal/feature/marketdata/domain/entity"
	marketusecase "stockintel/internal/feature/marketdata/usecase"
	quotesusecase "stockintel/internal/feature/quotes/usecase"
)

// MetricRowModel is the persisted shape of entity.MetricRow. Dates are
// ISO-8601 text so lexicographic ordering matches date ordering. The
// unique (symbol, date) index is the natural key; AppendBatch upserts
// on it, so re-ingesting a covered range never duplicates rows.
type MetricRowModel struct {
	ID     uint   `gorm:"primaryKey"`
	Symbol string `gorm:"size:32;not null;uniqueIndex:stock_sym_date,priority:1"`
	Date   string `gorm:"size:10;not null;uniqueIndex:stock_sym_date,priority:2"`

	Open   float64 `gorm:"not null"`
	High   float64 `gorm:"not null"`
	Low    float64 `gorm:"not null"`
	Close  float64 `gorm:"not null"`
	Volume int64   `gorm:"not null;default:0"`

	DailyReturn float64 `gorm:"column:daily_return"`
	MA7         float64 `gorm:"column:ma_7"`
	RollingHigh float64 `gorm:"column:rolling_high"`
	RollingLow  float64 `gorm:"column:rolling_low"`
	Volatility  float64
}

// TableName keeps the original table name.
func (MetricRowModel) TableName() string {
	return "stock_data"
}

type metricGorm struct {
	db *gorm.DB
}

var _ marketusecase.MetricStore = (*metricGorm)(nil)
var _ quotesusecase.SeriesRepository = (*metricGorm)(nil)

// NewMetricRepository creates the gorm-backed metric-row repository.
func NewMetricRepository(db *gorm.DB) *metricGorm {
	return &metricGorm{db: db}
}

func toModel(r entity.MetricRow) MetricRowModel {
	return MetricRowModel{
		Symbol:      r.Symbol,
		Date:        r.Date.Format(entity.DateLayout),
		Open:        r.Open,
		High:        r.High,
		Low:         r.Low,
		Close:       r.Close,
		Volume:      r.Volume,
		DailyReturn: r.DailyReturn,
		MA7:         r.MA7,
		RollingHigh: r.RollingHigh,
		RollingLow:  r.RollingLow,
		Volatility:  r.Volatility,
	}
}

func toEntity(m MetricRowModel) (entity.MetricRow, error) {
	d, err := parseDate(m.Date)
	if err != nil {
		return entity.MetricRow{}, fmt.Errorf("row %d: %w", m.ID, err)
	}
	return entity.MetricRow{
		Bar: entity.Bar{
			Symbol: m.Symbol,
			Date:   d,
			Open:   m.Open,
			High:   m.High,
			Low:    m.Low,
			Close:  m.Close,
			Volume: m.Volume,
		},
		DailyReturn: m.DailyReturn,
		MA7:         m.MA7,
		RollingHigh: m.RollingHigh,
		RollingLow:  m.RollingLow,
		Volatility:  m.Volatility,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(entity.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// AppendBatch bulk-inserts rows, replacing the derived and raw columns
// on (symbol, date) conflict.
func (r *metricGorm) AppendBatch(ctx context.Context, rows []entity.MetricRow) error {
	if len(rows) == 0 {
		return nil
	}
	ms := make([]MetricRowModel, 0, len(rows))
	for _, row := range rows {
		ms = append(ms, toModel(row))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"open", "high", "low", "close", "volume",
			"daily_return", "ma_7", "rolling_high", "rolling_low", "volatility",
		}),
	}).Create(&ms).Error
}

// Clear deletes all rows for the symbol.
func (r *metricGorm) Clear(ctx context.Context, symbol string) error {
	return r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Delete(&MetricRowModel{}).Error
}

// ClearAll deletes every row.
func (r *metricGorm) ClearAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&MetricRowModel{}).Error
}

// HasSchema reports whether the stock_data table exists yet. It stays
// false on a fresh database until the ingest pipeline migrates.
func (r *metricGorm) HasSchema(ctx context.Context) (bool, error) {
	return r.db.WithContext(ctx).Migrator().HasTable(&MetricRowModel{}), nil
}

// DistinctSymbols returns the stored symbols, ascending, deduplicated.
func (r *metricGorm) DistinctSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	if err := r.db.WithContext(ctx).
		Model(&MetricRowModel{}).
		Distinct("symbol").
		Order("symbol ASC").
		Pluck("symbol", &symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// FindRecent returns the most recent `limit` rows for the symbol in
// ascending date order (fetched descending, then reversed).
func (r *metricGorm) FindRecent(ctx context.Context, symbol string, limit int) ([]entity.MetricRow, error) {
	var ms []MetricRowModel
	if err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("date DESC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	rows := make([]entity.MetricRow, 0, len(ms))
	for i := len(ms) - 1; i >= 0; i-- {
		row, err := toEntity(ms[i])
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
