package service

import (
	"context"
	"fmt"
	"time"

	"menuqr/metrics"
	"menuqr/models"

	"gorm.io/gorm"
)

// AnalyticsWindowDays trailing window shown on the dashboard
const AnalyticsWindowDays = 14

const dayLayout = "2006-01-02"

// DailyCount visits of one server-local calendar day
type DailyCount struct {
	Date  string `json:"date" example:"2024-01-15"`
	Count int64  `json:"count"`
}

// DishViews visit count of one dish
type DishViews struct {
	DishID uint   `json:"dish_id"`
	Name   string `json:"name"`
	Views  int64  `json:"views"`
}

// VisitSummary dashboard analytics
type VisitSummary struct {
	Today      int64        `json:"today"`
	LastDays   int64        `json:"last_14_days"`
	Daily      []DailyCount `json:"daily"`
	TopDishes  []DishViews  `json:"top_dishes"`
	WindowDays int          `json:"window_days"`
}

// VisitRecorder appends visit events and aggregates them. Day boundaries use the
// server's local time zone.
type VisitRecorder struct {
	db  *gorm.DB
	now func() time.Time
}

// NewVisitRecorder creates a recorder using the wall clock
func NewVisitRecorder(db *gorm.DB) *VisitRecorder {
	return &VisitRecorder{db: db, now: time.Now}
}

// WithClock returns a copy using now as the clock
func (v *VisitRecorder) WithClock(now func() time.Time) *VisitRecorder {
	cp := *v
	cp.now = now
	return &cp
}

// Record appends one event. There is no deduplication.
func (v *VisitRecorder) Record(ctx context.Context, restaurantID uint, dishID *uint, kind string) error {
	if kind != models.VisitKindMenu && kind != models.VisitKindDish {
		return fmt.Errorf("unknown visit kind %q", kind)
	}
	ev := models.VisitEvent{
		RestaurantID: restaurantID,
		DishID:       dishID,
		Kind:         kind,
		VisitedAt:    v.now().In(time.Local),
	}
	if err := v.db.WithContext(ctx).Create(&ev).Error; err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	metrics.VisitsRecorded.WithLabelValues(kind).Inc()
	return nil
}

func startOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// windowStart local midnight of the first day of a trailing window of days days
// ending today
func (v *VisitRecorder) windowStart(days int) time.Time {
	if days < 1 {
		days = 1
	}
	return startOfDay(v.now()).AddDate(0, 0, -(days - 1))
}

func (v *VisitRecorder) since(ctx context.Context, restaurantID uint, from time.Time) *gorm.DB {
	return v.db.WithContext(ctx).Model(&models.VisitEvent{}).
		Where("restaurant_id = ? AND visited_at >= ?", restaurantID, from)
}

// CountToday events since local midnight
func (v *VisitRecorder) CountToday(ctx context.Context, restaurantID uint) (int64, error) {
	return v.CountLastDays(ctx, restaurantID, 1)
}

// CountLastDays events of the trailing days calendar days, today included
func (v *VisitRecorder) CountLastDays(ctx context.Context, restaurantID uint, days int) (int64, error) {
	var count int64
	if err := v.since(ctx, restaurantID, v.windowStart(days)).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count visits: %w", err)
	}
	return count, nil
}

// DailyCounts per-day counts of the trailing window in date order. Days without events
// are omitted unless fillGaps is set.
func (v *VisitRecorder) DailyCounts(ctx context.Context, restaurantID uint, days int, fillGaps bool) ([]DailyCount, error) {
	from := v.windowStart(days)
	var stamps []time.Time
	if err := v.since(ctx, restaurantID, from).Pluck("visited_at", &stamps).Error; err != nil {
		return nil, fmt.Errorf("daily visits: %w", err)
	}

	buckets := make(map[string]int64, days)
	for _, ts := range stamps {
		buckets[ts.In(time.Local).Format(dayLayout)]++
	}

	today := startOfDay(v.now())
	out := make([]DailyCount, 0, len(buckets))
	for day := from; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayLayout)
		n, ok := buckets[key]
		if !ok && !fillGaps {
			continue
		}
		out = append(out, DailyCount{Date: key, Count: n})
	}
	return out, nil
}

// TopDishes the n most viewed dishes, ties broken by dish id. Only events carrying a
// dish reference count; deleted dishes keep their name.
func (v *VisitRecorder) TopDishes(ctx context.Context, restaurantID uint, n int) ([]DishViews, error) {
	if n <= 0 {
		return []DishViews{}, nil
	}
	var rows []struct {
		DishID uint
		Views  int64
	}
	err := v.db.WithContext(ctx).Model(&models.VisitEvent{}).
		Select("dish_id, COUNT(*) AS views").
		Where("restaurant_id = ? AND dish_id IS NOT NULL", restaurantID).
		Group("dish_id").
		Order("views DESC, dish_id ASC").
		Limit(n).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top dishes: %w", err)
	}
	if len(rows) == 0 {
		return []DishViews{}, nil
	}

	ids := make([]uint, len(rows))
	for i, r := range rows {
		ids[i] = r.DishID
	}
	var dishes []models.Dish
	if err := v.db.WithContext(ctx).Unscoped().Select("id", "name").Where("id IN ?", ids).Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("top dish names: %w", err)
	}
	names := make(map[uint]string, len(dishes))
	for _, d := range dishes {
		names[d.ID] = d.Name
	}

	out := make([]DishViews, len(rows))
	for i, r := range rows {
		out[i] = DishViews{DishID: r.DishID, Name: names[r.DishID], Views: r.Views}
	}
	return out, nil
}

// Summary everything the dashboard shows
func (v *VisitRecorder) Summary(ctx context.Context, restaurantID uint, topN int, fillGaps bool) (*VisitSummary, error) {
	today, err := v.CountToday(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	last, err := v.CountLastDays(ctx, restaurantID, AnalyticsWindowDays)
	if err != nil {
		return nil, err
	}
	daily, err := v.DailyCounts(ctx, restaurantID, AnalyticsWindowDays, fillGaps)
	if err != nil {
		return nil, err
	}
	top, err := v.TopDishes(ctx, restaurantID, topN)
	if err != nil {
		return nil, err
	}
	return &VisitSummary{
		Today:      today,
		LastDays:   last,
		Daily:      daily,
		TopDishes:  top,
		WindowDays: AnalyticsWindowDays,
	}, nil
}
