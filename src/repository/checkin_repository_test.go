package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"journalapi/src/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var sqliteDBCounter int

func newSqliteDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()

	sqliteDBCounter++
	dsn := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared", sqliteDBCounter)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	return db
}

func TestCheckInRepositoryUpsert(t *testing.T) {
	db := newSqliteDB(t, &model.DailyCheckIn{})
	repo := (&CheckInRepository{}).WithDB(db)
	ctx := context.Background()

	morning := time.Date(2025, 3, 4, 8, 15, 0, 0, time.UTC)

	first := &model.DailyCheckIn{
		UserID:      1,
		CheckinDate: morning,
		Mood:        "calm",
		Confidence:  7,
		Stress:      3,
		SleepHours:  7.5,
		Focus:       8,
	}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("unexpected error on first upsert: %v", err)
	}

	if !first.CheckinDate.Equal(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("check-in date not truncated to midnight UTC: %v", first.CheckinDate)
	}

	// A second write for the same calendar day must replace, not duplicate.
	evening := time.Date(2025, 3, 4, 21, 40, 0, 0, time.UTC)
	second := &model.DailyCheckIn{
		UserID:      1,
		CheckinDate: evening,
		Mood:        "tired",
		Confidence:  4,
		Stress:      8,
		SleepHours:  7.5,
		Focus:       5,
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("unexpected error on second upsert: %v", err)
	}

	var count int64
	if err := db.Model(&model.DailyCheckIn{}).Where("user_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("unexpected error counting check-ins: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single check-in row per day, got %d", count)
	}

	stored, err := repo.FindByDate(ctx, 1, morning)
	if err != nil {
		t.Fatalf("unexpected error fetching check-in: %v", err)
	}
	if stored == nil {
		t.Fatal("expected a check-in for the day, got nil")
	}
	if stored.Mood != "tired" || stored.Confidence != 4 || stored.Stress != 8 {
		t.Fatalf("second upsert did not replace the first: %+v", stored)
	}
}

func TestCheckInRepositoryFindByDateMissing(t *testing.T) {
	db := newSqliteDB(t, &model.DailyCheckIn{})
	repo := (&CheckInRepository{}).WithDB(db)

	checkin, err := repo.FindByDate(context.Background(), 42, time.Now().UTC())
	if err != nil {
		t.Fatalf("missing check-in must not be an error, got: %v", err)
	}
	if checkin != nil {
		t.Fatalf("expected nil for missing check-in, got %+v", checkin)
	}
}

func TestCheckInRepositoryFindSince(t *testing.T) {
	db := newSqliteDB(t, &model.DailyCheckIn{})
	repo := (&CheckInRepository{}).WithDB(db)
	ctx := context.Background()

	days := []time.Time{
		time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC),
	}
	for i, day := range days {
		checkin := &model.DailyCheckIn{
			UserID:      1,
			CheckinDate: day,
			Confidence:  5 + i,
			Stress:      5,
			SleepHours:  7,
		}
		if err := repo.Upsert(ctx, checkin); err != nil {
			t.Fatalf("unexpected error seeding check-in %d: %v", i, err)
		}
	}

	// Another user's check-in must not leak into the result.
	other := &model.DailyCheckIn{UserID: 2, CheckinDate: days[1], Confidence: 9, Stress: 1, SleepHours: 8}
	if err := repo.Upsert(ctx, other); err != nil {
		t.Fatalf("unexpected error seeding other user's check-in: %v", err)
	}

	history, err := repo.FindSince(ctx, 1, time.Date(2025, 3, 2, 23, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error fetching history: %v", err)
	}

	if len(history) != 2 {
		t.Fatalf("expected 2 check-ins since March 2nd, got %d", len(history))
	}
	if !history[0].CheckinDate.Before(history[1].CheckinDate) {
		t.Fatalf("history must be oldest first: %+v", history)
	}
}
