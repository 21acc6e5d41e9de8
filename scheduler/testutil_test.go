package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avishkarm/clinic-scheduler/config"
	"github.com/avishkarm/clinic-scheduler/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection, so every session sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.AvailabilityWindow{},
		&models.Booking{},
	))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	cfg := config.Default().Scheduling
	return New(db, cfg), db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createWindow(t *testing.T, db *gorm.DB, providerID uint, weekday models.DayOfWeek, start, end string, slotMinutes int) *models.AvailabilityWindow {
	t.Helper()
	w := &models.AvailabilityWindow{
		ProviderID:  providerID,
		Weekday:     weekday,
		StartTime:   start,
		EndTime:     end,
		SlotMinutes: slotMinutes,
		IsActive:    true,
	}
	require.NoError(t, db.Create(w).Error)
	return w
}

func createBooking(t *testing.T, db *gorm.DB, providerID, subjectID uint, start, end time.Time, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{
		ProviderID: providerID,
		SubjectID:  subjectID,
		Start:      start,
		End:        end,
		Status:     status,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

// 2024-01-01 was a Monday; tests anchor on it so weekday math stays obvious.
func monday(hour, min int) time.Time {
	return time.Date(2024, 1, 1, hour, min, 0, 0, time.UTC)
}
