package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/avishkarm/clinic-scheduler/config"
	"github.com/avishkarm/clinic-scheduler/models"
	"github.com/avishkarm/clinic-scheduler/notify"
)

// StartReminderJobs runs the reminder sweeper on the configured schedule.
// Each pass looks for active bookings starting roughly 24h and 2h out and
// emails each at most once, stamping the booking so a later pass skips it.
func StartReminderJobs(cfg config.RemindersConfig, db *gorm.DB, notifier *notify.Notifier) *cron.Cron {
	if !cfg.Enabled {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(cfg.Schedule, func() {
		sendDueReminders(cfg, db, notifier)
	})
	if err != nil {
		log.Fatalf("Failed to add reminder cron job: %v", err)
	}
	c.Start()
	log.Println("Reminder sweeper started")
	return c
}

func sendDueReminders(cfg config.RemindersConfig, db *gorm.DB, notifier *notify.Notifier) {
	now := time.Now()
	sweep(db, notifier, now, 24*time.Hour, cfg.WindowMinutes, "reminder_24h_sent_at")
	sweep(db, notifier, now, 2*time.Hour, cfg.WindowMinutes, "reminder_2h_sent_at")
}

// sweep finds bookings whose start is ~ahead from now (± the tolerance
// window) that have not been reminded via sentColumn yet.
func sweep(db *gorm.DB, notifier *notify.Notifier, now time.Time, ahead time.Duration, windowMinutes int, sentColumn string) {
	target := now.Add(ahead)
	tolerance := time.Duration(windowMinutes) * time.Minute

	var bookings []models.Booking
	err := db.Preload("Provider").Preload("Subject").
		Where("status IN ?", models.ActiveStatuses).
		Where("start >= ? AND start < ?", target.Add(-tolerance), target.Add(tolerance)).
		Where(sentColumn + " IS NULL").
		Order("start asc").
		Find(&bookings).Error
	if err != nil {
		log.Printf("Error fetching bookings for reminders: %v", err)
		return
	}

	for i := range bookings {
		booking := &bookings[i]
		if err := notifier.SendReminder(booking); err != nil {
			log.Printf("Failed to send reminder for booking %d: %v", booking.ID, err)
			continue
		}
		if err := db.Model(booking).Update(sentColumn, now).Error; err != nil {
			log.Printf("Failed to stamp %s for booking %d: %v", sentColumn, booking.ID, err)
		}
	}
}
