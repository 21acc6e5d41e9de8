package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/avishkarm/clinic-scheduler/config"
	"github.com/avishkarm/clinic-scheduler/models"
	"github.com/avishkarm/clinic-scheduler/scheduler"
)

// Notifier emails the patient about booking changes, attaching an ICS so the
// event lands in their calendar app in one tap. It subscribes to the
// scheduler's booking events; whether it is enabled is decided once, at
// construction, not read from ambient state.
type Notifier struct {
	cfg config.NotificationsConfig
	db  *gorm.DB
	log *zap.Logger
}

func New(cfg config.NotificationsConfig, db *gorm.DB, log *zap.Logger) *Notifier {
	return &Notifier{cfg: cfg, db: db, log: log}
}

// Publish implements scheduler.EventSink. Delivery runs off the request
// goroutine so the write path never waits on SMTP.
func (n *Notifier) Publish(ctx context.Context, ev scheduler.BookingEvent) {
	if !n.cfg.Enabled {
		return
	}
	go func() {
		if err := n.notify(ev); err != nil {
			n.log.Warn("failed to send booking notification",
				zap.Uint("booking_id", ev.BookingID),
				zap.String("kind", string(ev.Kind)),
				zap.Error(err))
		}
	}()
}

func (n *Notifier) notify(ev scheduler.BookingEvent) error {
	var booking models.Booking
	if err := n.db.Preload("Provider").Preload("Subject").First(&booking, ev.BookingID).Error; err != nil {
		return err
	}
	if booking.Subject.Email == "" {
		return nil
	}

	subject, body := renderEmail(&booking, ev.Kind)

	method := "REQUEST"
	if ev.Kind == scheduler.EventCancelled || ev.Kind == scheduler.EventDeclined {
		method = "CANCEL"
	}
	return n.send(booking.Subject.Email, subject, body, &booking, method)
}

// SendReminder is called by the cron sweeper for upcoming bookings.
func (n *Notifier) SendReminder(booking *models.Booking) error {
	if !n.cfg.Enabled || booking.Subject.Email == "" {
		return nil
	}
	subject := fmt.Sprintf("Reminder: upcoming appointment with %s", booking.Provider.Name)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your upcoming appointment.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Provider:</strong> %s</li>
			<li><strong>Start:</strong> %s</li>
			<li><strong>End:</strong> %s</li>
			<li><strong>Location:</strong> %s</li>
		</ul>
		<p>If you need to reschedule or cancel, contact us as soon as possible.</p>
		<p>Best regards,</p>
		<p>Your Clinic Team</p>
	`, booking.Subject.Name, booking.Provider.Name,
		booking.Start.Format("2006-01-02 15:04"),
		booking.End.Format("2006-01-02 15:04"),
		booking.Location)

	return n.send(booking.Subject.Email, subject, body, booking, "REQUEST")
}

func renderEmail(booking *models.Booking, kind scheduler.EventKind) (subject, body string) {
	switch kind {
	case scheduler.EventCreated:
		subject = "Appointment booked"
	case scheduler.EventRescheduled:
		subject = "Appointment rescheduled"
	case scheduler.EventCancelled, scheduler.EventDeclined:
		subject = "Appointment cancelled"
	case scheduler.EventApproved:
		subject = "Appointment request approved"
	default:
		subject = "Appointment update"
	}

	body = fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your appointment has been %s.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Provider:</strong> %s</li>
			<li><strong>Start:</strong> %s</li>
			<li><strong>End:</strong> %s</li>
			<li><strong>Status:</strong> %s</li>
		</ul>
		<p>Best regards,</p>
		<p>Your Clinic Team</p>
	`, booking.Subject.Name, kind,
		booking.Provider.Name,
		booking.Start.Format("2006-01-02 15:04"),
		booking.End.Format("2006-01-02 15:04"),
		booking.Status)
	return subject, body
}

func (n *Notifier) send(to, subject, body string, booking *models.Booking, method string) error {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	from := n.cfg.From
	if from == "" {
		from = os.Getenv("EMAIL_USER")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	ics := CalendarText([]models.Booking{*booking}, method)
	m.Attach(fmt.Sprintf("appointment-%d.ics", booking.ID),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := io.WriteString(w, ics)
			return err
		}),
		gomail.SetHeader(map[string][]string{
			"Content-Type": {fmt.Sprintf("text/calendar; charset=UTF-8; method=%s", method)},
		}),
	)

	d := gomail.NewDialer(
		os.Getenv("SMTP_HOST"),
		port,
		os.Getenv("EMAIL_USER"),
		os.Getenv("EMAIL_PASS"),
	)
	return d.DialAndSend(m)
}
