package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/avishkarm/clinic-scheduler/models"
)

// icsEscape escapes text per RFC 5545: backslashes, semicolons, commas and
// newlines.
func icsEscape(value string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\n", `\n`,
		"\r", "",
	)
	return r.Replace(value)
}

// icsTime renders everything as UTC (Z) to avoid timezone headaches in
// calendar clients.
func icsTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func eventLines(b *models.Booking) []string {
	uid := fmt.Sprintf("booking-%d@clinic-scheduler", b.ID)
	summary := fmt.Sprintf("Appointment: %s with %s", b.Subject.Name, b.Provider.Name)

	var description []string
	if b.Reason != "" {
		description = append(description, "Reason: "+b.Reason)
	}
	description = append(description, "Status: "+string(b.Status))

	stamp := b.CreatedAt
	if stamp.IsZero() {
		stamp = b.Start
	}

	return []string{
		"BEGIN:VEVENT",
		"UID:" + uid,
		"DTSTAMP:" + icsTime(stamp),
		"DTSTART:" + icsTime(b.Start),
		"DTEND:" + icsTime(b.End),
		"SUMMARY:" + icsEscape(summary),
		"DESCRIPTION:" + icsEscape(strings.Join(description, "\n")),
		"LOCATION:" + icsEscape(b.Location),
		"END:VEVENT",
	}
}

// CalendarText wraps one or more bookings into a VCALENDAR. method is
// "REQUEST" for creates/reschedules/reminders and "CANCEL" for cancellations;
// "PUBLISH" suits plain downloads.
func CalendarText(bookings []models.Booking, method string) string {
	if method == "" {
		method = "PUBLISH"
	}
	lines := []string{
		"BEGIN:VCALENDAR",
		"PRODID:-//Clinic Scheduler//Bookings//EN",
		"VERSION:2.0",
		"CALSCALE:GREGORIAN",
		"METHOD:" + method,
	}
	for i := range bookings {
		lines = append(lines, eventLines(&bookings[i])...)
	}
	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n") + "\r\n"
}
