package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"sad/backend/internal/model"
)

// ── holiday calendar (iCalendar, RFC 5545) ──
//
// Import reads all-day VEVENTs: DTSTART gives the date, SUMMARY the name.
// Multi-day events expand to one holiday per day (DTEND is exclusive).
// Export writes one all-day VEVENT per holiday.

const (
	icsMaxFileSize  = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout = 30 * time.Second
	icsMaxEventDays = 31
	icsProductID    = "-//SAD//Holidays//ES"
)

// parsedHoliday one day read from a calendar
type parsedHoliday struct {
	Date time.Time
	Name string
}

// FetchICSContent downloads a calendar; webcal:// is fetched over https and
// the body is capped at icsMaxFileSize.
func FetchICSContent(ctx context.Context, client *http.Client, rawURL string) (io.ReadCloser, error) {
	u := strings.TrimSpace(rawURL)
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}
	if !strings.HasPrefix(u, "https://") && !strings.HasPrefix(u, "http://") {
		return nil, ErrInvalidCalendarURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, ErrInvalidCalendarURL
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch calendar: HTTP %d", resp.StatusCode)
	}
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// parseHolidayICS reads the holidays of a calendar. Events that cannot be
// used are reported in skipped, one line each.
func parseHolidayICS(r io.Reader) ([]parsedHoliday, []string, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidCalendar, err)
	}

	var out []parsedHoliday
	var skipped []string
	for _, evt := range cal.Events() {
		summary := evt.GetProperty(ics.ComponentPropertySummary)
		if summary == nil || strings.TrimSpace(summary.Value) == "" {
			skipped = append(skipped, fmt.Sprintf("event %s: missing SUMMARY", evt.Id()))
			continue
		}
		name := strings.TrimSpace(summary.Value)

		start, err := parseICSDate(evt.GetProperty(ics.ComponentPropertyDtStart))
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("%s: %v", name, err))
			continue
		}

		days := 1
		if end, err := parseICSDate(evt.GetProperty(ics.ComponentPropertyDtEnd)); err == nil && end.After(start) {
			days = int(end.Sub(start).Hours() / 24)
		}
		if days > icsMaxEventDays {
			skipped = append(skipped, fmt.Sprintf("%s: spans %d days", name, days))
			continue
		}

		for i := 0; i < days; i++ {
			out = append(out, parsedHoliday{Date: start.AddDate(0, 0, i), Name: name})
		}
	}
	return out, skipped, nil
}

// parseICSDate reads the civil date of a DTSTART/DTEND property. Date-times
// keep their local date (TZID honoured, UTC converted to Europe/Madrid).
func parseICSDate(prop *ics.IANAProperty) (time.Time, error) {
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing date")
	}
	val := strings.TrimSpace(prop.Value)

	if t, err := time.Parse("20060102", val); err == nil {
		return t, nil
	}

	loc := madrid()
	for k, v := range prop.ICalParameters {
		if strings.EqualFold(k, "TZID") && len(v) > 0 {
			if tz, err := time.LoadLocation(v[0]); err == nil {
				loc = tz
			}
		}
	}

	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return civilDate(t.In(madrid())), nil
	}
	if t, err := time.ParseInLocation("20060102T150405", val, loc); err == nil {
		return civilDate(t), nil
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", val)
}

func madrid() *time.Location {
	if loc, err := time.LoadLocation("Europe/Madrid"); err == nil {
		return loc
	}
	return time.UTC
}

// buildHolidayICS renders holidays as an iCalendar document.
func buildHolidayICS(holidays []model.Holiday, calName string, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(calName)

	for _, h := range holidays {
		evt := cal.AddEvent(h.HolidayID + "@sad")
		evt.SetDtStampTime(stamp)
		evt.SetAllDayStartAt(h.Date)
		evt.SetAllDayEndAt(h.Date.AddDate(0, 0, 1))
		evt.SetSummary(h.Name)
		if h.Region != "" {
			evt.SetDescription(fmt.Sprintf("%s holiday (%s)", h.Type, h.Region))
		} else {
			evt.SetDescription(fmt.Sprintf("%s holiday", h.Type))
		}
	}
	return cal.Serialize()
}
