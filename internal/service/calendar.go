package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"sad/backend/internal/dto"
	"sad/backend/internal/model"
	"sad/backend/internal/repository"
)

// ── date and clock helpers ──
//
// Dates are civil dates carried as UTC midnight; "HH:MM" clocks are minutes
// after midnight.

var (
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidClock = errors.New("invalid time, expected HH:MM")
)

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func formatDate(t time.Time) string {
	return t.Format(dto.DateLayout)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(dto.TimestampLayout)
}

func formatOptionalTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTimestamp(*t)
}

// monthRange first and last day of a month.
func monthRange(year, month int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, ErrInvalidClock
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, ErrInvalidClock
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, ErrInvalidClock
	}
	return h*60 + m, nil
}

// slotMinutes length of a validated slot; malformed slots count as zero.
func slotMinutes(ts model.TimeSlot) int {
	start, err1 := parseClock(ts.Start)
	end, err2 := parseClock(ts.End)
	if err1 != nil || err2 != nil || end <= start {
		return 0
	}
	return end - start
}

func weeklyMinutes(s model.WeeklySchedule) int {
	total := 0
	for _, slots := range s {
		for _, ts := range slots {
			total += slotMinutes(ts)
		}
	}
	return total
}

func hours(minutes int) float64 {
	return float64(minutes) / 60
}

// ── weekly schedule validation ──

var ErrInvalidSchedule = errors.New("invalid weekly schedule")

func isWeekdayKey(k string) bool {
	for _, w := range model.WeekdayKeys {
		if w == k {
			return true
		}
	}
	return false
}

// buildSchedule validates the request schedule: known weekday keys, well
// formed clocks, start before end and no overlap within a day. Slots come
// back sorted by start.
func buildSchedule(in map[string][]dto.TimeSlotDTO) (model.WeeklySchedule, error) {
	out := model.WeeklySchedule{}
	for day, slots := range in {
		key := strings.ToLower(strings.TrimSpace(day))
		if !isWeekdayKey(key) {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidSchedule, day)
		}
		if len(slots) == 0 {
			continue
		}

		type span struct {
			start, end int
			slot       model.TimeSlot
		}
		spans := make([]span, 0, len(slots))
		for _, ts := range slots {
			start, err := parseClock(ts.Start)
			if err != nil {
				return nil, fmt.Errorf("%w: %s start %q", ErrInvalidSchedule, key, ts.Start)
			}
			end, err := parseClock(ts.End)
			if err != nil {
				return nil, fmt.Errorf("%w: %s end %q", ErrInvalidSchedule, key, ts.End)
			}
			if end <= start {
				return nil, fmt.Errorf("%w: %s slot %s-%s ends before it starts", ErrInvalidSchedule, key, ts.Start, ts.End)
			}
			spans = append(spans, span{start: start, end: end, slot: model.TimeSlot{Start: ts.Start, End: ts.End}})
		}

		sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
		for i := 1; i < len(spans); i++ {
			if spans[i].start < spans[i-1].end {
				return nil, fmt.Errorf("%w: %s slots %s-%s and %s-%s overlap", ErrInvalidSchedule, key,
					spans[i-1].slot.Start, spans[i-1].slot.End, spans[i].slot.Start, spans[i].slot.End)
			}
		}

		sorted := make([]model.TimeSlot, len(spans))
		for i, sp := range spans {
			sorted[i] = sp.slot
		}
		out[key] = sorted
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no visit slots", ErrInvalidSchedule)
	}
	return out, nil
}

func scheduleToDTO(s model.WeeklySchedule) map[string][]dto.TimeSlotDTO {
	out := make(map[string][]dto.TimeSlotDTO, len(s))
	for day, slots := range s {
		list := make([]dto.TimeSlotDTO, len(slots))
		for i, ts := range slots {
			list[i] = dto.TimeSlotDTO{Start: ts.Start, End: ts.End}
		}
		out[day] = list
	}
	return out
}

// ── applicability ──

// holidayIndex holidays keyed by date
type holidayIndex map[string]*model.Holiday

func newHolidayIndex(list []model.Holiday) holidayIndex {
	idx := make(holidayIndex, len(list))
	for i := range list {
		key := formatDate(list[i].Date)
		// a regional row wins over a national row of the same date
		if cur, ok := idx[key]; ok && cur.Region != "" {
			continue
		}
		idx[key] = &list[i]
	}
	return idx
}

func (h holidayIndex) holiday(d time.Time) *model.Holiday {
	return h[formatDate(d)]
}

// isFestive Saturdays, Sundays and holidays.
func (h holidayIndex) isFestive(d time.Time) bool {
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return true
	}
	return h.holiday(d) != nil
}

// typeApplies whether an assignment type works on a day.
func typeApplies(assignmentType string, festive bool) bool {
	switch assignmentType {
	case model.AssignmentTypeLaborables:
		return !festive
	case model.AssignmentTypeFestivos:
		return festive
	case model.AssignmentTypeFlexible:
		return true
	default:
		return false
	}
}

// assignmentApplies an active assignment whose span contains d and whose
// type works on d.
func assignmentApplies(a *model.Assignment, d time.Time, festive bool) bool {
	if a.Status != model.AssignmentStatusActive {
		return false
	}
	day := civilDate(d)
	if day.Before(civilDate(a.StartDate)) {
		return false
	}
	if a.EndDate != nil && day.After(civilDate(*a.EndDate)) {
		return false
	}
	return typeApplies(a.AssignmentType, festive)
}

// visit one scheduled slot of one assignment on a day
type visit struct {
	assignment *model.Assignment
	slot       model.TimeSlot
	start      int
	minutes    int
}

// visitsOn expands the applicable assignments into visits ordered by start
// time, then by user name.
func visitsOn(assignments []model.Assignment, d time.Time, festive bool) []visit {
	var out []visit
	for i := range assignments {
		a := &assignments[i]
		if !assignmentApplies(a, d, festive) {
			continue
		}
		for _, ts := range a.Schedule.SlotsFor(d.Weekday()) {
			start, err := parseClock(ts.Start)
			if err != nil {
				continue
			}
			out = append(out, visit{assignment: a, slot: ts, start: start, minutes: slotMinutes(ts)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].start != out[j].start {
			return out[i].start < out[j].start
		}
		return userName(out[i].assignment) < userName(out[j].assignment)
	})
	return out
}

func userName(a *model.Assignment) string {
	if a.User == nil {
		return ""
	}
	return a.User.FullName()
}

// ── holiday source ──

// calendarSource loads the holidays that apply to the configured region.
type calendarSource struct {
	repo   *repository.Repository
	region string
}

func newCalendarSource(repo *repository.Repository, region string) *calendarSource {
	return &calendarSource{repo: repo, region: normalizeRegion(region)}
}

// normalizeRegion region codes are stored upper case, e.g. ES-CT.
func normalizeRegion(region string) string {
	return strings.ToUpper(strings.TrimSpace(region))
}

func (c *calendarSource) holidays(ctx context.Context, from, to time.Time) (holidayIndex, error) {
	list, err := c.repo.Holiday.ListRange(ctx, from, to, c.region)
	if err != nil {
		return nil, err
	}
	return newHolidayIndex(list), nil
}
