package service

import (
	"context"
	"errors"
	"testing"

	"sad/backend/internal/dto"
	"sad/backend/internal/model"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"9:30", 0, false},
		{"09:60", 0, false},
		{"ab:cd", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, err := parseClock(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("parseClock(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidClock) {
			t.Errorf("parseClock(%q) should fail, got %d", tt.in, got)
		}
	}
}

func TestBuildSchedule(t *testing.T) {
	tests := []struct {
		name    string
		in      map[string][]dto.TimeSlotDTO
		wantErr bool
	}{
		{"valid", map[string][]dto.TimeSlotDTO{"monday": {{Start: "09:00", End: "10:00"}}}, false},
		{"case and spaces", map[string][]dto.TimeSlotDTO{" Monday ": {{Start: "09:00", End: "10:00"}}}, false},
		{"unknown day", map[string][]dto.TimeSlotDTO{"lunes": {{Start: "09:00", End: "10:00"}}}, true},
		{"end before start", map[string][]dto.TimeSlotDTO{"monday": {{Start: "10:00", End: "09:00"}}}, true},
		{"zero length", map[string][]dto.TimeSlotDTO{"monday": {{Start: "10:00", End: "10:00"}}}, true},
		{"bad clock", map[string][]dto.TimeSlotDTO{"monday": {{Start: "9h", End: "10:00"}}}, true},
		{"overlap", map[string][]dto.TimeSlotDTO{"monday": {{Start: "09:00", End: "10:30"}, {Start: "10:00", End: "11:00"}}}, true},
		{"touching slots", map[string][]dto.TimeSlotDTO{"monday": {{Start: "09:00", End: "10:00"}, {Start: "10:00", End: "11:00"}}}, false},
		{"empty", map[string][]dto.TimeSlotDTO{"monday": {}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildSchedule(tt.in)
			if tt.wantErr && !errors.Is(err, ErrInvalidSchedule) {
				t.Errorf("expected ErrInvalidSchedule, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBuildSchedule_SortsSlots(t *testing.T) {
	s, err := buildSchedule(map[string][]dto.TimeSlotDTO{
		"friday": {{Start: "16:00", End: "17:00"}, {Start: "08:00", End: "09:00"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s["friday"][0].Start != "08:00" {
		t.Errorf("slots should be sorted by start, got %+v", s["friday"])
	}
	if weeklyMinutes(s) != 120 {
		t.Errorf("expected 120 weekly minutes, got %d", weeklyMinutes(s))
	}
}

func TestTypeApplies(t *testing.T) {
	tests := []struct {
		typ     string
		festive bool
		want    bool
	}{
		{model.AssignmentTypeLaborables, false, true},
		{model.AssignmentTypeLaborables, true, false},
		{model.AssignmentTypeFestivos, false, false},
		{model.AssignmentTypeFestivos, true, true},
		{model.AssignmentTypeFlexible, false, true},
		{model.AssignmentTypeFlexible, true, true},
		{"unknown", false, false},
	}
	for _, tt := range tests {
		if got := typeApplies(tt.typ, tt.festive); got != tt.want {
			t.Errorf("typeApplies(%s, %v) = %v", tt.typ, tt.festive, got)
		}
	}
}

func TestHolidayIndex_IsFestive(t *testing.T) {
	idx := newHolidayIndex([]model.Holiday{
		{Date: mustDate("2026-12-08"), Name: "Inmaculada", Region: ""},
		{Date: mustDate("2026-12-08"), Name: "Regional", Region: "ES-CT"},
	})

	if !idx.isFestive(mustDate("2026-10-17")) {
		t.Error("saturday should be festive")
	}
	if !idx.isFestive(mustDate("2026-10-18")) {
		t.Error("sunday should be festive")
	}
	if idx.isFestive(mustDate("2026-10-13")) {
		t.Error("plain tuesday should not be festive")
	}
	if !idx.isFestive(mustDate("2026-12-08")) {
		t.Error("holiday should be festive")
	}
	if h := idx.holiday(mustDate("2026-12-08")); h == nil || h.Region != "ES-CT" {
		t.Errorf("regional row should win, got %+v", h)
	}
}

func TestAssignmentApplies_DateSpan(t *testing.T) {
	end := mustDate("2026-10-31")
	a := &model.Assignment{
		AssignmentType: model.AssignmentTypeFlexible,
		Status:         model.AssignmentStatusActive,
		StartDate:      mustDate("2026-10-01"),
		EndDate:        &end,
	}

	if assignmentApplies(a, mustDate("2026-09-30"), false) {
		t.Error("day before start should not apply")
	}
	if !assignmentApplies(a, mustDate("2026-10-01"), false) {
		t.Error("start day is inclusive")
	}
	if !assignmentApplies(a, mustDate("2026-10-31"), false) {
		t.Error("end day is inclusive")
	}
	if assignmentApplies(a, mustDate("2026-11-01"), false) {
		t.Error("day after end should not apply")
	}

	a.Status = model.AssignmentStatusPaused
	if assignmentApplies(a, mustDate("2026-10-10"), false) {
		t.Error("paused assignment should not apply")
	}
}

func TestMonthRange(t *testing.T) {
	first, last := monthRange(2028, 2)
	if formatDate(first) != "2028-02-01" || formatDate(last) != "2028-02-29" {
		t.Errorf("unexpected range %s..%s", formatDate(first), formatDate(last))
	}
}

func TestCalendarSource_NormalizesRegion(t *testing.T) {
	repo, mocks := newTestRepos()
	mocks.holidays.add("2026-09-11", "Diada", "ES-CT")
	mocks.holidays.add("2026-05-02", "Comunidad", "ES-MD")

	idx, err := newCalendarSource(repo, "es-ct ").holidays(context.Background(), mustDate("2026-01-01"), mustDate("2026-12-31"))
	if err != nil {
		t.Fatalf("holidays failed: %v", err)
	}
	if !idx.isFestive(mustDate("2026-09-11")) {
		t.Error("ES-CT holiday should apply to a lower case region")
	}
	if idx.holiday(mustDate("2026-05-02")) != nil {
		t.Error("other regions must not apply")
	}
}
