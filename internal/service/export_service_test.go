package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"sad/backend/internal/model"
)

func TestExportWorkerMonth(t *testing.T) {
	assignments, mocks, _ := setupTestAssignmentService()
	repo := assignments.(*assignmentService).repo
	svc := NewExportService(repo, newCalendarSource(repo, "ES-CT"), zap.NewNop())

	w := seedWorker(mocks, "ana")
	w.Surname = "Puig"
	u := seedUser(mocks, "josep", 10)
	u.Address = "Carrer Major 1"

	// February 2026: Mondays 2 9 16 23, Sundays 1 8 15 22; the 16th is a holiday
	createAssignment(t, assignments, w.WorkerID, u.UserID, model.AssignmentTypeLaborables, "2026-01-01", slots("monday", "09:00", "10:00"))
	createAssignment(t, assignments, w.WorkerID, u.UserID, model.AssignmentTypeFlexible, "2026-01-01", slots("sunday", "10:00", "11:00"))
	mocks.holidays.add("2026-02-16", "Local", "ES-CT")

	buf, filename, err := svc.ExportWorkerMonth(context.Background(), w.WorkerID, 2026, 2)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if filename != "visitas_ana_Puig_2026-02.xlsx" {
		t.Errorf("unexpected file name %q", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open spreadsheet: %v", err)
	}
	defer f.Close()

	get := func(axis string) string {
		v, err := f.GetCellValue("Visitas", axis)
		if err != nil {
			t.Fatalf("read %s: %v", axis, err)
		}
		return v
	}

	if got := get("A2"); got != "Fecha" {
		t.Errorf("header A2 = %q", got)
	}
	if get("A3") != "2026-02-01" || get("B3") != "Domingo" || get("F3") != "Carrer Major 1" {
		t.Errorf("first row should be Sunday the 1st: %s %s %s", get("A3"), get("B3"), get("F3"))
	}
	if get("A4") != "2026-02-02" || get("H4") != model.AssignmentTypeLaborables {
		t.Errorf("second row should be Monday the 2nd: %s %s", get("A4"), get("H4"))
	}

	// 4 Sundays + 3 working Mondays, then the totals row
	if get("F10") != "Total" || get("G10") != "7" {
		t.Errorf("totals row: %q %q", get("F10"), get("G10"))
	}
	if get("A11") != "" {
		t.Errorf("nothing expected after the totals row, got %q", get("A11"))
	}

	sunday, _ := f.GetCellStyle("Visitas", "A3")
	monday, _ := f.GetCellStyle("Visitas", "A4")
	if sunday == 0 || monday != 0 {
		t.Errorf("festive rows are shaded, working rows are not: %d %d", sunday, monday)
	}
}

func TestExportWorkerMonth_UnknownWorker(t *testing.T) {
	repo, _ := newTestRepos()
	svc := NewExportService(repo, newCalendarSource(repo, "ES-CT"), zap.NewNop())

	if _, _, err := svc.ExportWorkerMonth(context.Background(), "missing", 2026, 2); !errors.Is(err, ErrWorkerNotFound) {
		t.Errorf("expected ErrWorkerNotFound, got %v", err)
	}
}

func TestFileSafe(t *testing.T) {
	if got := fileSafe(`Ana "La" Puig/Ruiz`); got != "Ana_La_PuigRuiz" {
		t.Errorf("fileSafe = %q", got)
	}
}
