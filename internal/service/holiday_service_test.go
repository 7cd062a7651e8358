package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"sad/backend/config"
	"sad/backend/internal/dto"
	"sad/backend/internal/model"
)

const testCalendar = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Test//Holidays//ES\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:navidad@test\r\n" +
	"DTSTART;VALUE=DATE:20261225\r\n" +
	"DTEND;VALUE=DATE:20261226\r\n" +
	"SUMMARY:Navidad\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:santesteve@test\r\n" +
	"DTSTART;VALUE=DATE:20261226\r\n" +
	"DTEND;VALUE=DATE:20261228\r\n" +
	"SUMMARY:Sant Esteve\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:nameless@test\r\n" +
	"DTSTART;VALUE=DATE:20261231\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func setupTestHolidayService(now time.Time) (HolidayService, *testRepos, *recordingNotifier) {
	cfg := &config.Config{Holidays: config.HolidayConfig{DefaultRegion: "ES-CT"}}
	repo, mocks := newTestRepos()
	notifier := &recordingNotifier{}
	deps := Deps{Now: func() time.Time { return now }}
	return NewHolidayService(cfg, repo, notifier, deps, zap.NewNop()), mocks, notifier
}

func TestCreateHoliday_Scope(t *testing.T) {
	svc, _, _ := setupTestHolidayService(mustDate("2026-01-01"))

	national, err := svc.Create(context.Background(), &dto.CreateHolidayRequest{Date: "2026-12-08", Name: "Inmaculada"}, "admin-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if national.Type != model.HolidayTypeNational || national.Region != "" {
		t.Errorf("expected national without region, got %+v", national)
	}

	regional, err := svc.Create(context.Background(), &dto.CreateHolidayRequest{Date: "2026-09-11", Name: "Diada", Type: model.HolidayTypeRegional}, "admin-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if regional.Region != "ES-CT" {
		t.Errorf("regional holiday should take the default region, got %q", regional.Region)
	}

	_, err = svc.Create(context.Background(), &dto.CreateHolidayRequest{Date: "2026-09-11", Name: "Dup", Region: "es-ct"}, "admin-1")
	if !errors.Is(err, ErrHolidayExists) {
		t.Errorf("expected ErrHolidayExists, got %v", err)
	}
}

func TestCreateHoliday_AnnouncesFutureDates(t *testing.T) {
	svc, mocks, notifier := setupTestHolidayService(mustDate("2026-10-01"))
	w := seedWorker(mocks, "ana")
	mondays := seedWorker(mocks, "marta")
	weekdays := seedWorker(mocks, "pere")
	u := seedUser(mocks, "josep", 20)
	tuesday := model.WeeklySchedule{"tuesday": {{Start: "09:00", End: "10:00"}}}
	add := func(id, workerID, typ string, schedule model.WeeklySchedule) {
		mocks.assignments.assignments[id] = &model.Assignment{
			AssignmentID:   id,
			WorkerID:       workerID,
			UserID:         u.UserID,
			AssignmentType: typ,
			StartDate:      mustDate("2026-01-01"),
			Schedule:       schedule,
			Status:         model.AssignmentStatusActive,
		}
	}
	add("asg-1", w.WorkerID, model.AssignmentTypeFestivos, tuesday)
	// no slot on the holiday's weekday
	add("asg-2", mondays.WorkerID, model.AssignmentTypeFlexible, model.WeeklySchedule{"monday": {{Start: "09:00", End: "10:00"}}})
	// does not work on festive days
	add("asg-3", weekdays.WorkerID, model.AssignmentTypeLaborables, tuesday)

	// 2026-12-08 is a Tuesday
	if _, err := svc.Create(context.Background(), &dto.CreateHolidayRequest{Date: "2026-12-08", Name: "Inmaculada"}, "admin-1"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Type != model.NotificationHolidayUpdate || notifier.sent[0].WorkerID != w.WorkerID {
		t.Errorf("expected one holiday_update, got %+v", notifier.sent)
	}

	notifier.sent = nil
	if _, err := svc.Create(context.Background(), &dto.CreateHolidayRequest{Date: "2026-05-01", Name: "Past"}, "admin-1"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("past holidays are not announced, got %+v", notifier.sent)
	}
}

func TestCheckHoliday(t *testing.T) {
	svc, mocks, _ := setupTestHolidayService(mustDate("2026-01-01"))
	mocks.holidays.add("2026-09-11", "Diada", "ES-CT")

	tests := []struct {
		name        string
		req         dto.HolidayCheckRequest
		wantHoliday bool
		wantFestive bool
	}{
		{"default region holiday", dto.HolidayCheckRequest{Date: "2026-09-11"}, true, true},
		{"other region", dto.HolidayCheckRequest{Date: "2026-09-11", Region: "ES-MD"}, false, false},
		{"region typed loosely", dto.HolidayCheckRequest{Date: "2026-09-11", Region: " es-ct "}, true, true},
		{"weekend", dto.HolidayCheckRequest{Date: "2026-10-17"}, false, true},
		{"plain day", dto.HolidayCheckRequest{Date: "2026-10-13"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			resp, err := svc.Check(context.Background(), &req)
			if err != nil {
				t.Fatalf("check failed: %v", err)
			}
			if resp.IsHoliday != tt.wantHoliday || resp.IsFestive != tt.wantFestive {
				t.Errorf("got holiday=%v festive=%v", resp.IsHoliday, resp.IsFestive)
			}
		})
	}
}

func TestListHolidays_RegionNormalized(t *testing.T) {
	svc, mocks, _ := setupTestHolidayService(mustDate("2026-01-01"))
	mocks.holidays.add("2026-09-11", "Diada", "ES-CT")
	mocks.holidays.add("2026-05-02", "Comunidad", "ES-MD")
	mocks.holidays.add("2026-12-25", "Navidad", "")

	list, err := svc.List(context.Background(), &dto.HolidayListRequest{Year: 2026, Region: "es-md "})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 || list[0].Region != "ES-MD" || list[1].Name != "Navidad" {
		t.Errorf("expected the ES-MD and national holidays, got %+v", list)
	}
}

func TestImportICS(t *testing.T) {
	svc, mocks, _ := setupTestHolidayService(mustDate("2026-01-01"))
	mocks.holidays.add("2026-12-25", "Christmas", "ES-CT")

	resp, err := svc.ImportICS(context.Background(), strings.NewReader(testCalendar), &dto.ImportHolidaysRequest{Region: "ES-CT"}, "admin-1")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	// 25 renamed, 26 and 27 created, nameless event skipped
	if resp.Updated != 1 || resp.Created != 2 || resp.Skipped != 1 {
		t.Errorf("unexpected counters: %+v", resp)
	}
	if len(mocks.holidays.holidays) != 3 {
		t.Errorf("expected 3 stored holidays, got %d", len(mocks.holidays.holidays))
	}

	// a second run changes nothing
	resp, err = svc.ImportICS(context.Background(), strings.NewReader(testCalendar), &dto.ImportHolidaysRequest{Region: "ES-CT"}, "admin-1")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if resp.Created != 0 || resp.Updated != 0 || resp.Skipped != 4 {
		t.Errorf("reimport should be idempotent: %+v", resp)
	}
}

func TestImportICS_Invalid(t *testing.T) {
	svc, _, _ := setupTestHolidayService(mustDate("2026-01-01"))

	_, err := svc.ImportICS(context.Background(), strings.NewReader("BEGIN:VEVENT\r\nSUMMARY:x\r\nEND:VEVENT\r\n"), &dto.ImportHolidaysRequest{}, "admin-1")
	if !errors.Is(err, ErrInvalidCalendar) {
		t.Errorf("expected ErrInvalidCalendar, got %v", err)
	}
}

func TestImportURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(testCalendar))
	}))
	defer srv.Close()

	svc, _, _ := setupTestHolidayService(mustDate("2026-01-01"))
	resp, err := svc.ImportURL(context.Background(), &dto.ImportHolidaysRequest{URL: srv.URL, Type: model.HolidayTypeNational}, "admin-1")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if resp.Created != 3 {
		t.Errorf("expected 3 created, got %+v", resp)
	}

	_, err = svc.ImportURL(context.Background(), &dto.ImportHolidaysRequest{URL: "ftp://example.com/x.ics"}, "admin-1")
	if !errors.Is(err, ErrInvalidCalendarURL) {
		t.Errorf("expected ErrInvalidCalendarURL, got %v", err)
	}
}

func TestExportICS_RoundTrip(t *testing.T) {
	svc, mocks, _ := setupTestHolidayService(mustDate("2026-01-01"))
	mocks.holidays.add("2026-09-11", "Diada", "ES-CT")
	mocks.holidays.add("2026-12-25", "Navidad", "")
	mocks.holidays.add("2026-05-02", "Madrid", "ES-MD")

	out, err := svc.ExportICS(context.Background(), &dto.HolidayExportRequest{Year: 2026})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(out, "Festivos 2026 ES-CT") {
		t.Error("calendar name missing")
	}

	parsed, skipped, err := parseHolidayICS(strings.NewReader(out))
	if err != nil {
		t.Fatalf("exported calendar does not parse: %v", err)
	}
	if len(skipped) != 0 || len(parsed) != 2 {
		t.Fatalf("expected 2 events, got %+v (skipped %v)", parsed, skipped)
	}
	names := map[string]bool{}
	for _, p := range parsed {
		names[formatDate(p.Date)+" "+p.Name] = true
	}
	if !names["2026-09-11 Diada"] || !names["2026-12-25 Navidad"] {
		t.Errorf("unexpected events: %v", names)
	}
}

func TestDeleteHoliday(t *testing.T) {
	svc, mocks, _ := setupTestHolidayService(mustDate("2026-01-01"))
	h := mocks.holidays.add("2026-09-11", "Diada", "ES-CT")

	if err := svc.Delete(context.Background(), h.HolidayID, "admin-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(context.Background(), h.HolidayID, "admin-1"); !errors.Is(err, ErrHolidayNotFound) {
		t.Errorf("expected ErrHolidayNotFound, got %v", err)
	}
}
