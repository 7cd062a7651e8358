package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sad/backend/config"
	"sad/backend/internal/dto"
	"sad/backend/internal/model"
	"sad/backend/internal/repository"
)

// ── holiday errors ──

var (
	ErrHolidayNotFound    = errors.New("holiday not found")
	ErrHolidayExists      = errors.New("a holiday already exists on that date for the region")
	ErrInvalidCalendar    = errors.New("invalid iCalendar content")
	ErrInvalidCalendarURL = errors.New("invalid calendar url")
)

// HolidayService holiday calendar use cases
type HolidayService interface {
	List(ctx context.Context, req *dto.HolidayListRequest) ([]dto.HolidayResponse, error)
	Create(ctx context.Context, req *dto.CreateHolidayRequest, callerID string) (*dto.HolidayResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateHolidayRequest, callerID string) (*dto.HolidayResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// Check reports whether date is a holiday (and a festive day) in region.
	Check(ctx context.Context, req *dto.HolidayCheckRequest) (*dto.HolidayCheckResponse, error)
	ImportICS(ctx context.Context, r io.Reader, req *dto.ImportHolidaysRequest, callerID string) (*dto.ImportHolidaysResponse, error)
	ImportURL(ctx context.Context, req *dto.ImportHolidaysRequest, callerID string) (*dto.ImportHolidaysResponse, error)
	ExportICS(ctx context.Context, req *dto.HolidayExportRequest) (string, error)
}

type holidayService struct {
	repo          *repository.Repository
	notifier      Notifier
	client        *http.Client
	defaultRegion string
	defaultURL    string
	now           func() time.Time
	logger        *zap.Logger
}

// NewHolidayService creates a HolidayService.
func NewHolidayService(cfg *config.Config, repo *repository.Repository, notifier Notifier, deps Deps, logger *zap.Logger) HolidayService {
	client := deps.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: icsFetchTimeout}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &holidayService{
		repo:          repo,
		notifier:      notifier,
		client:        client,
		defaultRegion: normalizeRegion(cfg.Holidays.DefaultRegion),
		defaultURL:    cfg.Holidays.ICSURL,
		now:           now,
		logger:        logger,
	}
}

// ────────────────────── List ──────────────────────

func (s *holidayService) List(ctx context.Context, req *dto.HolidayListRequest) ([]dto.HolidayResponse, error) {
	year := req.Year
	if year == 0 {
		year = s.now().Year()
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if req.Month > 0 {
		from, to = monthRange(year, req.Month)
	}

	list, err := s.repo.Holiday.ListRange(ctx, from, to, normalizeRegion(req.Region))
	if err != nil {
		s.logger.Error("list holidays failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.HolidayResponse, 0, len(list))
	for i := range list {
		result = append(result, toHolidayResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *holidayService) Create(ctx context.Context, req *dto.CreateHolidayRequest, callerID string) (*dto.HolidayResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	typ, region := s.normalizeScope(req.Type, req.Region)

	if err := s.ensureFree(ctx, date, region, ""); err != nil {
		return nil, err
	}

	h := &model.Holiday{
		Date:   date,
		Name:   strings.TrimSpace(req.Name),
		Type:   typ,
		Region: region,
	}
	h.CreatedBy = &callerID
	h.UpdatedBy = &callerID

	if err := s.repo.Holiday.Create(ctx, h); err != nil {
		s.logger.Error("create holiday failed", zap.Error(err))
		return nil, err
	}

	s.announce(ctx, h, "added", callerID)

	resp := toHolidayResponse(h)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *holidayService) Update(ctx context.Context, id string, req *dto.UpdateHolidayRequest, callerID string) (*dto.HolidayResponse, error) {
	h, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		h.Date = date
	}
	if req.Name != nil {
		h.Name = strings.TrimSpace(*req.Name)
	}
	typ, region := h.Type, h.Region
	if req.Type != nil {
		typ = *req.Type
	}
	if req.Region != nil {
		region = *req.Region
	}
	h.Type, h.Region = s.normalizeScope(typ, region)

	if err := s.ensureFree(ctx, h.Date, h.Region, h.HolidayID); err != nil {
		return nil, err
	}
	h.UpdatedBy = &callerID

	if err := s.repo.Holiday.Update(ctx, h); err != nil {
		s.logger.Error("update holiday failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toHolidayResponse(h)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *holidayService) Delete(ctx context.Context, id string, callerID string) error {
	h, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Holiday.Delete(ctx, id); err != nil {
		s.logger.Error("delete holiday failed", zap.String("id", id), zap.Error(err))
		return err
	}

	s.announce(ctx, h, "removed", callerID)
	return nil
}

// ────────────────────── Check ──────────────────────

func (s *holidayService) Check(ctx context.Context, req *dto.HolidayCheckRequest) (*dto.HolidayCheckResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	region := normalizeRegion(req.Region)
	if region == "" {
		region = s.defaultRegion
	}

	list, err := s.repo.Holiday.ListRange(ctx, date, date, region)
	if err != nil {
		s.logger.Error("query holiday failed", zap.Error(err))
		return nil, err
	}
	idx := newHolidayIndex(list)

	resp := &dto.HolidayCheckResponse{
		Date:      formatDate(date),
		IsFestive: idx.isFestive(date),
	}
	if h := idx.holiday(date); h != nil {
		hr := toHolidayResponse(h)
		resp.IsHoliday = true
		resp.Holiday = &hr
	}
	return resp, nil
}

// ────────────────────── Import ──────────────────────

func (s *holidayService) ImportURL(ctx context.Context, req *dto.ImportHolidaysRequest, callerID string) (*dto.ImportHolidaysResponse, error) {
	url := req.URL
	if url == "" {
		url = s.defaultURL
	}
	body, err := FetchICSContent(ctx, s.client, url)
	if err != nil {
		s.logger.Warn("fetch holiday calendar failed", zap.String("url", url), zap.Error(err))
		return nil, err
	}
	defer body.Close()

	return s.ImportICS(ctx, body, req, callerID)
}

// ImportICS upserts the calendar's holidays by (date, region).
func (s *holidayService) ImportICS(ctx context.Context, r io.Reader, req *dto.ImportHolidaysRequest, callerID string) (*dto.ImportHolidaysResponse, error) {
	parsed, skipped, err := parseHolidayICS(r)
	if err != nil {
		return nil, err
	}
	typ, region := s.normalizeScope(req.Type, req.Region)

	resp := &dto.ImportHolidaysResponse{Skipped: len(skipped), Errors: skipped}
	for _, p := range parsed {
		existing, err := s.repo.Holiday.GetByDateRegion(ctx, p.Date, region)
		switch {
		case err == nil:
			if existing.Name == p.Name && existing.Type == typ {
				resp.Skipped++
				continue
			}
			existing.Name = p.Name
			existing.Type = typ
			existing.UpdatedBy = &callerID
			if err := s.repo.Holiday.Update(ctx, existing); err != nil {
				s.logger.Warn("update imported holiday failed", zap.String("date", formatDate(p.Date)), zap.Error(err))
				resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", formatDate(p.Date), err))
				continue
			}
			resp.Updated++

		case errors.Is(err, gorm.ErrRecordNotFound):
			h := &model.Holiday{Date: p.Date, Name: p.Name, Type: typ, Region: region}
			h.CreatedBy = &callerID
			h.UpdatedBy = &callerID
			if err := s.repo.Holiday.Create(ctx, h); err != nil {
				s.logger.Warn("create imported holiday failed", zap.String("date", formatDate(p.Date)), zap.Error(err))
				resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", formatDate(p.Date), err))
				continue
			}
			resp.Created++

		default:
			s.logger.Error("query holiday failed", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("holiday calendar imported",
		zap.String("region", region),
		zap.Int("created", resp.Created),
		zap.Int("updated", resp.Updated),
		zap.Int("skipped", resp.Skipped))

	return resp, nil
}

// ────────────────────── Export ──────────────────────

func (s *holidayService) ExportICS(ctx context.Context, req *dto.HolidayExportRequest) (string, error) {
	region := normalizeRegion(req.Region)
	if region == "" {
		region = s.defaultRegion
	}
	from := time.Date(req.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(req.Year, time.December, 31, 0, 0, 0, 0, time.UTC)

	list, err := s.repo.Holiday.ListRange(ctx, from, to, region)
	if err != nil {
		s.logger.Error("list holidays failed", zap.Error(err))
		return "", err
	}

	name := fmt.Sprintf("Festivos %d", req.Year)
	if region != "" {
		name += " " + region
	}
	return buildHolidayICS(list, name, s.now()), nil
}

// ── helpers ──

func (s *holidayService) get(ctx context.Context, id string) (*model.Holiday, error) {
	h, err := s.repo.Holiday.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHolidayNotFound
		}
		s.logger.Error("query holiday failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return h, nil
}

// normalizeScope national holidays carry no region; regional and local ones
// default to the configured region.
func (s *holidayService) normalizeScope(typ, region string) (string, string) {
	if typ == "" {
		if region == "" {
			typ = model.HolidayTypeNational
		} else {
			typ = model.HolidayTypeRegional
		}
	}
	if typ == model.HolidayTypeNational {
		return typ, ""
	}
	if region == "" {
		region = s.defaultRegion
	}
	return typ, normalizeRegion(region)
}

func (s *holidayService) ensureFree(ctx context.Context, date time.Time, region, selfID string) error {
	existing, err := s.repo.Holiday.GetByDateRegion(ctx, date, region)
	if err == nil {
		if existing.HolidayID != selfID {
			return ErrHolidayExists
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("query holiday failed", zap.Error(err))
		return err
	}
	return nil
}

// announce tells the workers with visits on a future holiday date that their
// day changed. Best effort.
func (s *holidayService) announce(ctx context.Context, h *model.Holiday, verb, callerID string) {
	if s.notifier == nil || h.Date.Before(civilDate(s.now())) {
		return
	}

	assignments, err := s.repo.Assignment.ListActiveInRange(ctx, repository.AssignmentFilter{}, h.Date, h.Date)
	if err != nil {
		s.logger.Warn("load assignments for holiday notice failed", zap.Error(err))
		return
	}

	// only workers with a visit that now falls on the holiday
	notified := make(map[string]bool)
	for i := range assignments {
		a := &assignments[i]
		if !assignmentApplies(a, h.Date, true) || len(a.Schedule.SlotsFor(h.Date.Weekday())) == 0 {
			continue
		}
		workerID := a.WorkerID
		if notified[workerID] {
			continue
		}
		notified[workerID] = true

		_, err := s.notifier.Notify(ctx, NotifyInput{
			WorkerID: workerID,
			Type:     model.NotificationHolidayUpdate,
			Title:    "Holiday calendar updated",
			Body:     fmt.Sprintf("%s (%s) was %s. Check your visits for that day.", h.Name, formatDate(h.Date), verb),
			Priority: model.PriorityNormal,
			Data: map[string]interface{}{
				"holiday_id": h.HolidayID,
				"date":       formatDate(h.Date),
			},
			CreatedBy: callerID,
		})
		if err != nil {
			s.logger.Warn("holiday notification failed", zap.String("worker_id", workerID), zap.Error(err))
		}
	}
}

func toHolidayResponse(h *model.Holiday) dto.HolidayResponse {
	return dto.HolidayResponse{
		ID:      h.HolidayID,
		Date:    formatDate(h.Date),
		Weekday: model.WeekdayKeys[h.Date.Weekday()],
		Name:    h.Name,
		Type:    h.Type,
		Region:  h.Region,
	}
}
