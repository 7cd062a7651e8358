package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sad/backend/internal/dto"
	"sad/backend/internal/model"
	"sad/backend/internal/repository"
	pkgerrors "sad/backend/pkg/errors"
)

// ── assignment errors ──

var (
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrWorkerInactive      = errors.New("worker is not active")
	ErrServiceUserInactive = errors.New("user is not active")
	ErrInvalidDateRange    = errors.New("end_date is before start_date")
)

// Report subjects of MonthlyHours
const (
	SubjectWorker = "worker"
	SubjectUser   = "user"
)

// AssignmentService assignment use cases and calendar views
type AssignmentService interface {
	List(ctx context.Context, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, int64, error)
	GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error)
	Create(ctx context.Context, req *dto.CreateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error)
	Delete(ctx context.Context, id string, callerID string) error

	// WorkerDay the worker's visits on date, ordered by start time.
	WorkerDay(ctx context.Context, workerID, date string) (*dto.WorkerDayResponse, error)
	// MonthlyHours planned hours of a worker or user (subject) in a month.
	MonthlyHours(ctx context.Context, subject, id string, year, month int) (*dto.MonthlyHoursResponse, error)
}

type assignmentService struct {
	repo     *repository.Repository
	calendar *calendarSource
	notifier Notifier
	logger   *zap.Logger
}

// NewAssignmentService creates an AssignmentService.
func NewAssignmentService(repo *repository.Repository, calendar *calendarSource, notifier Notifier, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, calendar: calendar, notifier: notifier, logger: logger}
}

// ────────────────────── List / Get ──────────────────────

func (s *assignmentService) List(ctx context.Context, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, int64, error) {
	filter := repository.AssignmentFilter{WorkerID: req.WorkerID, UserID: req.UserID, Status: req.Status}
	list, total, err := s.repo.Assignment.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list assignments failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AssignmentResponse, 0, len(list))
	for i := range list {
		result = append(result, toAssignmentResponse(&list[i]))
	}
	return result, total, nil
}

func (s *assignmentService) GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toAssignmentResponse(a)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *assignmentService) Create(ctx context.Context, req *dto.CreateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error) {
	worker, err := s.activeWorker(ctx, req.WorkerID)
	if err != nil {
		return nil, err
	}
	user, err := s.activeUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	var end *time.Time
	if req.EndDate != "" {
		e, err := parseDate(req.EndDate)
		if err != nil {
			return nil, err
		}
		end = &e
	}
	if end != nil && end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	schedule, err := buildSchedule(req.Schedule)
	if err != nil {
		return nil, err
	}

	a := &model.Assignment{
		WorkerID:       worker.WorkerID,
		UserID:         user.UserID,
		AssignmentType: req.AssignmentType,
		StartDate:      start,
		EndDate:        end,
		Schedule:       schedule,
		Status:         model.AssignmentStatusActive,
		Notes:          req.Notes,
	}
	a.Version = 1
	a.CreatedBy = &callerID
	a.UpdatedBy = &callerID

	if err := s.repo.Assignment.Create(ctx, a); err != nil {
		s.logger.Error("create assignment failed", zap.Error(err))
		return nil, err
	}
	a.Worker, a.User = worker, user

	s.notify(ctx, NotifyInput{
		WorkerID:  worker.WorkerID,
		Type:      model.NotificationNewUser,
		Title:     "New user assigned",
		Body:      fmt.Sprintf("You have been assigned to %s from %s.", user.FullName(), formatDate(start)),
		Priority:  model.PriorityHigh,
		Data:      assignmentData(a),
		CreatedBy: callerID,
	})

	resp := toAssignmentResponse(a)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *assignmentService) Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	previousWorkerID := a.WorkerID
	previousSchedule := a.Schedule

	if req.WorkerID != nil && *req.WorkerID != a.WorkerID {
		worker, err := s.activeWorker(ctx, *req.WorkerID)
		if err != nil {
			return nil, err
		}
		a.WorkerID, a.Worker = worker.WorkerID, worker
	}
	if req.UserID != nil && *req.UserID != a.UserID {
		user, err := s.activeUser(ctx, *req.UserID)
		if err != nil {
			return nil, err
		}
		a.UserID, a.User = user.UserID, user
	}
	if req.AssignmentType != nil {
		a.AssignmentType = *req.AssignmentType
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			return nil, err
		}
		a.StartDate = start
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			a.EndDate = nil
		} else {
			end, err := parseDate(*req.EndDate)
			if err != nil {
				return nil, err
			}
			a.EndDate = &end
		}
	}
	if a.EndDate != nil && a.EndDate.Before(a.StartDate) {
		return nil, ErrInvalidDateRange
	}
	if req.Schedule != nil {
		schedule, err := buildSchedule(*req.Schedule)
		if err != nil {
			return nil, err
		}
		a.Schedule = schedule
	}
	if req.Status != nil {
		// reactivating needs the same active worker and user as Create
		if *req.Status == model.AssignmentStatusActive && a.Status != model.AssignmentStatusActive {
			if _, err := s.activeWorker(ctx, a.WorkerID); err != nil {
				return nil, err
			}
			if _, err := s.activeUser(ctx, a.UserID); err != nil {
				return nil, err
			}
		}
		a.Status = *req.Status
	}
	if req.Notes != nil {
		a.Notes = *req.Notes
	}
	a.UpdatedBy = &callerID

	if err := s.repo.Assignment.Update(ctx, a); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, err
		}
		s.logger.Error("update assignment failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.announceUpdate(ctx, a, previousWorkerID, previousSchedule, callerID)

	resp := toAssignmentResponse(a)
	return &resp, nil
}

// announceUpdate tells the affected workers what changed: a reassignment
// removes the user from the old worker and adds it to the new one.
func (s *assignmentService) announceUpdate(ctx context.Context, a *model.Assignment, previousWorkerID string, previousSchedule model.WeeklySchedule, callerID string) {
	name := userName(a)
	data := assignmentData(a)

	if a.WorkerID != previousWorkerID {
		s.notify(ctx, NotifyInput{
			WorkerID:  previousWorkerID,
			Type:      model.NotificationUserRemoved,
			Title:     "User removed",
			Body:      fmt.Sprintf("%s is no longer assigned to you.", name),
			Priority:  model.PriorityHigh,
			Data:      data,
			CreatedBy: callerID,
		})
		s.notify(ctx, NotifyInput{
			WorkerID:  a.WorkerID,
			Type:      model.NotificationNewUser,
			Title:     "New user assigned",
			Body:      fmt.Sprintf("You have been assigned to %s.", name),
			Priority:  model.PriorityHigh,
			Data:      data,
			CreatedBy: callerID,
		})
		return
	}

	in := NotifyInput{
		WorkerID:  a.WorkerID,
		Type:      model.NotificationAssignmentChange,
		Title:     "Assignment updated",
		Body:      fmt.Sprintf("Your assignment with %s has changed.", name),
		Priority:  model.PriorityNormal,
		Data:      data,
		CreatedBy: callerID,
	}
	if !reflect.DeepEqual(previousSchedule, a.Schedule) {
		in.Type = model.NotificationScheduleChange
		in.Title = "Schedule changed"
		in.Body = fmt.Sprintf("Your visit schedule with %s has changed.", name)
		in.Priority = model.PriorityHigh
	}
	s.notify(ctx, in)
}

// ────────────────────── Delete ──────────────────────

func (s *assignmentService) Delete(ctx context.Context, id string, callerID string) error {
	a, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Assignment.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("delete assignment failed", zap.String("id", id), zap.Error(err))
		return err
	}

	s.notify(ctx, NotifyInput{
		WorkerID:  a.WorkerID,
		Type:      model.NotificationUserRemoved,
		Title:     "User removed",
		Body:      fmt.Sprintf("%s is no longer assigned to you.", userName(a)),
		Priority:  model.PriorityHigh,
		Data:      assignmentData(a),
		CreatedBy: callerID,
	})
	return nil
}

// ═══════════════════════════════════════════════════════════
// WorkerDay
// ═══════════════════════════════════════════════════════════

func (s *assignmentService) WorkerDay(ctx context.Context, workerID, date string) (*dto.WorkerDayResponse, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	if _, err := s.worker(ctx, workerID); err != nil {
		return nil, err
	}

	holidays, err := s.calendar.holidays(ctx, day, day)
	if err != nil {
		s.logger.Error("load holidays failed", zap.Error(err))
		return nil, err
	}
	assignments, err := s.repo.Assignment.ListActiveInRange(ctx, repository.AssignmentFilter{WorkerID: workerID}, day, day)
	if err != nil {
		s.logger.Error("load assignments failed", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}

	festive := holidays.isFestive(day)
	resp := &dto.WorkerDayResponse{
		WorkerID:  workerID,
		Date:      formatDate(day),
		Weekday:   model.WeekdayKeys[day.Weekday()],
		IsFestive: festive,
		Visits:    []dto.VisitResponse{},
	}
	if h := holidays.holiday(day); h != nil {
		resp.IsHoliday = true
		resp.HolidayName = h.Name
	}

	for _, v := range visitsOn(assignments, day, festive) {
		resp.Visits = append(resp.Visits, dto.VisitResponse{
			AssignmentID:   v.assignment.AssignmentID,
			AssignmentType: v.assignment.AssignmentType,
			Start:          v.slot.Start,
			End:            v.slot.End,
			Minutes:        v.minutes,
			User:           toServiceUserBrief(v.assignment.User),
		})
		resp.TotalMinutes += v.minutes
	}

	return resp, nil
}

// ═══════════════════════════════════════════════════════════
// MonthlyHours
// ═══════════════════════════════════════════════════════════
//
// Walks every day of the month with the WorkerDay applicability rule and
// sums the scheduled slot lengths per assignment. A user report also
// compares the plan with the contracted monthly hours.

func (s *assignmentService) MonthlyHours(ctx context.Context, subject, id string, year, month int) (*dto.MonthlyHoursResponse, error) {
	filter := repository.AssignmentFilter{}
	var contracted *float64

	switch subject {
	case SubjectWorker:
		if _, err := s.worker(ctx, id); err != nil {
			return nil, err
		}
		filter.WorkerID = id
	case SubjectUser:
		user, err := s.user(ctx, id)
		if err != nil {
			return nil, err
		}
		filter.UserID = id
		h := user.MonthlyHours
		contracted = &h
	default:
		return nil, fmt.Errorf("unknown report subject %q", subject)
	}

	first, last := monthRange(year, month)
	holidays, err := s.calendar.holidays(ctx, first, last)
	if err != nil {
		s.logger.Error("load holidays failed", zap.Error(err))
		return nil, err
	}
	assignments, err := s.repo.Assignment.ListActiveInRange(ctx, filter, first, last)
	if err != nil {
		s.logger.Error("load assignments failed", zap.String("subject", subject), zap.String("id", id), zap.Error(err))
		return nil, err
	}

	type tally struct {
		days, visits, minutes int
	}
	tallies := make([]tally, len(assignments))
	laborableMinutes, festiveMinutes := 0, 0

	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		festive := holidays.isFestive(day)
		for i := range assignments {
			a := &assignments[i]
			if !assignmentApplies(a, day, festive) {
				continue
			}
			slots := a.Schedule.SlotsFor(day.Weekday())
			if len(slots) == 0 {
				continue
			}
			tallies[i].days++
			for _, ts := range slots {
				m := slotMinutes(ts)
				tallies[i].visits++
				tallies[i].minutes += m
				if festive {
					festiveMinutes += m
				} else {
					laborableMinutes += m
				}
			}
		}
	}

	resp := &dto.MonthlyHoursResponse{
		SubjectType:    subject,
		SubjectID:      id,
		Year:           year,
		Month:          month,
		Assignments:    make([]dto.AssignmentHours, 0, len(assignments)),
		LaborableHours: hours(laborableMinutes),
		FestiveHours:   hours(festiveMinutes),
		TotalHours:     hours(laborableMinutes + festiveMinutes),
	}
	for i := range assignments {
		a := &assignments[i]
		if tallies[i].visits == 0 {
			continue
		}
		row := dto.AssignmentHours{
			AssignmentID:   a.AssignmentID,
			AssignmentType: a.AssignmentType,
			Days:           tallies[i].days,
			Visits:         tallies[i].visits,
			Hours:          hours(tallies[i].minutes),
		}
		if subject == SubjectWorker {
			row.CounterpartID = a.UserID
			row.CounterpartName = userName(a)
		} else {
			row.CounterpartID = a.WorkerID
			if a.Worker != nil {
				row.CounterpartName = a.Worker.FullName()
			}
		}
		resp.Assignments = append(resp.Assignments, row)
	}

	if contracted != nil {
		balance := *contracted - resp.TotalHours
		resp.ContractedHours = contracted
		resp.Balance = &balance
	}

	return resp, nil
}

// ── helpers ──

func (s *assignmentService) get(ctx context.Context, id string) (*model.Assignment, error) {
	a, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("query assignment failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return a, nil
}

func (s *assignmentService) worker(ctx context.Context, id string) (*model.Worker, error) {
	w, err := s.repo.Worker.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		s.logger.Error("query worker failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return w, nil
}

func (s *assignmentService) activeWorker(ctx context.Context, id string) (*model.Worker, error) {
	w, err := s.worker(ctx, id)
	if err != nil {
		return nil, err
	}
	if !w.IsActive {
		return nil, ErrWorkerInactive
	}
	return w, nil
}

func (s *assignmentService) user(ctx context.Context, id string) (*model.ServiceUser, error) {
	u, err := s.repo.ServiceUser.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceUserNotFound
		}
		s.logger.Error("query user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (s *assignmentService) activeUser(ctx context.Context, id string) (*model.ServiceUser, error) {
	u, err := s.user(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrServiceUserInactive
	}
	return u, nil
}

// notify dispatches best effort; failures are logged, never returned.
func (s *assignmentService) notify(ctx context.Context, in NotifyInput) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Notify(ctx, in); err != nil {
		s.logger.Warn("assignment notification failed",
			zap.String("worker_id", in.WorkerID),
			zap.String("type", in.Type),
			zap.Error(err))
	}
}

func assignmentData(a *model.Assignment) map[string]interface{} {
	return map[string]interface{}{
		"assignment_id": a.AssignmentID,
		"user_id":       a.UserID,
	}
}

func toAssignmentResponse(a *model.Assignment) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		ID:             a.AssignmentID,
		WorkerID:       a.WorkerID,
		UserID:         a.UserID,
		AssignmentType: a.AssignmentType,
		StartDate:      formatDate(a.StartDate),
		Schedule:       scheduleToDTO(a.Schedule),
		WeeklyHours:    hours(weeklyMinutes(a.Schedule)),
		Status:         a.Status,
		Notes:          a.Notes,
		Version:        a.Version,
		CreatedAt:      formatTimestamp(a.CreatedAt),
		UpdatedAt:      formatTimestamp(a.UpdatedAt),
	}
	if a.EndDate != nil {
		resp.EndDate = formatDate(*a.EndDate)
	}
	if a.Worker != nil {
		resp.WorkerName = a.Worker.FullName()
	}
	if a.User != nil {
		brief := toServiceUserBrief(a.User)
		resp.User = &brief
	}
	return resp
}
