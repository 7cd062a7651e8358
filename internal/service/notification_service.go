package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sad/backend/internal/dto"
	"sad/backend/internal/model"
	"sad/backend/internal/push"
	"sad/backend/internal/repository"
	"sad/backend/pkg/metrics"
)

// ── notification errors ──

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNoRecipients         = errors.New("no recipients")
)

// NotifyInput one notification addressed to one worker
type NotifyInput struct {
	WorkerID  string
	Type      string
	Title     string
	Body      string
	Priority  string
	Data      map[string]interface{}
	ExpiresAt *time.Time
	CreatedBy string
}

// NotifyResult outcome of a dispatch. Notification is nil when the worker's
// settings disabled the type.
type NotifyResult struct {
	Notification *model.WorkerNotification
	Pushed       int
	PushFailed   int
}

// Notifier dispatches notifications; used by the modules that announce changes.
type Notifier interface {
	Notify(ctx context.Context, in NotifyInput) (*NotifyResult, error)
}

// NotificationService worker notification feed and dispatcher
type NotificationService interface {
	Notifier
	List(ctx context.Context, workerID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, workerID string) (*dto.UnreadCountResponse, error)
	MarkRead(ctx context.Context, id, workerID string) error
	MarkAllRead(ctx context.Context, workerID string) (*dto.MarkAllReadResponse, error)
	Delete(ctx context.Context, id, workerID string) error
	Send(ctx context.Context, req *dto.SendNotificationRequest, callerID string) (*dto.SendNotificationResponse, error)
	SendTest(ctx context.Context, req *dto.TestNotificationRequest, callerWorkerID, callerID string) (*dto.NotificationResponse, error)
}

type notificationService struct {
	repo     *repository.Repository
	realtime RealtimePublisher
	push     push.Sender
	metrics  *metrics.Collector
	now      func() time.Time
	loc      *time.Location
	logger   *zap.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(repo *repository.Repository, deps Deps, logger *zap.Logger) NotificationService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	return &notificationService{
		repo:     repo,
		realtime: deps.Realtime,
		push:     deps.Push,
		metrics:  deps.Metrics,
		now:      now,
		loc:      loc,
		logger:   logger,
	}
}

// ═══════════════════════════════════════════════════════════
// Notify
// ═══════════════════════════════════════════════════════════
//
//  1. load the worker's settings (defaults when absent)
//  2. type disabled → skip
//  3. store the in-app row and publish it on the realtime channel
//  4. push to active devices unless push is off or quiet hours apply;
//     urgent notifications ignore quiet hours

func (s *notificationService) Notify(ctx context.Context, in NotifyInput) (*NotifyResult, error) {
	settings, err := s.settingsFor(ctx, in.WorkerID)
	if err != nil {
		return nil, err
	}

	if in.Type == "" {
		in.Type = model.NotificationSystemMessage
	}
	if in.Priority == "" {
		in.Priority = model.PriorityNormal
	}

	if in.Type != model.NotificationTest && !settings.Allows(in.Type) {
		s.count(in.Type, "skipped")
		return &NotifyResult{}, nil
	}

	n := &model.WorkerNotification{
		WorkerID:  in.WorkerID,
		Type:      in.Type,
		Title:     in.Title,
		Body:      in.Body,
		Priority:  in.Priority,
		Data:      model.JSONMap(in.Data),
		ExpiresAt: in.ExpiresAt,
	}
	if in.CreatedBy != "" {
		n.CreatedBy = &in.CreatedBy
	}

	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Error("store notification failed", zap.String("worker_id", in.WorkerID), zap.Error(err))
		return nil, err
	}
	s.count(in.Type, "stored")

	s.publish(ctx, n)

	result := &NotifyResult{Notification: n}
	if settings.PushEnabled && (n.Priority == model.PriorityUrgent || !inQuietHours(settings, s.now().In(s.loc))) {
		result.Pushed, result.PushFailed = s.deliverPush(ctx, n, settings)
	}

	if result.Pushed > 0 {
		at := s.now()
		if err := s.repo.Notification.MarkSent(ctx, n.NotificationID, at); err != nil {
			s.logger.Warn("mark notification sent failed", zap.String("id", n.NotificationID), zap.Error(err))
		} else {
			n.SentAt = &at
		}
	}

	return result, nil
}

func (s *notificationService) settingsFor(ctx context.Context, workerID string) (*model.WorkerNotificationSettings, error) {
	settings, err := s.repo.Settings.Get(ctx, workerID)
	if err == nil {
		return settings, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DefaultNotificationSettings(workerID), nil
	}
	s.logger.Error("query notification settings failed", zap.String("worker_id", workerID), zap.Error(err))
	return nil, err
}

func (s *notificationService) publish(ctx context.Context, n *model.WorkerNotification) {
	if s.realtime == nil {
		return
	}
	payload, err := json.Marshal(toNotificationResponse(n))
	if err != nil {
		s.logger.Warn("encode realtime notification failed", zap.Error(err))
		return
	}
	if err := s.realtime.Publish(ctx, n.WorkerID, payload); err != nil {
		s.logger.Warn("realtime publish failed", zap.String("worker_id", n.WorkerID), zap.Error(err))
	}
}

// deliverPush sends n to every active device of the worker. Failures are
// logged per device; unregistered tokens are deactivated.
func (s *notificationService) deliverPush(ctx context.Context, n *model.WorkerNotification, settings *model.WorkerNotificationSettings) (int, int) {
	if s.push == nil {
		return 0, 0
	}

	devices, err := s.repo.Device.ListByWorker(ctx, n.WorkerID, true)
	if err != nil {
		s.logger.Warn("list devices failed", zap.String("worker_id", n.WorkerID), zap.Error(err))
		return 0, 0
	}
	if len(devices) == 0 {
		return 0, 0
	}

	data := map[string]interface{}{
		"notification_id": n.NotificationID,
		"type":            n.Type,
	}
	for k, v := range n.Data {
		data[k] = v
	}

	messages := make([]push.Message, len(devices))
	platforms := make(map[string]string, len(devices))
	for i, d := range devices {
		messages[i] = push.Message{
			To:       d.PushToken,
			Title:    n.Title,
			Body:     n.Body,
			Data:     data,
			Priority: pushPriority(n.Priority),
		}
		if settings.SoundEnabled {
			messages[i].Sound = "default"
		}
		platforms[d.PushToken] = d.Platform
	}

	results, err := s.push.Send(ctx, messages)
	if errors.Is(err, push.ErrPushDisabled) {
		return 0, 0
	}
	if err != nil {
		s.logger.Warn("push delivery failed", zap.String("worker_id", n.WorkerID), zap.Error(err))
	}

	ok, failed := 0, 0
	for _, r := range results {
		platform := platforms[r.Token]
		if r.OK {
			ok++
			s.countPush(platform, "ok")
			continue
		}
		failed++
		if r.Unregistered {
			s.countPush(platform, "unregistered")
			if err := s.repo.Device.DeactivateByToken(ctx, r.Token); err != nil {
				s.logger.Warn("deactivate unregistered device failed", zap.Error(err))
			}
			continue
		}
		s.countPush(platform, "error")
		s.logger.Warn("push to device failed",
			zap.String("worker_id", n.WorkerID),
			zap.String("platform", platform),
			zap.Error(r.Err))
	}
	return ok, failed
}

func pushPriority(priority string) string {
	switch priority {
	case model.PriorityHigh, model.PriorityUrgent:
		return "high"
	case model.PriorityLow:
		return "normal"
	default:
		return "default"
	}
}

// inQuietHours reports whether now falls in the worker's quiet window. The
// window may wrap midnight; equal bounds mean no window.
func inQuietHours(settings *model.WorkerNotificationSettings, now time.Time) bool {
	if settings.QuietHoursStart == nil || settings.QuietHoursEnd == nil {
		return false
	}
	start, err := parseClock(*settings.QuietHoursStart)
	if err != nil {
		return false
	}
	end, err := parseClock(*settings.QuietHoursEnd)
	if err != nil {
		return false
	}
	cur := now.Hour()*60 + now.Minute()

	switch {
	case start == end:
		return false
	case start < end:
		return cur >= start && cur < end
	default:
		return cur >= start || cur < end
	}
}

func (s *notificationService) count(notificationType, outcome string) {
	if s.metrics != nil {
		s.metrics.NotificationsSent.WithLabelValues(notificationType, outcome).Inc()
	}
}

func (s *notificationService) countPush(platform, outcome string) {
	if s.metrics != nil {
		s.metrics.PushDeliveries.WithLabelValues(platform, outcome).Inc()
	}
}

// ────────────────────── feed ──────────────────────

func (s *notificationService) List(ctx context.Context, workerID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	list, total, err := s.repo.Notification.ListForWorker(ctx, workerID, req.UnreadOnly, s.now(), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list notifications failed", zap.String("worker_id", workerID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.NotificationResponse, 0, len(list))
	for i := range list {
		result = append(result, toNotificationResponse(&list[i]))
	}
	return result, total, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, workerID string) (*dto.UnreadCountResponse, error) {
	n, err := s.repo.Notification.CountUnread(ctx, workerID, s.now())
	if err != nil {
		s.logger.Error("count unread notifications failed", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}
	return &dto.UnreadCountResponse{Unread: n}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, workerID string) error {
	rows, err := s.repo.Notification.MarkRead(ctx, id, workerID, s.now())
	if err != nil {
		s.logger.Error("mark notification read failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if rows > 0 {
		return nil
	}

	// nothing updated: already read, or not the caller's notification
	n, err := s.repo.Notification.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		s.logger.Error("query notification failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if n.WorkerID != workerID {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, workerID string) (*dto.MarkAllReadResponse, error) {
	rows, err := s.repo.Notification.MarkAllRead(ctx, workerID, s.now())
	if err != nil {
		s.logger.Error("mark all notifications read failed", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}
	return &dto.MarkAllReadResponse{Updated: rows}, nil
}

func (s *notificationService) Delete(ctx context.Context, id, workerID string) error {
	rows, err := s.repo.Notification.Delete(ctx, id, workerID)
	if err != nil {
		s.logger.Error("delete notification failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// ────────────────────── Send ──────────────────────

func (s *notificationService) Send(ctx context.Context, req *dto.SendNotificationRequest, callerID string) (*dto.SendNotificationResponse, error) {
	targets, err := s.resolveTargets(ctx, req)
	if err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if req.ExpiresIn > 0 {
		t := s.now().Add(time.Duration(req.ExpiresIn) * time.Second)
		expiresAt = &t
	}

	resp := &dto.SendNotificationResponse{Targeted: len(targets)}
	for _, workerID := range targets {
		result, err := s.Notify(ctx, NotifyInput{
			WorkerID:  workerID,
			Type:      req.Type,
			Title:     req.Title,
			Body:      req.Body,
			Priority:  req.Priority,
			Data:      req.Data,
			ExpiresAt: expiresAt,
			CreatedBy: callerID,
		})
		if err != nil {
			resp.Failed++
			resp.WorkerIDs = append(resp.WorkerIDs, workerID)
			continue
		}
		if result.Notification == nil {
			resp.Skipped++
			continue
		}
		resp.Created++
		resp.Pushed += result.Pushed
	}

	s.logger.Info("notification broadcast",
		zap.String("type", req.Type),
		zap.Int("targeted", resp.Targeted),
		zap.Int("created", resp.Created),
		zap.Int("failed", resp.Failed))

	return resp, nil
}

func (s *notificationService) resolveTargets(ctx context.Context, req *dto.SendNotificationRequest) ([]string, error) {
	if req.All {
		workers, err := s.repo.Worker.ListActive(ctx)
		if err != nil {
			s.logger.Error("list active workers failed", zap.Error(err))
			return nil, err
		}
		ids := make([]string, len(workers))
		for i := range workers {
			ids[i] = workers[i].WorkerID
		}
		if len(ids) == 0 {
			return nil, ErrNoRecipients
		}
		return ids, nil
	}

	seen := make(map[string]bool, len(req.WorkerIDs))
	ids := make([]string, 0, len(req.WorkerIDs))
	for _, id := range req.WorkerIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ErrNoRecipients
	}
	return ids, nil
}

// ────────────────────── SendTest ──────────────────────

func (s *notificationService) SendTest(ctx context.Context, req *dto.TestNotificationRequest, callerWorkerID, callerID string) (*dto.NotificationResponse, error) {
	workerID := req.WorkerID
	if workerID == "" {
		workerID = callerWorkerID
	}
	if workerID == "" {
		return nil, ErrNoRecipients
	}

	if _, err := s.repo.Worker.GetByID(ctx, workerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		s.logger.Error("query worker failed", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = "Test notification"
	}
	body := req.Body
	if body == "" {
		body = "Notifications are working on this device."
	}

	result, err := s.Notify(ctx, NotifyInput{
		WorkerID:  workerID,
		Type:      model.NotificationTest,
		Title:     title,
		Body:      body,
		Priority:  model.PriorityNormal,
		Data:      map[string]interface{}{"test": true},
		CreatedBy: callerID,
	})
	if err != nil {
		return nil, err
	}

	resp := toNotificationResponse(result.Notification)
	return &resp, nil
}

func toNotificationResponse(n *model.WorkerNotification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.NotificationID,
		WorkerID:  n.WorkerID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		Priority:  n.Priority,
		Data:      map[string]interface{}(n.Data),
		Read:      n.ReadAt != nil,
		ReadAt:    formatOptionalTimestamp(n.ReadAt),
		SentAt:    formatOptionalTimestamp(n.SentAt),
		ExpiresAt: formatOptionalTimestamp(n.ExpiresAt),
		CreatedAt: formatTimestamp(n.CreatedAt),
	}
}
