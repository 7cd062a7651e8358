package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"sad/backend/internal/model"
	"sad/backend/internal/push"
	"sad/backend/internal/repository"
	pkgerrors "sad/backend/pkg/errors"
)

// ── Mock AuthUserRepository ──

type mockAuthUserRepo struct {
	users map[string]*model.AuthUser
}

func newMockAuthUserRepo() *mockAuthUserRepo {
	return &mockAuthUserRepo{users: make(map[string]*model.AuthUser)}
}

func (m *mockAuthUserRepo) Create(_ context.Context, u *model.AuthUser) error {
	if u.ID == "" {
		u.ID = fmt.Sprintf("auth-%d", len(m.users)+1)
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockAuthUserRepo) GetByID(_ context.Context, id string) (*model.AuthUser, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAuthUserRepo) GetByEmail(_ context.Context, email string) (*model.AuthUser, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAuthUserRepo) Update(_ context.Context, u *model.AuthUser) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockAuthUserRepo) UpdateLastSignIn(_ context.Context, id string, at time.Time) error {
	if u, ok := m.users[id]; ok {
		u.LastSignInAt = &at
	}
	return nil
}

// ── Mock WorkerRepository ──

type mockWorkerRepo struct {
	workers map[string]*model.Worker
}

func newMockWorkerRepo() *mockWorkerRepo {
	return &mockWorkerRepo{workers: make(map[string]*model.Worker)}
}

func (m *mockWorkerRepo) Create(_ context.Context, w *model.Worker) error {
	if w.WorkerID == "" {
		w.WorkerID = fmt.Sprintf("worker-%d", len(m.workers)+1)
	}
	m.workers[w.WorkerID] = w
	return nil
}

func (m *mockWorkerRepo) GetByID(_ context.Context, id string) (*model.Worker, error) {
	if w, ok := m.workers[id]; ok {
		return w, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkerRepo) GetByEmail(_ context.Context, email string) (*model.Worker, error) {
	for _, w := range m.workers {
		if strings.EqualFold(w.Email, email) {
			return w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkerRepo) GetByAuthUserID(_ context.Context, authUserID string) (*model.Worker, error) {
	for _, w := range m.workers {
		if w.AuthUserID != nil && *w.AuthUserID == authUserID {
			return w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkerRepo) List(_ context.Context, filter repository.WorkerFilter, offset, limit int) ([]model.Worker, int64, error) {
	var all []model.Worker
	for _, w := range m.workers {
		if filter.Active != nil && w.IsActive != *filter.Active {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(w.FullName()+" "+w.Email), strings.ToLower(filter.Search)) {
			continue
		}
		all = append(all, *w)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Worker{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockWorkerRepo) ListActive(_ context.Context) ([]model.Worker, error) {
	var out []model.Worker
	for _, w := range m.workers {
		if w.IsActive {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkerID < out[j].WorkerID })
	return out, nil
}

func (m *mockWorkerRepo) Update(_ context.Context, w *model.Worker) error {
	m.workers[w.WorkerID] = w
	return nil
}

func (m *mockWorkerRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.workers, id)
	return nil
}

// ── Mock ServiceUserRepository ──

type mockServiceUserRepo struct {
	users map[string]*model.ServiceUser
}

func newMockServiceUserRepo() *mockServiceUserRepo {
	return &mockServiceUserRepo{users: make(map[string]*model.ServiceUser)}
}

func (m *mockServiceUserRepo) Create(_ context.Context, u *model.ServiceUser) error {
	if u.UserID == "" {
		u.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	m.users[u.UserID] = u
	return nil
}

func (m *mockServiceUserRepo) GetByID(_ context.Context, id string) (*model.ServiceUser, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockServiceUserRepo) GetByClientCode(_ context.Context, code string) (*model.ServiceUser, error) {
	for _, u := range m.users {
		if u.ClientCode == code {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockServiceUserRepo) List(_ context.Context, filter repository.ServiceUserFilter, offset, limit int) ([]model.ServiceUser, int64, error) {
	var all []model.ServiceUser
	for _, u := range m.users {
		if filter.Active != nil && u.IsActive != *filter.Active {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(u.FullName()+" "+u.ClientCode), strings.ToLower(filter.Search)) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.ServiceUser{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockServiceUserRepo) Update(_ context.Context, u *model.ServiceUser) error {
	m.users[u.UserID] = u
	return nil
}

func (m *mockServiceUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment
	workers     *mockWorkerRepo
	users       *mockServiceUserRepo
}

func newMockAssignmentRepo(workers *mockWorkerRepo, users *mockServiceUserRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{
		assignments: make(map[string]*model.Assignment),
		workers:     workers,
		users:       users,
	}
}

func (m *mockAssignmentRepo) attach(a model.Assignment) model.Assignment {
	a.Worker = m.workers.workers[a.WorkerID]
	a.User = m.users.users[a.UserID]
	return a
}

func (m *mockAssignmentRepo) matches(a *model.Assignment, f repository.AssignmentFilter) bool {
	return (f.WorkerID == "" || a.WorkerID == f.WorkerID) &&
		(f.UserID == "" || a.UserID == f.UserID) &&
		(f.Status == "" || a.Status == f.Status)
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	if a.AssignmentID == "" {
		a.AssignmentID = fmt.Sprintf("asg-%d", len(m.assignments)+1)
	}
	m.assignments[a.AssignmentID] = a
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	if a, ok := m.assignments[id]; ok {
		cp := m.attach(*a)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) List(_ context.Context, f repository.AssignmentFilter, offset, limit int) ([]model.Assignment, int64, error) {
	var all []model.Assignment
	for _, a := range m.assignments {
		if m.matches(a, f) {
			all = append(all, m.attach(*a))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].AssignmentID < all[j].AssignmentID })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Assignment{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockAssignmentRepo) ListActiveInRange(_ context.Context, f repository.AssignmentFilter, from, to time.Time) ([]model.Assignment, error) {
	f.Status = model.AssignmentStatusActive
	var out []model.Assignment
	for _, a := range m.assignments {
		if !m.matches(a, f) {
			continue
		}
		if a.StartDate.After(to) {
			continue
		}
		if a.EndDate != nil && a.EndDate.Before(from) {
			continue
		}
		out = append(out, m.attach(*a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignmentID < out[j].AssignmentID })
	return out, nil
}

func (m *mockAssignmentRepo) CountActiveByUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, a := range m.assignments {
		if a.UserID == userID && a.Status == model.AssignmentStatusActive {
			n++
		}
	}
	return n, nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, a *model.Assignment) error {
	stored, ok := m.assignments[a.AssignmentID]
	if !ok || stored.Version != a.Version {
		return pkgerrors.ErrOptimisticLock
	}
	cp := *a
	cp.Version++
	cp.Worker, cp.User = nil, nil
	m.assignments[a.AssignmentID] = &cp
	a.Version = cp.Version
	return nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.assignments, id)
	return nil
}

// ── Mock HolidayRepository ──

type mockHolidayRepo struct {
	holidays map[string]*model.Holiday
}

func newMockHolidayRepo() *mockHolidayRepo {
	return &mockHolidayRepo{holidays: make(map[string]*model.Holiday)}
}

func (m *mockHolidayRepo) add(date, name, region string) *model.Holiday {
	d, _ := time.Parse("2006-01-02", date)
	typ := model.HolidayTypeNational
	if region != "" {
		typ = model.HolidayTypeRegional
	}
	h := &model.Holiday{Date: d, Name: name, Type: typ, Region: region}
	_ = m.Create(context.Background(), h)
	return h
}

func (m *mockHolidayRepo) Create(_ context.Context, h *model.Holiday) error {
	if h.HolidayID == "" {
		h.HolidayID = fmt.Sprintf("hol-%d", len(m.holidays)+1)
	}
	m.holidays[h.HolidayID] = h
	return nil
}

func (m *mockHolidayRepo) GetByID(_ context.Context, id string) (*model.Holiday, error) {
	if h, ok := m.holidays[id]; ok {
		return h, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHolidayRepo) GetByDateRegion(_ context.Context, date time.Time, region string) (*model.Holiday, error) {
	for _, h := range m.holidays {
		if h.Date.Equal(date) && h.Region == region {
			return h, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHolidayRepo) ListRange(_ context.Context, from, to time.Time, region string) ([]model.Holiday, error) {
	var out []model.Holiday
	for _, h := range m.holidays {
		if h.Date.Before(from) || h.Date.After(to) {
			continue
		}
		if region != "" && h.Region != "" && h.Region != region {
			continue
		}
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *mockHolidayRepo) Update(_ context.Context, h *model.Holiday) error {
	m.holidays[h.HolidayID] = h
	return nil
}

func (m *mockHolidayRepo) Delete(_ context.Context, id string) error {
	delete(m.holidays, id)
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	items map[string]*model.WorkerNotification
	seq   int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{items: make(map[string]*model.WorkerNotification)}
}

func (m *mockNotificationRepo) forWorker(workerID string) []*model.WorkerNotification {
	var out []*model.WorkerNotification
	for _, n := range m.items {
		if n.WorkerID == workerID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NotificationID < out[j].NotificationID })
	return out
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.WorkerNotification) error {
	m.seq++
	if n.NotificationID == "" {
		n.NotificationID = fmt.Sprintf("ntf-%03d", m.seq)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	m.items[n.NotificationID] = n
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.WorkerNotification, error) {
	if n, ok := m.items[id]; ok {
		return n, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) ListForWorker(_ context.Context, workerID string, unreadOnly bool, now time.Time, offset, limit int) ([]model.WorkerNotification, int64, error) {
	var all []model.WorkerNotification
	for _, n := range m.forWorker(workerID) {
		if n.ExpiresAt != nil && !n.ExpiresAt.After(now) {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		all = append(all, *n)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []model.WorkerNotification{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, workerID string, now time.Time) (int64, error) {
	var c int64
	for _, n := range m.forWorker(workerID) {
		if n.ReadAt == nil && (n.ExpiresAt == nil || n.ExpiresAt.After(now)) {
			c++
		}
	}
	return c, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, workerID string, at time.Time) (int64, error) {
	n, ok := m.items[id]
	if !ok || n.WorkerID != workerID || n.ReadAt != nil {
		return 0, nil
	}
	n.ReadAt = &at
	return 1, nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, workerID string, at time.Time) (int64, error) {
	var c int64
	for _, n := range m.forWorker(workerID) {
		if n.ReadAt == nil {
			n.ReadAt = &at
			c++
		}
	}
	return c, nil
}

func (m *mockNotificationRepo) MarkSent(_ context.Context, id string, at time.Time) error {
	if n, ok := m.items[id]; ok {
		n.SentAt = &at
	}
	return nil
}

func (m *mockNotificationRepo) Delete(_ context.Context, id, workerID string) (int64, error) {
	n, ok := m.items[id]
	if !ok || n.WorkerID != workerID {
		return 0, nil
	}
	delete(m.items, id)
	return 1, nil
}

// ── Mock DeviceRepository ──

type mockDeviceRepo struct {
	devices map[string]*model.WorkerDevice
}

func newMockDeviceRepo() *mockDeviceRepo {
	return &mockDeviceRepo{devices: make(map[string]*model.WorkerDevice)}
}

func (m *mockDeviceRepo) Create(_ context.Context, d *model.WorkerDevice) error {
	if d.DeviceID == "" {
		d.DeviceID = fmt.Sprintf("dev-%d", len(m.devices)+1)
	}
	m.devices[d.DeviceID] = d
	return nil
}

func (m *mockDeviceRepo) GetByID(_ context.Context, id string) (*model.WorkerDevice, error) {
	if d, ok := m.devices[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeviceRepo) GetByToken(_ context.Context, token string) (*model.WorkerDevice, error) {
	for _, d := range m.devices {
		if d.PushToken == token {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeviceRepo) ListByWorker(_ context.Context, workerID string, activeOnly bool) ([]model.WorkerDevice, error) {
	var out []model.WorkerDevice
	for _, d := range m.devices {
		if d.WorkerID != workerID || (activeOnly && !d.IsActive) {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out, nil
}

func (m *mockDeviceRepo) Update(_ context.Context, d *model.WorkerDevice) error {
	m.devices[d.DeviceID] = d
	return nil
}

func (m *mockDeviceRepo) Deactivate(_ context.Context, id string) error {
	if d, ok := m.devices[id]; ok {
		d.IsActive = false
	}
	return nil
}

func (m *mockDeviceRepo) DeactivateByToken(_ context.Context, token string) error {
	for _, d := range m.devices {
		if d.PushToken == token {
			d.IsActive = false
		}
	}
	return nil
}

// ── Mock SettingsRepository ──

type mockSettingsRepo struct {
	settings map[string]*model.WorkerNotificationSettings
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{settings: make(map[string]*model.WorkerNotificationSettings)}
}

func (m *mockSettingsRepo) Get(_ context.Context, workerID string) (*model.WorkerNotificationSettings, error) {
	if s, ok := m.settings[workerID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSettingsRepo) Upsert(_ context.Context, s *model.WorkerNotificationSettings) error {
	cp := *s
	m.settings[s.WorkerID] = &cp
	return nil
}

// ── Mock infrastructure ──

type mockTokenStore struct {
	revoked map[string]time.Duration
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{revoked: make(map[string]time.Duration)}
}

func (m *mockTokenStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.revoked[jti] = ttl
	return nil
}

func (m *mockTokenStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}

type mockPublisher struct {
	published map[string][][]byte
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{published: make(map[string][][]byte)}
}

func (m *mockPublisher) Publish(_ context.Context, workerID string, payload []byte) error {
	m.published[workerID] = append(m.published[workerID], payload)
	return nil
}

// mockPushSender records messages; tokens listed in unregistered fail as
// DeviceNotRegistered.
type mockPushSender struct {
	sent         []push.Message
	unregistered map[string]bool
}

func newMockPushSender() *mockPushSender {
	return &mockPushSender{unregistered: make(map[string]bool)}
}

func (m *mockPushSender) Send(_ context.Context, messages []push.Message) ([]push.Result, error) {
	results := make([]push.Result, len(messages))
	for i, msg := range messages {
		m.sent = append(m.sent, msg)
		if m.unregistered[msg.To] {
			results[i] = push.Result{Token: msg.To, Unregistered: true, Err: fmt.Errorf("gone")}
			continue
		}
		results[i] = push.Result{Token: msg.To, OK: true}
	}
	return results, nil
}

// recordingNotifier captures dispatched notifications.
type recordingNotifier struct {
	sent []NotifyInput
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, in NotifyInput) (*NotifyResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.sent = append(r.sent, in)
	return &NotifyResult{Notification: &model.WorkerNotification{WorkerID: in.WorkerID, Type: in.Type}}, nil
}

// ── fixture ──

type testRepos struct {
	authUsers     *mockAuthUserRepo
	workers       *mockWorkerRepo
	users         *mockServiceUserRepo
	assignments   *mockAssignmentRepo
	holidays      *mockHolidayRepo
	notifications *mockNotificationRepo
	devices       *mockDeviceRepo
	settings      *mockSettingsRepo
}

func newTestRepos() (*repository.Repository, *testRepos) {
	workers := newMockWorkerRepo()
	users := newMockServiceUserRepo()
	m := &testRepos{
		authUsers:     newMockAuthUserRepo(),
		workers:       workers,
		users:         users,
		assignments:   newMockAssignmentRepo(workers, users),
		holidays:      newMockHolidayRepo(),
		notifications: newMockNotificationRepo(),
		devices:       newMockDeviceRepo(),
		settings:      newMockSettingsRepo(),
	}
	return &repository.Repository{
		AuthUser:     m.authUsers,
		Worker:       m.workers,
		ServiceUser:  m.users,
		Assignment:   m.assignments,
		Holiday:      m.holidays,
		Notification: m.notifications,
		Device:       m.devices,
		Settings:     m.settings,
	}, m
}

func ptr[T any](v T) *T { return &v }

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
