package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"sad/backend/internal/dto"
)

func setupTestDeviceService() (DeviceService, *testRepos) {
	repo, mocks := newTestRepos()
	now := func() time.Time { return noon() }
	return NewDeviceService(repo, now, zap.NewNop()), mocks
}

func TestRegisterDevice_Upsert(t *testing.T) {
	svc, mocks := setupTestDeviceService()
	ctx := context.Background()

	first, err := svc.Register(ctx, "w1", &dto.RegisterDeviceRequest{PushToken: " ExponentPushToken[abc] ", Platform: "ios", AppVersion: "1.0.0"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !first.IsActive || first.LastSeenAt == "" {
		t.Errorf("unexpected response: %+v", first)
	}

	// deactivate, then the same token registers again from another worker
	if err := svc.Deactivate(ctx, first.ID, "w1"); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	second, err := svc.Register(ctx, "w2", &dto.RegisterDeviceRequest{PushToken: "ExponentPushToken[abc]", Platform: "ios", AppVersion: "1.1.0"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if second.ID != first.ID {
		t.Error("a known token must reuse its row")
	}
	if len(mocks.devices.devices) != 1 {
		t.Errorf("expected one stored device, got %d", len(mocks.devices.devices))
	}
	d := mocks.devices.devices[first.ID]
	if d.WorkerID != "w2" || !d.IsActive || d.AppVersion != "1.1.0" {
		t.Errorf("device not moved and reactivated: %+v", d)
	}
}

func TestListDevices(t *testing.T) {
	svc, _ := setupTestDeviceService()
	ctx := context.Background()
	a, _ := svc.Register(ctx, "w1", &dto.RegisterDeviceRequest{PushToken: "t1", Platform: "android"})
	svc.Register(ctx, "w1", &dto.RegisterDeviceRequest{PushToken: "t2", Platform: "web"})
	svc.Register(ctx, "w2", &dto.RegisterDeviceRequest{PushToken: "t3", Platform: "ios"})
	svc.Deactivate(ctx, a.ID, "w1")

	list, err := svc.List(ctx, "w1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("inactive devices are listed too, got %d", len(list))
	}
}

func TestDeactivateDevice_OtherWorker(t *testing.T) {
	svc, _ := setupTestDeviceService()
	d, _ := svc.Register(context.Background(), "w1", &dto.RegisterDeviceRequest{PushToken: "t1", Platform: "android"})

	if err := svc.Deactivate(context.Background(), d.ID, "w2"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("expected ErrDeviceNotFound, got %v", err)
	}
	if err := svc.Deactivate(context.Background(), "missing", "w1"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("expected ErrDeviceNotFound, got %v", err)
	}
}
