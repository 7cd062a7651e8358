package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"sad/backend/internal/dto"
)

func TestSettings_DefaultsUntilSaved(t *testing.T) {
	repo, mocks := newTestRepos()
	svc := NewSettingsService(repo, zap.NewNop())

	got, err := svc.Get(context.Background(), "w1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.IsDefault || !got.PushEnabled || !got.NewUser {
		t.Errorf("expected enabled defaults, got %+v", got)
	}
	if len(mocks.settings.settings) != 0 {
		t.Error("reading must not create a row")
	}
}

func TestSettings_PartialUpdate(t *testing.T) {
	repo, _ := newTestRepos()
	svc := NewSettingsService(repo, zap.NewNop())
	ctx := context.Background()

	got, err := svc.Update(ctx, "w1", &dto.UpdateNotificationSettingsRequest{
		RouteUpdate:     ptr(false),
		QuietHoursStart: ptr("22:00"),
		QuietHoursEnd:   ptr("07:00"),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.IsDefault || got.RouteUpdate || !got.NewUser {
		t.Errorf("unexpected settings: %+v", got)
	}
	if got.QuietHoursStart != "22:00" || got.QuietHoursEnd != "07:00" {
		t.Errorf("quiet hours not stored: %+v", got)
	}

	// sound only; everything else survives
	got, err = svc.Update(ctx, "w1", &dto.UpdateNotificationSettingsRequest{SoundEnabled: ptr(false)})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.SoundEnabled || got.RouteUpdate || got.QuietHoursStart != "22:00" {
		t.Errorf("partial update lost fields: %+v", got)
	}

	// "" clears both bounds
	got, err = svc.Update(ctx, "w1", &dto.UpdateNotificationSettingsRequest{QuietHoursStart: ptr(""), QuietHoursEnd: ptr("")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.QuietHoursStart != "" || got.QuietHoursEnd != "" {
		t.Errorf("quiet hours should be cleared: %+v", got)
	}
}

func TestSettings_InvalidQuietHours(t *testing.T) {
	repo, _ := newTestRepos()
	svc := NewSettingsService(repo, zap.NewNop())

	tests := []struct {
		name string
		req  dto.UpdateNotificationSettingsRequest
	}{
		{"start only", dto.UpdateNotificationSettingsRequest{QuietHoursStart: ptr("22:00")}},
		{"bad clock", dto.UpdateNotificationSettingsRequest{QuietHoursStart: ptr("22h"), QuietHoursEnd: ptr("07:00")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, err := svc.Update(context.Background(), "w1", &req); !errors.Is(err, ErrInvalidQuietHours) {
				t.Errorf("expected ErrInvalidQuietHours, got %v", err)
			}
		})
	}
}
