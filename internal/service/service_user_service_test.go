package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"sad/backend/internal/dto"
	"sad/backend/internal/model"
)

func setupTestServiceUserService() (ServiceUserService, *testRepos) {
	repo, mocks := newTestRepos()
	return NewServiceUserService(repo, zap.NewNop()), mocks
}

func TestCreateServiceUser(t *testing.T) {
	svc, _ := setupTestServiceUserService()

	resp, err := svc.Create(context.Background(), &dto.CreateServiceUserRequest{
		ClientCode:   " C-001 ",
		Name:         "Josep",
		Surname:      "Ferrer",
		MonthlyHours: 40,
	}, "admin-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if resp.ClientCode != "C-001" {
		t.Errorf("client code not trimmed: %q", resp.ClientCode)
	}
	if resp.FullName != "Josep Ferrer" || resp.MonthlyHours != 40 {
		t.Errorf("unexpected response: %+v", resp)
	}

	_, err = svc.Create(context.Background(), &dto.CreateServiceUserRequest{ClientCode: "C-001", Name: "Other"}, "admin-1")
	if !errors.Is(err, ErrServiceUserCodeTaken) {
		t.Errorf("expected ErrServiceUserCodeTaken, got %v", err)
	}
}

func TestUpdateServiceUser(t *testing.T) {
	svc, _ := setupTestServiceUserService()
	created, _ := svc.Create(context.Background(), &dto.CreateServiceUserRequest{ClientCode: "C-001", Name: "Josep"}, "admin-1")

	resp, err := svc.Update(context.Background(), created.ID, &dto.UpdateServiceUserRequest{
		MonthlyHours: ptr(55.5),
		City:         ptr("Girona"),
	}, "admin-1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if resp.MonthlyHours != 55.5 || resp.City != "Girona" || resp.Name != "Josep" {
		t.Errorf("unexpected response: %+v", resp)
	}

	if _, err := svc.Update(context.Background(), "missing", &dto.UpdateServiceUserRequest{}, "admin-1"); !errors.Is(err, ErrServiceUserNotFound) {
		t.Errorf("expected ErrServiceUserNotFound, got %v", err)
	}
}

func TestDeleteServiceUser_RefusedWithActiveAssignments(t *testing.T) {
	svc, mocks := setupTestServiceUserService()
	created, _ := svc.Create(context.Background(), &dto.CreateServiceUserRequest{ClientCode: "C-001", Name: "Josep"}, "admin-1")

	mocks.assignments.assignments["asg-1"] = &model.Assignment{
		AssignmentID: "asg-1",
		UserID:       created.ID,
		WorkerID:     "worker-1",
		Status:       model.AssignmentStatusActive,
	}

	if err := svc.Delete(context.Background(), created.ID, "admin-1"); !errors.Is(err, ErrServiceUserHasAssignments) {
		t.Fatalf("expected ErrServiceUserHasAssignments, got %v", err)
	}

	mocks.assignments.assignments["asg-1"].Status = model.AssignmentStatusPaused
	if err := svc.Delete(context.Background(), created.ID, "admin-1"); err != nil {
		t.Errorf("delete should succeed once no assignment is active: %v", err)
	}
}
