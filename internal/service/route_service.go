package service

import (
	"context"

	"go.uber.org/zap"

	"sad/backend/internal/dto"
	"sad/backend/internal/travel"
)

// RouteService worker day routes with travel time between visits
type RouteService interface {
	WorkerRoute(ctx context.Context, workerID, date string) (*dto.RouteResponse, error)
}

type routeService struct {
	assignments AssignmentService
	planner     *travel.Planner
	logger      *zap.Logger
}

// NewRouteService creates a RouteService.
func NewRouteService(assignments AssignmentService, planner *travel.Planner, logger *zap.Logger) RouteService {
	return &routeService{assignments: assignments, planner: planner, logger: logger}
}

// WorkerRoute orders the day's visits by start time and resolves a leg
// between consecutive stops at different places. Back-to-back visits at the
// same user or the same address need no leg.
func (s *routeService) WorkerRoute(ctx context.Context, workerID, date string) (*dto.RouteResponse, error) {
	day, err := s.assignments.WorkerDay(ctx, workerID, date)
	if err != nil {
		return nil, err
	}

	resp := &dto.RouteResponse{
		WorkerID: workerID,
		Date:     day.Date,
		Stops:    make([]dto.RouteStop, 0, len(day.Visits)),
		Legs:     []dto.RouteLeg{},
	}

	type legRef struct{ from, to int }
	var pairs []travel.Pair
	var refs []legRef

	for i, v := range day.Visits {
		resp.Stops = append(resp.Stops, dto.RouteStop{Sequence: i + 1, Visit: v})
		resp.ServiceMinutes += v.Minutes
		if i == 0 {
			continue
		}
		prev := day.Visits[i-1]
		from, to := visitPoint(prev), visitPoint(v)
		if prev.User.ID == v.User.ID || samePlace(from, to) {
			continue
		}
		pairs = append(pairs, travel.Pair{From: from, To: to})
		refs = append(refs, legRef{from: i, to: i + 1})
	}

	if len(pairs) == 0 {
		return resp, nil
	}

	legs, err := s.planner.Legs(ctx, pairs)
	if err != nil {
		s.logger.Error("resolve route legs failed", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}

	for i, leg := range legs {
		resp.Legs = append(resp.Legs, dto.RouteLeg{
			FromSequence: refs[i].from,
			ToSequence:   refs[i].to,
			DistanceM:    leg.DistanceM,
			DurationS:    leg.DurationS,
			Source:       leg.Source,
		})
		resp.TotalDistanceM += leg.DistanceM
		resp.TotalTravelS += leg.DurationS
		if leg.Source == travel.SourceUnknown {
			resp.UnknownLegCount++
		}
	}
	return resp, nil
}

func visitPoint(v dto.VisitResponse) *travel.Point {
	if v.User.Latitude == nil || v.User.Longitude == nil {
		return nil
	}
	return &travel.Point{Lat: *v.User.Latitude, Lng: *v.User.Longitude}
}

func samePlace(a, b *travel.Point) bool {
	return a != nil && b != nil && *a == *b
}
