package dto

// ── routes / travel time ──

// DateRequest single-date query
type DateRequest struct {
	Date string `form:"date" binding:"required"` // YYYY-MM-DD
}

// RouteStop one visit on the route
type RouteStop struct {
	Sequence int           `json:"sequence"`
	Visit    VisitResponse `json:"visit"`
}

// RouteLeg travel between consecutive stops
type RouteLeg struct {
	FromSequence int    `json:"from_sequence"`
	ToSequence   int    `json:"to_sequence"`
	DistanceM    int    `json:"distance_m"`
	DurationS    int    `json:"duration_s"`
	Source       string `json:"source"` // provider | estimate | cache | unknown
}

// RouteResponse ordered route of a worker's day
type RouteResponse struct {
	WorkerID        string      `json:"worker_id"`
	Date            string      `json:"date"`
	Stops           []RouteStop `json:"stops"`
	Legs            []RouteLeg  `json:"legs"`
	TotalDistanceM  int         `json:"total_distance_m"`
	TotalTravelS    int         `json:"total_travel_s"`
	ServiceMinutes  int         `json:"service_minutes"`
	UnknownLegCount int         `json:"unknown_leg_count"`
}
