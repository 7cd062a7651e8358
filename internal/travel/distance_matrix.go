package travel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"
)

var ErrNoRoute = errors.New("travel: no route between points")

// DistanceMatrix queries a Distance Matrix style HTTP JSON API for driving
// legs. Outbound calls are rate limited.
type DistanceMatrix struct {
	endpoint string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewDistanceMatrix creates the client; perSecond <= 0 disables limiting.
func NewDistanceMatrix(endpoint, apiKey string, client *http.Client, perSecond float64) *DistanceMatrix {
	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = int(perSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &DistanceMatrix{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   client,
		limiter:  rate.NewLimiter(limit, burst),
	}
}

type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// Leg implements Provider.
func (d *DistanceMatrix) Leg(ctx context.Context, from, to Point) (Leg, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return Leg{}, err
	}

	q := url.Values{}
	q.Set("origins", formatPoint(from))
	q.Set("destinations", formatPoint(to))
	q.Set("mode", "driving")
	q.Set("units", "metric")
	q.Set("key", d.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Leg{}, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return Leg{}, fmt.Errorf("distance matrix request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Leg{}, fmt.Errorf("distance matrix: HTTP %d", resp.StatusCode)
	}

	var out matrixResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return Leg{}, fmt.Errorf("distance matrix response: %w", err)
	}
	if out.Status != "OK" {
		return Leg{}, fmt.Errorf("distance matrix: %s %s", out.Status, out.ErrorMessage)
	}
	if len(out.Rows) == 0 || len(out.Rows[0].Elements) == 0 {
		return Leg{}, ErrNoRoute
	}
	el := out.Rows[0].Elements[0]
	if el.Status != "OK" {
		return Leg{}, fmt.Errorf("%w: %s", ErrNoRoute, el.Status)
	}

	return Leg{
		DistanceM: el.Distance.Value,
		DurationS: el.Duration.Value,
		Source:    SourceProvider,
	}, nil
}

func formatPoint(p Point) string {
	return strconv.FormatFloat(p.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lng, 'f', 6, 64)
}
