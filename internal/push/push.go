// Package push delivers notifications to mobile devices through an
// Expo-compatible push HTTP API.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"sad/backend/config"
)

// maxBatch messages per request accepted by the push API
const maxBatch = 100

var ErrPushDisabled = errors.New("push delivery disabled")

// Message one push message addressed to one device token.
type Message struct {
	To       string                 `json:"to"`
	Title    string                 `json:"title"`
	Body     string                 `json:"body"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Sound    string                 `json:"sound,omitempty"`
	Priority string                 `json:"priority,omitempty"` // default | normal | high
	TTL      int                    `json:"ttl,omitempty"`      // seconds
}

// Result delivery outcome of one Message, in request order.
type Result struct {
	Token string
	OK    bool
	// Unregistered the provider no longer knows the token; stop using it.
	Unregistered bool
	Err          error
}

// Sender delivers push messages.
type Sender interface {
	Send(ctx context.Context, messages []Message) ([]Result, error)
}

// NewSender returns the configured sender; a disabled config yields a
// sender that rejects every message with ErrPushDisabled.
func NewSender(cfg *config.PushConfig, logger *zap.Logger) Sender {
	if !cfg.Enabled {
		return disabledSender{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ExpoSender{
		endpoint:    cfg.Endpoint,
		accessToken: cfg.AccessToken,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

type disabledSender struct{}

func (disabledSender) Send(_ context.Context, messages []Message) ([]Result, error) {
	return nil, ErrPushDisabled
}

// ExpoSender posts batches to the push API.
type ExpoSender struct {
	endpoint    string
	accessToken string
	client      *http.Client
	logger      *zap.Logger
}

// NewExpoSender creates an ExpoSender with an explicit HTTP client.
func NewExpoSender(endpoint, accessToken string, client *http.Client, logger *zap.Logger) *ExpoSender {
	return &ExpoSender{endpoint: endpoint, accessToken: accessToken, client: client, logger: logger}
}

type ticket struct {
	Status  string `json:"status"` // ok | error
	ID      string `json:"id"`
	Message string `json:"message"`
	Details struct {
		Error string `json:"error"`
	} `json:"details"`
}

type sendResponse struct {
	Data   []ticket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Send delivers messages in batches. A request-level failure marks every
// message of the batch failed and is also returned.
func (s *ExpoSender) Send(ctx context.Context, messages []Message) ([]Result, error) {
	results := make([]Result, 0, len(messages))
	var firstErr error

	for start := 0; start < len(messages); start += maxBatch {
		end := start + maxBatch
		if end > len(messages) {
			end = len(messages)
		}
		batch := messages[start:end]

		tickets, err := s.post(ctx, batch)
		if err != nil {
			s.logger.Warn("push batch failed", zap.Int("size", len(batch)), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			for _, m := range batch {
				results = append(results, Result{Token: m.To, Err: err})
			}
			continue
		}

		for i, m := range batch {
			r := Result{Token: m.To}
			if i >= len(tickets) {
				r.Err = fmt.Errorf("push: missing ticket")
			} else if t := tickets[i]; t.Status == "ok" {
				r.OK = true
			} else {
				r.Err = fmt.Errorf("push: %s", t.Message)
				r.Unregistered = t.Details.Error == "DeviceNotRegistered"
			}
			results = append(results, r)
		}
	}

	return results, firstErr
}

func (s *ExpoSender) post(ctx context.Context, batch []Message) ([]ticket, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.accessToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("push response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("push: HTTP %d", resp.StatusCode)
	}

	var out sendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("push response: %w", err)
	}
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("push: %s: %s", out.Errors[0].Code, out.Errors[0].Message)
	}
	return out.Data, nil
}
