package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sad/backend/config"
)

func TestExpoSender_Send(t *testing.T) {
	var got []Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":[
			{"status":"ok","id":"t-1"},
			{"status":"error","message":"gone","details":{"error":"DeviceNotRegistered"}},
			{"status":"error","message":"rate","details":{"error":"MessageRateExceeded"}}
		]}`))
	}))
	defer srv.Close()

	s := NewExpoSender(srv.URL, "secret", srv.Client(), zap.NewNop())
	results, err := s.Send(context.Background(), []Message{
		{To: "tok-a", Title: "a"}, {To: "tok-b", Title: "b"}, {To: "tok-c", Title: "c"},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Len(t, results, 3)

	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.True(t, results[1].Unregistered)
	assert.False(t, results[2].Unregistered)
	assert.Error(t, results[2].Err)
}

func TestExpoSender_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewExpoSender(srv.URL, "", srv.Client(), zap.NewNop())
	results, err := s.Send(context.Background(), []Message{{To: "tok-a"}})
	require.Error(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].OK)
}

func TestNewSender_Disabled(t *testing.T) {
	s := NewSender(&config.PushConfig{Enabled: false}, zap.NewNop())
	_, err := s.Send(context.Background(), []Message{{To: "x"}})
	assert.True(t, errors.Is(err, ErrPushDisabled))
}
