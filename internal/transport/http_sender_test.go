package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maxkimambo/plz/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

var testMeta = Metadata{ClientID: "test", ClientName: "plz", ClientVersion: "v0.0.1"}

func fastRetry(attempts int) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		BackoffFactor:  2.0,
	}
}

func TestNewURLs(t *testing.T) {
	urls := NewURLs("")
	assert.Equal(t, "https://do-it-plz.com/api/events", urls.Events)
	assert.Equal(t, "https://do-it-plz.com/api/subtasks", urls.Subtasks)

	assert.Equal(t, "http://localhost:3000/api/events", NewURLs("http://localhost:3000/api/").Events)
}

func TestHTTPSender_SendEvent(t *testing.T) {
	var gotPath string
	var gotHeaders http.Header
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	sender := NewHTTPSender(srv.URL+"/api", fastRetry(1))
	err := sender.SendEvent(context.Background(), EventFire{
		Name:      "order-placed",
		Payload:   json.RawMessage(`{"id":"x"}`),
		TaskNames: []string{"charge"},
	}, testMeta)

	require.NoError(t, err)
	assert.Equal(t, "/api/events", gotPath)
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "test", gotHeaders.Get(HeaderClientID))
	assert.Equal(t, "plz", gotHeaders.Get(HeaderClientName))
	assert.Equal(t, "v0.0.1", gotHeaders.Get(HeaderClientVersion))
	assert.JSONEq(t, `{"name":"order-placed","payload":{"id":"x"},"taskNames":["charge"]}`, string(gotBody))
}

func TestHTTPSender_SendStack(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subtasks", r.URL.Path)
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	sender := NewHTTPSender(srv.URL, fastRetry(1))
	stack := ledger.Stack{
		ledger.Success("plz-1", "A", json.RawMessage(`4`)),
		ledger.Failure("plz-2", "B", 0, `"hi"`),
	}

	require.NoError(t, sender.SendStack(context.Background(), stack, testMeta))
	assert.JSONEq(t, `[
		{"id":"plz-1","name":"A","status":"success","result":4},
		{"id":"plz-2","name":"B","status":"error","attempt":0,"error":"\"hi\""}
	]`, string(gotBody))
}

func TestHTTPSender_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewHTTPSender(srv.URL, fastRetry(3))
	err := sender.SendEvent(context.Background(), EventFire{Name: "e"}, testMeta)

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPSender_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sender := NewHTTPSender(srv.URL, fastRetry(5))
	err := sender.SendStack(context.Background(), ledger.Stack{}, testMeta)

	require.Error(t, err)
	var apiErr *googleapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetryPolicy_IsRetryableError(t *testing.T) {
	policy := NewDefaultRetryPolicy()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "server error", err: &googleapi.Error{Code: 502}, expected: true},
		{name: "throttled", err: &googleapi.Error{Code: 429}, expected: true},
		{name: "bad request", err: &googleapi.Error{Code: 400}, expected: false},
		{name: "cancelled", err: context.Canceled, expected: false},
		{name: "plain error", err: errors.New("boom"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, policy.IsRetryableError(tt.err))
		})
	}
}

func TestRetryPolicy_StopsOnContextCancel(t *testing.T) {
	policy := &RetryPolicy{MaxAttempts: 5, InitialBackoff: time.Hour, MaxBackoff: time.Hour, BackoffFactor: 2}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := policy.Do(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return &googleapi.Error{Code: 503}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRecorderAndMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	multi := Multi{a, b, Discard{}}

	require.NoError(t, multi.SendEvent(context.Background(), EventFire{Name: "e"}, testMeta))
	require.NoError(t, multi.SendStack(context.Background(), ledger.Stack{ledger.Success("1", "A", nil)}, testMeta))

	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Stacks(), 1)
	last, ok := a.LastStack()
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, last.Names())

	a.Reset()
	_, ok = a.LastStack()
	assert.False(t, ok)
}
