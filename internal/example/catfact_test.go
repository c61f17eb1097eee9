package example

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxkimambo/plz/internal/client"
	dipErrors "github.com/maxkimambo/plz/internal/errors"
	"github.com/maxkimambo/plz/internal/ledger"
	"github.com/maxkimambo/plz/internal/transport"
)

const sampleFact = `{"fact":"Cats sleep for most of the day.","length":31}`

func newCatFactService(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newApp(t *testing.T, factURL string) (*client.Client, *transport.Recorder) {
	t.Helper()
	recorder := &transport.Recorder{}
	c, err := client.New(client.Options{ClientID: "cattitude"}, recorder)
	require.NoError(t, err)
	require.NoError(t, Register(c, Options{FactURL: factURL}))
	return c, recorder
}

func TestRegister_BindsTasks(t *testing.T) {
	c, _ := newApp(t, "")

	tasks, ok := c.Registry().TasksFor(EventRequestCatFact)
	require.True(t, ok)
	assert.Equal(t, []string{TaskFetchCatFact}, tasks)

	tasks, ok = c.Registry().TasksFor(EventNewCatFact)
	require.True(t, ok)
	assert.Equal(t, []string{TaskLogCatFact}, tasks)
}

func TestFetchCatFact_AnnouncesFact(t *testing.T) {
	srv, hits := newCatFactService(t, http.StatusOK, sampleFact)
	c, recorder := newApp(t, srv.URL)

	inv, err := c.CallTask(context.Background(), TaskFetchCatFact, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, CatFact{Fact: "Cats sleep for most of the day.", Length: 31}, inv.Result)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))

	assert.Equal(t, []string{"get cat fact url", "fetch cat fact", "parse cat fact", "announce cat fact"}, inv.Stack.Names())
	assert.Len(t, recorder.Stacks(), 4)

	events := recorder.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventNewCatFact, events[0].Event.Name)
	assert.Equal(t, []string{TaskLogCatFact}, events[0].Event.TaskNames)
	assert.JSONEq(t, sampleFact, string(events[0].Event.Payload))
}

func TestFetchCatFact_ReplaySkipsDownload(t *testing.T) {
	srv, hits := newCatFactService(t, http.StatusOK, sampleFact)
	c, recorder := newApp(t, srv.URL)

	stack := ledger.Stack{
		ledger.Success("plz-1", "get cat fact url", json.RawMessage(`"`+srv.URL+`"`)),
		ledger.Success("plz-2", "fetch cat fact", json.RawMessage(`{"fact":"Cats purr.","length":10}`)),
	}
	inv, err := c.CallTask(context.Background(), TaskFetchCatFact, nil, stack)
	require.NoError(t, err)
	assert.Equal(t, CatFact{Fact: "Cats purr.", Length: 10}, inv.Result)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
	assert.Len(t, recorder.Stacks(), 2)
}

func TestFetchCatFact_ServiceFailureIsRecorded(t *testing.T) {
	srv, _ := newCatFactService(t, http.StatusServiceUnavailable, `{"message":"down"}`)
	c, _ := newApp(t, srv.URL)

	inv, err := c.CallTask(context.Background(), TaskFetchCatFact, nil, nil)
	require.Error(t, err)
	require.NotNil(t, inv)

	item, ok := inv.Stack.Find("fetch cat fact")
	require.True(t, ok)
	assert.Equal(t, ledger.StatusError, item.Status)
	assert.Equal(t, 0, item.AttemptCount())

	parsed, err := dipErrors.Parse(item.Error)
	require.NoError(t, err)
	assert.Equal(t, dipErrors.UnknownCode, parsed.Code)
}

func TestFetchCatFact_InvalidFact(t *testing.T) {
	srv, _ := newCatFactService(t, http.StatusOK, `{"length":3}`)
	c, recorder := newApp(t, srv.URL)

	_, err := c.CallTask(context.Background(), TaskFetchCatFact, nil, nil)
	require.Error(t, err)
	assert.Empty(t, recorder.Events())
}

func TestLogCatFact(t *testing.T) {
	c, recorder := newApp(t, "")

	inv, err := c.CallTask(context.Background(), TaskLogCatFact, json.RawMessage(sampleFact), nil)
	require.NoError(t, err)
	assert.Equal(t, Report{Fact: "Cats sleep for most of the day.", LengthMatch: true, Words: 7}, inv.Result)
	assert.Equal(t, []string{"check cat fact length", "log cat fact", "count number of words"}, inv.Stack.Names())
	assert.Len(t, recorder.Stacks(), 3)
}

func TestLogCatFact_RejectsBadPayload(t *testing.T) {
	c, _ := newApp(t, "")

	_, err := c.CallTask(context.Background(), TaskLogCatFact, map[string]interface{}{"fact": 42}, nil)
	require.Error(t, err)
	assert.True(t, dipErrors.IsCode(err, dipErrors.CodeInvalidPayload))

	err = c.FireEvent(context.Background(), EventNewCatFact, map[string]interface{}{"length": 3})
	assert.True(t, dipErrors.IsCode(err, dipErrors.CodeInvalidPayload))
}
