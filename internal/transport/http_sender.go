package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/maxkimambo/plz/internal/ledger"
	"github.com/maxkimambo/plz/internal/logger"
	"google.golang.org/api/googleapi"
)

// DefaultRemoteURL is the collector used when none is configured.
const DefaultRemoteURL = "https://do-it-plz.com/api"

const defaultSendTimeout = 10 * time.Second

// URLs holds the collector endpoints derived from the remote base URL.
type URLs struct {
	Events   string
	Subtasks string
}

// NewURLs derives the collector endpoints from remoteURL.
func NewURLs(remoteURL string) URLs {
	if remoteURL == "" {
		remoteURL = DefaultRemoteURL
	}
	remoteURL = strings.TrimRight(remoteURL, "/")
	return URLs{
		Events:   remoteURL + "/events",
		Subtasks: remoteURL + "/subtasks",
	}
}

// HTTPSender posts JSON to the collector.
type HTTPSender struct {
	URLs   URLs
	Client *http.Client
	Retry  *RetryPolicy
}

// NewHTTPSender creates a sender for the collector at remoteURL.
func NewHTTPSender(remoteURL string, retry *RetryPolicy) *HTTPSender {
	if retry == nil {
		retry = NewDefaultRetryPolicy()
	}
	return &HTTPSender{
		URLs:   NewURLs(remoteURL),
		Client: &http.Client{Timeout: defaultSendTimeout},
		Retry:  retry,
	}
}

// SendEvent posts a fired event to the events endpoint.
func (s *HTTPSender) SendEvent(ctx context.Context, event EventFire, meta Metadata) error {
	if event.TaskNames == nil {
		event.TaskNames = []string{}
	}
	return s.post(ctx, s.URLs.Events, event, meta)
}

// SendStack posts the whole ledger to the subtasks endpoint.
func (s *HTTPSender) SendStack(ctx context.Context, stack ledger.Stack, meta Metadata) error {
	return s.post(ctx, s.URLs.Subtasks, stack.Clone(), meta)
}

func (s *HTTPSender) post(ctx context.Context, url string, body interface{}, meta Metadata) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request for %s: %w", url, err)
	}

	return s.Retry.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to build request for %s: %w", url, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(HeaderClientID, meta.ClientID)
		req.Header.Set(HeaderClientName, meta.ClientName)
		req.Header.Set(HeaderClientVersion, meta.ClientVersion)

		resp, err := s.client().Do(req)
		if err != nil {
			logger.Op.Debugf("POST %s failed: %v", url, err)
			return fmt.Errorf("failed to send to %s: %w", url, err)
		}
		defer func() {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}()

		if err := googleapi.CheckResponse(resp); err != nil {
			logger.Op.Debugf("POST %s returned %d", url, resp.StatusCode)
			return fmt.Errorf("collector rejected request to %s: %w", url, err)
		}
		return nil
	})
}

func (s *HTTPSender) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}
