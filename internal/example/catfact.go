// Package example is a small application built on the client: it fetches a
// cat fact in one task and reports on it in another.
package example

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"google.golang.org/api/googleapi"

	"github.com/maxkimambo/plz/internal/client"
	"github.com/maxkimambo/plz/internal/logger"
	"github.com/maxkimambo/plz/internal/registry"
	"github.com/maxkimambo/plz/internal/step"
	"github.com/maxkimambo/plz/internal/validation"
)

const (
	EventRequestCatFact = "request cat fact"
	EventNewCatFact     = "new cat fact"

	TaskFetchCatFact = "fetchCatFact"
	TaskLogCatFact   = "logCatFact"

	DefaultFactURL = "https://catfact.ninja/fact"
)

const catFactSchema = `{
  "type": "object",
  "properties": {
    "fact": {"type": "string"},
    "length": {"type": "number"}
  },
  "required": ["fact", "length"]
}`

type CatFact struct {
	Fact   string `json:"fact" validate:"required"`
	Length int    `json:"length" validate:"gte=0"`
}

// Options tunes where facts come from.
type Options struct {
	FactURL    string
	HTTPClient *http.Client
}

type catFacts struct {
	client  *client.Client
	factURL string
	http    *http.Client
}

// Events declares the cat fact events.
func Events() registry.Events {
	return registry.Events{
		EventRequestCatFact: {},
		EventNewCatFact:     {Payload: validation.MustCompileJSONSchema("cat-fact", catFactSchema)},
	}
}

// Register declares the cat fact events on c and binds its tasks.
func Register(c *client.Client, opts Options) error {
	if opts.FactURL == "" {
		opts.FactURL = DefaultFactURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	app := &catFacts{client: c, factURL: opts.FactURL, http: opts.HTTPClient}

	c.DefineEvents(Events())
	return c.Register(registry.Tasks{
		TaskFetchCatFact: c.On(EventRequestCatFact).DoIt(app.fetchCatFact),
		TaskLogCatFact:   c.On(EventNewCatFact).DoIt(app.logCatFact),
	})
}

func (a *catFacts) fetchCatFact(ctx context.Context, run *step.Run) (interface{}, error) {
	url, err := step.Step(ctx, run, "get cat fact url", func(ctx context.Context) (string, error) {
		return a.factURL, nil
	})
	if err != nil {
		return nil, err
	}

	raw, err := run.Plz(ctx, "fetch cat fact", func(ctx context.Context) (interface{}, error) {
		return a.download(ctx, url)
	})
	if err != nil {
		return nil, err
	}

	fact, err := step.Step(ctx, run, "parse cat fact", func(ctx context.Context) (CatFact, error) {
		return validation.Decode[CatFact](raw)
	})
	if err != nil {
		return nil, err
	}

	err = step.Do(ctx, run, "announce cat fact", func(ctx context.Context) error {
		return a.client.FireEvent(ctx, EventNewCatFact, fact)
	})
	if err != nil {
		return nil, err
	}
	return fact, nil
}

func (a *catFacts) download(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cat fact: %w", err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, fmt.Errorf("cat fact service: %w", err)
	}

	var body json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode cat fact: %w", err)
	}
	return body, nil
}

// Report is what logCatFact returns.
type Report struct {
	Fact        string `json:"fact"`
	LengthMatch bool   `json:"lengthMatch"`
	Words       int    `json:"words"`
}

func (a *catFacts) logCatFact(ctx context.Context, run *step.Run) (interface{}, error) {
	var fact CatFact
	if err := run.DecodePayload(&fact); err != nil {
		return nil, err
	}

	matches, err := step.Step(ctx, run, "check cat fact length", func(ctx context.Context) (bool, error) {
		ok := fact.Length == utf8.RuneCountInString(fact.Fact)
		if !ok {
			logger.Op.Warnf("Cat fact length mismatch: reported %d, actual %d", fact.Length, utf8.RuneCountInString(fact.Fact))
		}
		return ok, nil
	})
	if err != nil {
		return nil, err
	}

	err = step.Do(ctx, run, "log cat fact", func(ctx context.Context) error {
		logger.User.Info(fact.Fact)
		return nil
	})
	if err != nil {
		return nil, err
	}

	words, err := step.Step(ctx, run, "count number of words", func(ctx context.Context) (int, error) {
		n := len(strings.Fields(fact.Fact))
		logger.User.Infof("word count: %d", n)
		return n, nil
	})
	if err != nil {
		return nil, err
	}

	return Report{Fact: fact.Fact, LengthMatch: matches, Words: words}, nil
}
