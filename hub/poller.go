// Poller implements the provider poller: one worker per configured
// provider URL, /hello then /all_data, ALL_AT_ONCE only,
// non-overlapping fetches paced by interval_seconds, and the failure model
// (retain-on-error, clear-and-degrade-on-malformed). It publishes hub.Event
// broadcasts for the debug transport and reports through PollerMetrics.
//
// Fetches are paced with golang.org/x/time/rate so a slow or hanging
// provider cannot pile up queued fetches the way a bare time.Ticker would.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sebitommy123/SA/errs"
	"github.com/sebitommy123/SA/log"
	"github.com/sebitommy123/SA/store"
	"github.com/sebitommy123/SA/value"
)

// Mode mirrors the provider /hello mode field. Only
// ALL_AT_ONCE is fetched by this core; ON_DEMAND providers register but are
// never polled.
type Mode string

const (
	ModeAllAtOnce Mode = "ALL_AT_ONCE"
	ModeOnDemand  Mode = "ON_DEMAND"
)

// HelloResponse is the decoded body of a provider's GET /hello.
type HelloResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Mode        Mode   `json:"mode"`
	Version     string `json:"version"`
}

// Event subjects broadcast onto the debug hub whenever a poller's status
// changes.
const (
	EventFetchOK       = "poller.fetch_ok"
	EventFetchRetained = "poller.fetch_retained"
	EventDegraded      = "poller.degraded"
	EventHelloFailed   = "poller.hello_failed"
)

// Event is the payload broadcast for each status subject above.
type Event struct {
	Provider string    `json:"provider"`
	URL      string    `json:"url"`
	Count    int       `json:"count,omitempty"`
	Err      string    `json:"err,omitempty"`
	At       time.Time `json:"at"`
}

// PollerMetrics is the subset of package metrics a Poller reports through.
// Kept as a small interface here so hub doesn't need to import the
// prometheus client types metrics wraps; cmd/saed supplies the real
// implementation (*metrics.Engine).
type PollerMetrics interface {
	ObserveFetch(source string, ok bool, degraded bool, dur time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ObserveFetch(string, bool, bool, time.Duration) {}

const defaultFetchTimeout = 30 * time.Second

// Poller owns a single provider URL's fetch loop. Construct with NewPoller
// and run with Run in its own goroutine; cancel the context passed to Run
// to stop it at the next quiescent point.
type Poller struct {
	URL      string
	Interval time.Duration
	Store    *store.Store
	Hub      *Hub
	Metrics  PollerMetrics
	Log      log.Logger
	Client   *http.Client

	source  string
	mode    Mode
	limiter *rate.Limiter
}

// NewPoller returns a Poller for url, fetching at most once per interval.
func NewPoller(url string, interval time.Duration, st *store.Store, h *Hub, lg log.Logger) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	// The bucket starts full; spend that token now so the first sleep after
	// the initial fetch waits a whole interval instead of returning at once.
	limiter.Allow()
	return &Poller{
		URL:      url,
		Interval: interval,
		Store:    st,
		Hub:      h,
		Metrics:  noopMetrics{},
		Log:      lg,
		Client:   &http.Client{},
		limiter:  limiter,
	}
}

// Run blocks fetching on its interval until ctx is cancelled. Each pass
// calls /hello synchronously until it has succeeded once; a failing
// /hello is retried on the same interval without ever having fetched
// /all_data (the provider is simply absent from the store until it
// succeeds).
func (p *Poller) Run(ctx context.Context) {
	if p.Log == nil {
		p.Log = log.Root
	}
	if p.Client == nil {
		p.Client = &http.Client{}
	}
	if p.Metrics == nil {
		p.Metrics = noopMetrics{}
	}
	for {
		if p.source == "" {
			if err := p.hello(ctx); err != nil {
				p.Log.Debug("provider hello failed", "url", p.URL, "err", err)
				p.broadcast(EventHelloFailed, 0, err)
				if !p.sleep(ctx) {
					return
				}
				continue
			}
		}
		if p.mode == ModeAllAtOnce {
			p.fetchOnce(ctx)
		}
		if !p.sleep(ctx) {
			return
		}
	}
}

// RunOnce performs a single hello-then-fetch cycle synchronously and
// returns, instead of looping on Interval. Used by one-off CLI query
// evaluation (cmd/saed's "query" subcommand), which needs one populated
// store rather than a long-running poller goroutine.
func (p *Poller) RunOnce(ctx context.Context) error {
	if p.Log == nil {
		p.Log = log.Root
	}
	if p.Client == nil {
		p.Client = &http.Client{}
	}
	if p.Metrics == nil {
		p.Metrics = noopMetrics{}
	}
	if err := p.hello(ctx); err != nil {
		return err
	}
	if p.mode == ModeAllAtOnce {
		p.fetchOnce(ctx)
	}
	return nil
}

// sleep waits for the limiter to admit the next fetch or for ctx to be
// cancelled, whichever comes first, returning false on cancellation.
func (p *Poller) sleep(ctx context.Context) bool {
	if err := p.limiter.Wait(ctx); err != nil {
		return false
	}
	return true
}

func (p *Poller) hello(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, defaultFetchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(cctx, http.MethodGet, strings.TrimSuffix(p.URL, "/")+"/hello", nil)
	if err != nil {
		return errs.NewProviderError(p.URL, err)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return errs.NewProviderError(p.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errs.NewProviderError(p.URL, fmt.Errorf("hello status %d", resp.StatusCode))
	}
	var hr HelloResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return errs.NewProviderError(p.URL, fmt.Errorf("decode hello: %w", err))
	}
	if hr.Name == "" {
		return errs.NewProviderError(p.URL, fmt.Errorf("hello response missing name"))
	}
	p.source = hr.Name
	p.mode = hr.Mode
	p.Log.Debug("provider hello ok", "url", p.URL, "name", p.source, "mode", p.mode)
	return nil
}

// fetchOnce performs a single /all_data fetch-and-publish. A network error
// or non-2xx response retains the previous contribution; malformed JSON or
// missing reserved keys clears it and marks the provider degraded.
func (p *Poller) fetchOnce(ctx context.Context) {
	start := time.Now()
	st := store.ProviderStatus{Source: p.source, LastAttempt: start}

	objects, err := p.doFetch(ctx)
	dur := time.Since(start)
	switch {
	case err == nil:
		p.Store.ReplaceProvider(p.source, objects)
		st.LastSuccess = start
		p.Store.SetStatus(st)
		p.Metrics.ObserveFetch(p.source, true, false, dur)
		p.broadcast(EventFetchOK, len(objects), nil)
	case errs.IsMalformed(err):
		p.Store.ReplaceProvider(p.source, nil)
		st.Degraded = true
		st.LastError = err.Error()
		p.Store.SetStatus(st)
		p.Metrics.ObserveFetch(p.source, false, true, dur)
		p.Log.Error("provider contribution cleared", "source", p.source, "err", err)
		p.broadcast(EventDegraded, 0, err)
	default:
		prev, ok := p.Store.Status(p.source)
		st.Degraded = ok && prev.Degraded
		st.LastError = err.Error()
		st.LastSuccess = prevSuccess(ok, prev)
		p.Store.SetStatus(st)
		p.Metrics.ObserveFetch(p.source, false, st.Degraded, dur)
		p.Log.Debug("provider fetch failed, retaining last snapshot", "source", p.source, "url", p.URL, "err", err)
		p.broadcast(EventFetchRetained, 0, err)
	}
}

func prevSuccess(ok bool, prev store.ProviderStatus) time.Time {
	if ok {
		return prev.LastSuccess
	}
	return time.Time{}
}

func (p *Poller) doFetch(ctx context.Context) ([]*value.SAO, error) {
	cctx, cancel := context.WithTimeout(ctx, defaultFetchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(cctx, http.MethodGet, strings.TrimSuffix(p.URL, "/")+"/all_data", nil)
	if err != nil {
		return nil, errs.NewProviderError(p.URL, err)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, errs.NewProviderError(p.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errs.NewProviderError(p.URL, fmt.Errorf("all_data status %d", resp.StatusCode))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewProviderError(p.URL, fmt.Errorf("read all_data body: %w", err))
	}
	objects, err := value.DecodeAllData(body, p.source)
	if err != nil {
		return nil, errs.Malformed(fmt.Errorf("%s: %w", p.URL, err))
	}
	return objects, nil
}

func (p *Poller) broadcast(subj string, count int, err error) {
	if p.Hub == nil {
		return
	}
	ev := Event{Provider: p.source, URL: p.URL, Count: count, At: time.Now()}
	if err != nil {
		ev.Err = err.Error()
	}
	p.Hub.Broadcast(subj, ev)
}
