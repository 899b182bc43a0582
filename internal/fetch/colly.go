// Package fetch implements watch.Fetcher using the Colly collector.
package fetch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/pagewatch/pagewatch/internal/watch"
)

// Config controls fetch behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher performs a single blocking GET per source. There are no retries;
// any transport error, timeout or non-success status is a watch.FetchError.
type Fetcher struct {
	cfg    Config
	base   *colly.Collector
	logger *zap.Logger
}

// New builds a Fetcher. The tracked pages are a fixed first-party set, so
// robots handling is left off.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	// ParseHTTPErrorResponse routes every HTTP status through OnResponse;
	// without it colly reports anything above 202 as an OnError, which
	// loses the status code on the Visit error path.
	c := colly.NewCollector(
		colly.Async(false),
		colly.IgnoreRobotsTxt(),
		colly.ParseHTTPErrorResponse(),
	)
	return &Fetcher{
		cfg:    cfg,
		base:   c,
		logger: logger,
	}
}

type fetchResult struct {
	body   []byte
	status int
	err    error
}

// Fetch retrieves the current content of rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &watch.FetchError{URL: rawURL, Err: err}
	}

	collector := f.base.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.SetRequestTimeout(f.cfg.Timeout)

	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{
			body:   append([]byte{}, r.Body...),
			status: r.StatusCode,
		})
	})

	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		res := fetchResult{err: err}
		if r != nil {
			res.status = r.StatusCode
		}
		send(res)
	})

	if err := collector.Visit(rawURL); err != nil {
		// A handler may have fired before Visit propagated the same
		// failure; its result carries the status code, the Visit error
		// does not.
		select {
		case res := <-resultCh:
			if res.err == nil {
				res.err = err
			}
			return nil, &watch.FetchError{URL: rawURL, Status: res.status, Err: res.err}
		default:
			return nil, &watch.FetchError{URL: rawURL, Err: err}
		}
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return nil, &watch.FetchError{URL: rawURL, Err: err}
		}
		if res.err != nil {
			return nil, &watch.FetchError{URL: rawURL, Status: res.status, Err: res.err}
		}
		if res.status < 200 || res.status > 299 {
			return nil, &watch.FetchError{URL: rawURL, Status: res.status}
		}
		f.logger.Debug("Fetched page",
			zap.String("url", rawURL),
			zap.Int("status", res.status),
			zap.Int("bytes", len(res.body)),
		)
		return res.body, nil
	default:
		return nil, &watch.FetchError{URL: rawURL, Err: errors.New("fetch produced no result")}
	}
}
