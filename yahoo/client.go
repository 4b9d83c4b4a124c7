// Package yahoo retrieves daily adjusted close prices and FX rates from the
// Yahoo Finance chart API.
package yahoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/tradehistory"
	"github.com/etnz/tradehistory/date"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the chart API host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Field is the quote read from a chart response.
type Field string

const (
	// AdjClose is the close adjusted for splits and dividends, used for securities.
	AdjClose Field = "adjclose"
	// Close is the raw close, used for FX pairs.
	Close Field = "close"
)

func (f Field) path() string {
	if f == AdjClose {
		return "$.chart.result[0].indicators.adjclose[0].adjclose"
	}
	return "$.chart.result[0].indicators.quote[0].close"
}

// Client queries the chart API.
//
// Requests are rate limited, failed requests are retried with an
// exponential backoff, and histories are memoized in memory.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	// Limiter paces every request, including retries.
	Limiter *rate.Limiter
	// Retries is the number of extra attempts of a failed request.
	Retries int
	// Backoff is the delay before the first retry, doubled on each retry.
	Backoff time.Duration
	// MaxFailures is the number of consecutive years that may fail, retries
	// included, before a code is given up.
	MaxFailures int
	// Workers bounds the number of codes fetched concurrently.
	Workers int

	memo   *cache.Cache
	logger tradehistory.Logger
}

// New returns a client with default settings. A nil httpClient uses
// http.DefaultClient.
func New(httpClient *http.Client, logger tradehistory.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		HTTP:        httpClient,
		BaseURL:     DefaultBaseURL,
		Limiter:     rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		Retries:     3,
		Backoff:     time.Second,
		MaxFailures: 3,
		Workers:     4,
		memo:        cache.New(30*time.Minute, time.Hour),
		logger:      logger,
	}
}

// StatusError is a non 200 response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cannot http GET %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// permanent reports whether retrying err is pointless.
func permanent(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status >= 400 && se.Status < 500 && se.Status != http.StatusTooManyRequests
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// History returns the daily values of a symbol between two days, boundaries
// included. Days without a value are absent.
func (c *Client) History(ctx context.Context, symbol string, field Field, r date.Range) (*date.History[decimal.Decimal], error) {
	key := fmt.Sprintf("%s %s %s", symbol, field, r.Identifier())
	if h, ok := c.memo.Get(key); ok {
		return h.(*date.History[decimal.Decimal]), nil
	}

	addr := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=history",
		c.BaseURL, url.PathEscape(symbol), r.From.Time().Unix(), r.To.Add(1).Time().Unix())

	var jobj any
	var err error
	delay := c.Backoff
	for attempt := 0; ; attempt++ {
		if err = c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
		jobj = nil
		if err = jwget(ctx, c.HTTP, addr, &jobj); err == nil || permanent(err) || attempt >= c.Retries {
			break
		}
		c.logger.Debug("retrying", "symbol", symbol, "attempt", attempt+1, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	h, err := parseChart(jobj, field)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}
	c.memo.Set(key, h, cache.DefaultExpiration)
	return h, nil
}

// parseChart extracts the daily values of a chart response. Timestamps are
// shifted by the exchange offset before taking their day.
func parseChart(jobj any, field Field) (*date.History[decimal.Decimal], error) {
	if desc, err := jsonpath.Get("$.chart.error.description", jobj); err == nil && desc != nil {
		return nil, fmt.Errorf("chart error: %v", desc)
	}
	if _, err := jsonpath.Get("$.chart.result[0].meta", jobj); err != nil {
		return nil, fmt.Errorf("no chart result: %w", err)
	}
	h := new(date.History[decimal.Decimal])
	timestamps, err := list("$.chart.result[0].timestamp", jobj)
	if err != nil {
		// a range without trading day has no timestamp at all
		return h, nil
	}
	values, err := list(field.path(), jobj)
	if err != nil {
		return nil, err
	}
	if len(values) != len(timestamps) {
		return nil, fmt.Errorf("%d timestamps for %d values", len(timestamps), len(values))
	}
	var offset int64
	if v, err := jsonpath.Get("$.chart.result[0].meta.gmtoffset", jobj); err == nil {
		if f, ok := v.(float64); ok {
			offset = int64(f)
		}
	}

	for i, ts := range timestamps {
		sec, ok := ts.(float64)
		v, valid := values[i].(float64)
		if !ok || !valid {
			// days without trading have a null quote
			continue
		}
		on := date.Of(time.Unix(int64(sec)+offset, 0).UTC())
		h.Append(on, decimal.NewFromFloat(v))
	}
	return h, nil
}

// list returns the array at path. jsonpath is never clear about whether it
// returns a list of one answer or the answer itself, both are accepted.
func list(path string, jobj any) ([]any, error) {
	v, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	l, ok := v.([]any)
	if !ok {
		if v == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing %q: not a list: %v", path, v)
	}
	if len(l) == 1 {
		if inner, ok := l[0].([]any); ok {
			return inner, nil
		}
	}
	return l, nil
}

// jwget performs an HTTP GET request to the given address and unmarshals the
// JSON response body into data.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	// the chart API rejects requests without a browser like agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; trh)")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: resp.Request.URL.Host + resp.Request.URL.Path, Status: resp.StatusCode}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}
