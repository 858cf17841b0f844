package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/metrics"
)

const userAgent = "Mozilla/5.0 (compatible; signal_bot/1.0)"

// Request: что и за какой период запрашиваем у провайдера.
type Request struct {
	Symbol   string
	Interval string // 4h, 1d ...
	Range    string // 720d, 600d ...
}

// Client: REST-клиент Yahoo Finance chart API.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
	retries int
	pause   time.Duration
	metrics *metrics.Recorder
}

func NewClient(cfg *config.Config, m *metrics.Recorder) *Client {
	mc := cfg.Market
	return &Client{
		http:    &http.Client{Timeout: mc.Timeout},
		baseURL: strings.TrimRight(mc.BaseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(mc.RequestsPerSecond), 1),
		retries: mc.Retries,
		pause:   mc.RetryPause,
		metrics: m,
	}
}

// History fetches req with bounded retries. ok is false when every attempt
// failed or returned no bars; it never returns an error.
func (c *Client) History(ctx context.Context, req Request) (models.Series, bool) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "market.history")
	span.SetTag("symbol", req.Symbol)
	span.SetTag("interval", req.Interval)
	defer span.Finish()

	log := logger.Symbol(req.Symbol)
	retries := c.retries
	if retries < 1 {
		retries = 1
	}

	for attempt := 1; attempt <= retries; attempt++ {
		series, err := c.fetch(ctx, req)
		switch {
		case err != nil:
			c.metrics.Fetch(req.Interval, "error")
			log.Warn("%s download failed (attempt %d): %v", req.Interval, attempt, err)
		case series.Len() == 0:
			c.metrics.Fetch(req.Interval, "empty")
			log.Warn("%s download returned no bars (attempt %d)", req.Interval, attempt)
		default:
			c.metrics.Fetch(req.Interval, "ok")
			return series, true
		}

		if attempt == retries || !c.sleep(ctx) {
			break
		}
	}
	span.SetTag("error", true)
	return models.Series{Symbol: req.Symbol, Interval: req.Interval}, false
}

func (c *Client) sleep(ctx context.Context) bool {
	if c.pause <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(c.pause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *Client) fetch(ctx context.Context, req Request) (models.Series, error) {
	out := models.Series{Symbol: req.Symbol, Interval: req.Interval}

	if err := c.limiter.Wait(ctx); err != nil {
		return out, errors.Wrap(err, "rate limit wait")
	}

	q := url.Values{}
	q.Set("interval", req.Interval)
	q.Set("range", req.Range)
	q.Set("includePrePost", "false")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(req.Symbol), q.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return out, errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return out, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, errors.Wrap(err, "read body")
	}
	if resp.StatusCode/100 != 2 {
		return out, errors.Errorf("http %d: %s", resp.StatusCode, truncate(string(b), 200))
	}

	var r chartResponse
	if err := sonic.Unmarshal(b, &r); err != nil {
		return out, errors.Wrap(err, "decode chart")
	}
	if r.Chart.Error != nil {
		return out, errors.Errorf("chart error: %s %s", r.Chart.Error.Code, r.Chart.Error.Description)
	}
	if len(r.Chart.Result) == 0 || len(r.Chart.Result[0].Indicators.Quote) == 0 {
		return out, nil
	}

	res := r.Chart.Result[0]
	closes := res.Indicators.Quote[0].Close
	out.Bars = make([]models.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		// у Yahoo бывают дыры (null), пропускаем
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		out.Bars = append(out.Bars, models.Bar{Time: time.Unix(ts, 0).UTC(), Close: *closes[i]})
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
