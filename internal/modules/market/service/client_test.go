package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"signal_bot/internal/modules/config"
)

const chartOK = `{"chart":{"result":[{"timestamp":[1700000000,1700014400,1700028800],
"indicators":{"quote":[{"close":[100.5,null,102.25]}]}}],"error":null}}`

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Market.BaseURL = srv.URL
	cfg.Market.Timeout = 5 * time.Second
	cfg.Market.Retries = 3
	cfg.Market.RetryPause = time.Millisecond
	cfg.Market.RequestsPerSecond = 1000
	return NewClient(cfg, nil)
}

func TestHistory_ParsesAndSkipsNullCloses(t *testing.T) {
	var path, query string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		path, query = r.URL.Path, r.URL.RawQuery
		_, _ = w.Write([]byte(chartOK))
	})

	s, ok := c.History(context.Background(), Request{Symbol: "THYAO.IS", Interval: "4h", Range: "720d"})
	if !ok {
		t.Fatal("expected ok")
	}
	if path != "/v8/finance/chart/THYAO.IS" {
		t.Fatalf("path=%q", path)
	}
	if query != "includePrePost=false&interval=4h&range=720d" {
		t.Fatalf("query=%q", query)
	}
	if s.Len() != 2 || s.Bars[0].Close != 100.5 || s.Bars[1].Close != 102.25 {
		t.Fatalf("bars=%+v", s.Bars)
	}
	if !s.Bars[1].Time.Equal(time.Unix(1700028800, 0)) {
		t.Fatalf("time=%v", s.Bars[1].Time)
	}
	if s.Symbol != "THYAO.IS" || s.Interval != "4h" {
		t.Fatalf("series meta %+v", s)
	}
}

func TestHistory_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			http.Error(w, "boom", http.StatusBadGateway)
		case 2:
			_, _ = w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
		default:
			_, _ = w.Write([]byte(chartOK))
		}
	})

	s, ok := c.History(context.Background(), Request{Symbol: "AAPL", Interval: "1d", Range: "600d"})
	if !ok || s.Len() != 2 {
		t.Fatalf("ok=%v len=%d", ok, s.Len())
	}
	if calls.Load() != 3 {
		t.Fatalf("calls=%d, want 3", calls.Load())
	}
}

func TestHistory_ExhaustedRetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	})

	s, ok := c.History(context.Background(), Request{Symbol: "NOPE", Interval: "1d", Range: "600d"})
	if ok || s.Len() != 0 {
		t.Fatalf("ok=%v len=%d", ok, s.Len())
	}
	if calls.Load() != 3 {
		t.Fatalf("calls=%d, want 3", calls.Load())
	}
}

func TestHistory_CancelledContextStopsRetrying(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	c.pause = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	done := make(chan bool)
	go func() {
		_, ok := c.History(ctx, Request{Symbol: "AAPL", Interval: "1d", Range: "600d"})
		done <- ok
	}()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected unavailable")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("History did not return after cancel")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls=%d, want 1", calls.Load())
	}
}
