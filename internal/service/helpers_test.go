package service

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"statementapi/internal/metrics"
	"statementapi/internal/storage"
)

const testSecret = "test-secret"

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

// stepClock returns successive times one second apart starting at start.
func stepClock(start time.Time) func() time.Time {
	var (
		mu sync.Mutex
		t  = start
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur := t
		t = t.Add(time.Second)
		return cur
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestMetrics() *metrics.Metrics {
	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		panic(err)
	}
	return m
}

func testLinkOptions() LinkOptions {
	return LinkOptions{
		Secret:     testSecret,
		DefaultTTL: 4 * time.Hour,
		MaxTTL:     720 * time.Hour,
		Window:     time.Hour,
		BaseURL:    "https://example.org",
	}
}

func testDownloadOptions() DownloadOptions {
	return DownloadOptions{
		Secret:         testSecret,
		Window:         time.Hour,
		CacheMaxAge:    120 * time.Second,
		TrustedOrigins: []string{"https://example.org"},
	}
}

func nopBody() io.ReadCloser {
	return io.NopCloser(strings.NewReader("%PDF-1.7"))
}

func mockInfo() storage.ObjectInfo {
	return storage.ObjectInfo{Key: "2024/2024_abcde.pdf", Size: 8}
}
