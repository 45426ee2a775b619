package client

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithHTTPClient(t *testing.T) {
	custom := &http.Client{Timeout: time.Minute}
	c := &Client{}
	WithHTTPClient(custom)(c)
	assert.Same(t, custom, c.httpClient)

	WithHTTPClient(nil)(c)
	assert.Same(t, custom, c.httpClient)
}

func TestWithRetryMax(t *testing.T) {
	c := &Client{retryMax: 3}
	WithRetryMax(5)(c)
	assert.Equal(t, 5, c.retryMax)
	WithRetryMax(0)(c)
	assert.Equal(t, 0, c.retryMax)
	WithRetryMax(-1)(c)
	assert.Equal(t, 0, c.retryMax)
}

func TestWithRetryWait(t *testing.T) {
	tests := []struct {
		name     string
		min, max time.Duration
		wantMin  time.Duration
		wantMax  time.Duration
	}{
		{"valid", time.Second, 10 * time.Second, time.Second, 10 * time.Second},
		{"max below min keeps max", 2 * time.Second, time.Second, 2 * time.Second, 5 * time.Second},
		{"non-positive min ignored", 0, time.Second, 500 * time.Millisecond, 5 * time.Second},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := &Client{retryWaitMin: 500 * time.Millisecond, retryWaitMax: 5 * time.Second}
			WithRetryWait(tc.min, tc.max)(c)
			assert.Equal(t, tc.wantMin, c.retryWaitMin)
			assert.Equal(t, tc.wantMax, c.retryWaitMax)
		})
	}
}

func TestWithUserAgentAndKey(t *testing.T) {
	c := &Client{userAgent: "default"}
	WithUserAgent("")(c)
	assert.Equal(t, "default", c.userAgent)
	WithUserAgent("custom")(c)
	assert.Equal(t, "custom", c.userAgent)

	WithAPIKey("k")(c)
	assert.Equal(t, "k", c.apiKey)

	logger := &testLogger{}
	WithLogger(logger)(c)
	assert.Same(t, logger, c.logger)
}
