package httpclient

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedClient(t *testing.T, cfg *Config) *Client {
	t.Helper()
	c := New(cfg)
	httpmock.ActivateNonDefault(c.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	t.Cleanup(c.Close)
	return c
}

func TestGetInjectsUserAgent(t *testing.T) {
	c := newMockedClient(t, &Config{UserAgent: "wildscout-test/1.0"})

	var gotUA string
	httpmock.RegisterResponder(http.MethodGet, "https://example.org/ping",
		func(req *http.Request) (*http.Response, error) {
			gotUA = req.Header.Get("User-Agent")
			return httpmock.NewStringResponse(http.StatusOK, "pong"), nil
		})

	resp, err := c.Get(context.Background(), "https://example.org/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "wildscout-test/1.0", gotUA)
}

func TestDoKeepsExplicitUserAgent(t *testing.T) {
	c := newMockedClient(t, &Config{UserAgent: "default-agent"})

	var gotUA string
	httpmock.RegisterResponder(http.MethodGet, "https://example.org/ua",
		func(req *http.Request) (*http.Response, error) {
			gotUA = req.Header.Get("User-Agent")
			return httpmock.NewStringResponse(http.StatusOK, ""), nil
		})

	req, err := http.NewRequest(http.MethodGet, "https://example.org/ua", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "explicit-agent")

	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "explicit-agent", gotUA)
}

func TestDoNilRequest(t *testing.T) {
	c := New(nil)
	t.Cleanup(c.Close)

	_, err := c.Do(context.Background(), nil)
	assert.Error(t, err)
}

func TestHooksFire(t *testing.T) {
	c := newMockedClient(t, nil)
	httpmock.RegisterResponder(http.MethodGet, "https://example.org/hooked",
		httpmock.NewStringResponder(http.StatusTeapot, ""))

	var before, after atomic.Int32
	c.SetBeforeRequestHook(func(*http.Request) { before.Add(1) })
	c.SetAfterResponseHook(func(_ *http.Request, resp *http.Response, err error) {
		after.Add(1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	})

	resp, err := c.Get(context.Background(), "https://example.org/hooked")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, int32(1), before.Load())
	assert.Equal(t, int32(1), after.Load())
}

func TestDoRespectsContextCancellation(t *testing.T) {
	c := newMockedClient(t, nil)
	httpmock.RegisterResponder(http.MethodGet, "https://example.org/slow",
		func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, "https://example.org/slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
