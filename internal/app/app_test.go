package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sharipovr/aws-url-shortener/internal/cache"
	"github.com/sharipovr/aws-url-shortener/internal/config"
	"github.com/sharipovr/aws-url-shortener/internal/domain"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", BaseURL: "http://sho.rt/"},
		Store: config.StoreConfig{
			Backend: backend,
			Table:   "url-shortener",
			DBPath:  filepath.Join(t.TempDir(), "urls.db"),
		},
		Code:    config.CodeConfig{Alphabet: "base62", MaxAttempts: 3},
		Cache:   config.CacheConfig{Enabled: true, Size: 100},
		Clicks:  config.ClicksConfig{Workers: 4, QueueSize: 16, Timeout: 5 * time.Second},
		Log:     config.LogConfig{Level: "debug", Format: "json"},
		Metrics: config.MetricsConfig{Enabled: true},
	}
	require.NoError(t, cfg.Validate())

	return cfg
}

// noRedirectClient returns redirects to the caller instead of following them
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func createLink(t *testing.T, serverURL, originalURL string) domain.CreateLinkResponse {
	t.Helper()

	body, err := json.Marshal(domain.CreateLinkRequest{URL: originalURL})
	require.NoError(t, err)

	resp, err := http.Post(serverURL+"/urls", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created domain.CreateLinkResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	return created
}

func TestApp_FullWorkflow(t *testing.T) {
	for _, backend := range []string{config.BackendMemory, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()

			a, err := New(ctx, testConfig(t, backend), zaptest.NewLogger(t))
			require.NoError(t, err)
			defer a.Close()

			server := httptest.NewServer(a.HTTPServer().Handler())
			defer server.Close()

			originalURL := "https://example.com/very/long/path/to/resource?q=1"
			created := createLink(t, server.URL, originalURL)

			assert.Len(t, created.ShortCode, 7)
			assert.Equal(t, "http://sho.rt/"+created.ShortCode, created.ShortURL)
			assert.Equal(t, originalURL, created.OriginalURL)
			assert.Equal(t, time.UTC, created.CreatedAt.Location())

			// Redirect
			resp, err := noRedirectClient().Get(server.URL + "/" + created.ShortCode)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
			assert.Equal(t, originalURL, resp.Header.Get("Location"))
			assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

			// Info reflects the click once the recorder has applied it
			require.Eventually(t, func() bool {
				link, err := a.Service.GetLinkInfo(ctx, created.ShortCode)
				return err == nil && link.ClickCount == 1
			}, 5*time.Second, 10*time.Millisecond)

			resp, err = http.Get(server.URL + "/urls/" + created.ShortCode)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var info domain.LinkInfoResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
			assert.Equal(t, created.ShortCode, info.ShortCode)
			assert.Equal(t, int64(1), info.ClickCount)
			assert.True(t, created.CreatedAt.Equal(info.CreatedAt))

			// Unknown code
			resp, err = noRedirectClient().Get(server.URL + "/zzzzzzz")
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.JSONEq(t, `{"error":"Short URL not found"}`, string(body))
		})
	}
}

func TestApp_ConcurrentRedirectsAreAllCounted(t *testing.T) {
	for _, backend := range []string{config.BackendMemory, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()

			a, err := New(ctx, testConfig(t, backend), zaptest.NewLogger(t))
			require.NoError(t, err)

			server := httptest.NewServer(a.HTTPServer().Handler())
			defer server.Close()

			created := createLink(t, server.URL, "https://example.com/popular")

			const requests = 100
			client := noRedirectClient()

			var wg sync.WaitGroup
			for i := 0; i < requests; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					resp, err := client.Get(server.URL + "/" + created.ShortCode)
					if assert.NoError(t, err) {
						resp.Body.Close()
						assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
					}
				}()
			}
			wg.Wait()

			// Draining the recorder applies every pending increment
			require.NoError(t, a.Recorder.Close())

			link, err := a.Store.Get(ctx, created.ShortCode)
			require.NoError(t, err)
			assert.Equal(t, int64(requests), link.ClickCount)

			assert.Equal(t, float64(requests), testutil.ToFloat64(a.Metrics.ClickIncrementsTotal.WithLabelValues("success")))
			assert.Equal(t, float64(requests), testutil.ToFloat64(a.Metrics.RedirectsTotal.WithLabelValues("success")))

			require.NoError(t, a.Close())
		})
	}
}

func TestApp_SQLiteSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.BackendSQLite)

	first, err := New(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	link, err := first.Service.CreateShortLink(ctx, "https://example.com/persisted")
	require.NoError(t, err)
	_, err = first.Service.ResolveAndCount(ctx, link.ShortCode)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer second.Close()

	stored, err := second.Service.GetLinkInfo(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/persisted", stored.OriginalURL)
	assert.Equal(t, int64(1), stored.ClickCount)
}

func TestApp_MetricsEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		enabled        bool
		expectedStatus int
	}{
		{name: "enabled", enabled: true, expectedStatus: http.StatusOK},
		// /metrics then resolves as a short code
		{name: "disabled", enabled: false, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, config.BackendMemory)
			cfg.Metrics.Enabled = tt.enabled

			a, err := New(context.Background(), cfg, nil)
			require.NoError(t, err)
			defer a.Close()

			server := httptest.NewServer(a.HTTPServer().Handler())
			defer server.Close()

			createLink(t, server.URL, "https://example.com")

			resp, err := noRedirectClient().Get(server.URL + "/metrics")
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.enabled {
				assert.True(t, strings.Contains(string(body), `links_created_total{result="success"} 1`))
			}
		})
	}
}

func TestApp_CacheDisabled(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	cfg.Cache.Enabled = false

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, cache.Nop{}, a.Cache)
}

func TestApp_InlineClicks(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.BackendMemory)
	cfg.Clicks.Workers = 0

	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	link, err := a.Service.CreateShortLink(ctx, "https://example.com")
	require.NoError(t, err)
	_, err = a.Service.ResolveAndCount(ctx, link.ShortCode)
	require.NoError(t, err)

	// Applied before ResolveAndCount returned
	stored, err := a.Store.Get(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ClickCount)
}

func TestNewStore_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr string
	}{
		{
			name:    "unknown backend",
			mutate:  func(cfg *config.Config) { cfg.Store.Backend = "cassandra" },
			wantErr: `unsupported store backend: "cassandra"`,
		},
		{
			name: "unwritable sqlite path",
			mutate: func(cfg *config.Config) {
				cfg.Store.DBPath = "/invalid/path/to/database.db"
			},
			wantErr: "failed to initialize store",
		},
		{
			name: "unparseable postgres DSN",
			mutate: func(cfg *config.Config) {
				cfg.Store.Backend = config.BackendPostgres
				cfg.Store.DatabaseURL = "postgres://%zz"
			},
			wantErr: "failed to parse database config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, config.BackendSQLite)
			tt.mutate(cfg)

			a, err := New(context.Background(), cfg, nil)
			assert.Nil(t, a)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
