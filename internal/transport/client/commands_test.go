package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharipovr/aws-url-shortener/internal/domain"
)

// captureOutput captures stdout for testing print statements
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	origStdout := os.Stdout
	os.Stdout = w

	outputChan := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outputChan <- buf.String()
	}()

	fn()

	w.Close()
	os.Stdout = origStdout

	output := <-outputChan
	r.Close()

	return output
}

func TestNewCommands(t *testing.T) {
	client := NewClient("http://localhost:8080")
	commands := NewCommands(client)

	assert.NotNil(t, commands)
	assert.Equal(t, client, commands.client)
}

func TestCommands_Create(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(domain.CreateLinkResponse{
			ShortCode:   "abc1234",
			ShortURL:    "http://localhost:8080/abc1234",
			OriginalURL: "https://example.com",
			CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}))
	defer server.Close()

	commands := NewCommands(NewClient(server.URL))

	var err error
	output := captureOutput(t, func() {
		err = commands.Create(context.Background(), "https://example.com")
	})

	require.NoError(t, err)
	assert.Contains(t, output, "Short Code: abc1234")
	assert.Contains(t, output, "Short URL: http://localhost:8080/abc1234")
	assert.Contains(t, output, "Created At: 2024-01-01T00:00:00Z")
}

func TestCommands_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(domain.LinkInfoResponse{
				ShortCode:   "abc1234",
				ShortURL:    "http://localhost:8080/abc1234",
				OriginalURL: "https://example.com",
				ClickCount:  7,
			})
		}))
		defer server.Close()

		commands := NewCommands(NewClient(server.URL))

		var err error
		output := captureOutput(t, func() {
			err = commands.Get(context.Background(), "abc1234")
		})

		require.NoError(t, err)
		assert.Contains(t, output, "Original URL: https://example.com")
		assert.Contains(t, output, "Click Count: 7")
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		commands := NewCommands(NewClient(server.URL))

		var err error
		output := captureOutput(t, func() {
			err = commands.Get(context.Background(), "nonexistent")
		})

		require.NoError(t, err)
		assert.Contains(t, output, "Short code 'nonexistent' not found")
	})
}

func TestCommands_Resolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://example.com/landing")
		w.WriteHeader(http.StatusMovedPermanently)
	}))
	defer server.Close()

	commands := NewCommands(NewClient(server.URL))

	var err error
	output := captureOutput(t, func() {
		err = commands.Resolve(context.Background(), "abc1234")
	})

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/landing\n", output)
}

func TestCommands_ResolveServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error"}`))
	}))
	defer server.Close()

	err := NewCommands(NewClient(server.URL)).Resolve(context.Background(), "abc1234")
	assert.EqualError(t, err, "server returned status 500: Internal server error")
}
