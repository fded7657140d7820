package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-backoffice/pkg/config"
	appErrors "github.com/noah-isme/course-backoffice/pkg/errors"
	"github.com/noah-isme/course-backoffice/pkg/middleware/requestid"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*BackendClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewBackendClient(config.BackendConfig{
		BaseURL:    srv.URL,
		Timeout:    2 * time.Second,
		Retries:    2,
		RetryDelay: time.Millisecond,
	}, nil, nil)
	return client, srv
}

func TestBackendClientForwardsTokenAndRequestID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "req-42", r.Header.Get(requestid.HeaderKey))
		assert.Equal(t, "/course/allCourses", r.URL.Path)
		_, _ = w.Write([]byte(`{"courses":[]}`))
	})

	ctx := requestid.WithValue(context.Background(), "req-42")
	var out map[string]interface{}
	require.NoError(t, client.Get(ctx, "tok-1", "/course/allCourses", nil, &out))
	assert.Contains(t, out, "courses")
}

func TestBackendClientRetriesIdempotentReads(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, client.Get(context.Background(), "", "/packages", nil, &out))
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestBackendClientDoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad price"}`))
	})

	err := client.Get(context.Background(), "", "/packages", nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	var fetchErr *appErrors.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusBadRequest, fetchErr.HTTPStatus)
	assert.Equal(t, "bad price", fetchErr.Message)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestBackendClientSendIsNotRetried(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"database down"}`))
	})

	err := client.Send(context.Background(), "tok", http.MethodPut, "/active/payment/e1", map[string]string{"paymentStatus": "paid"}, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
	assert.Equal(t, "database down", appErr.Message)
}

func TestBackendClientNetworkError(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	err := client.Send(context.Background(), "", http.MethodGet, "/packages", nil, nil)
	require.Error(t, err)

	var fetchErr *appErrors.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.True(t, fetchErr.Network())
	assert.Equal(t, appErrors.ErrNetwork.Code, appErrors.FromError(err).Code)
}

func TestBackendClientNotFoundKeepsServerMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Package not found"})
	})

	err := client.Get(context.Background(), "", "/packages/x", nil, nil)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "Package not found", appErr.Message)
}

func TestBackendClientMalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	var out map[string]interface{}
	err := client.Get(context.Background(), "", "/packages", nil, &out)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
}

func TestBackendClientAbandonedReadsKeepBreakerClosed(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= 3 {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		err := client.Get(ctx, "tok", "/active/admin/enrollments", nil, &map[string]interface{}{})
		cancel()
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits), "abandoned reads must not be retried")

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, client.Get(context.Background(), "tok", "/active/admin/enrollments", nil, &out))
	assert.True(t, out.OK)
}

func TestBackendClientCancelledSendKeepsBreakerClosed(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNoContent)
	})

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := client.Send(ctx, "tok", http.MethodPut, "/active/payment/e1", map[string]string{"paymentStatus": "paid"}, nil)
		assert.ErrorIs(t, err, context.Canceled)
	}

	require.NoError(t, client.Send(context.Background(), "tok", http.MethodPut, "/active/payment/e1", map[string]string{"paymentStatus": "paid"}, nil))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
