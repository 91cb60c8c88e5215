package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	errs "paygate/internal/errors"
	"paygate/internal/model"
	"paygate/internal/session"
)

func scopedContext(store session.Store) context.Context {
	return WithSession(context.Background(), store, "sid-test")
}

func seededStore(t *testing.T, token string) session.Store {
	t.Helper()
	store := session.NewMemoryStore(session.NewMemoryBackend(), "sid-test")
	require.NoError(t, store.Save(context.Background(), token, model.User{ID: 1, Role: model.RoleHR}))
	return store
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]model.Employee{})
	}))
	defer upstream.Close()

	c := New(upstream.URL, nil, zap.NewNop())
	store := seededStore(t, "tok-123")

	_, err := c.Employees(scopedContext(store))
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]model.Employee{})
	}))
	defer upstream.Close()

	c := New(upstream.URL, nil, zap.NewNop())

	_, err := c.Employees(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_ForbiddenTearsDownSession(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "token revoked"})
	}))
	defer upstream.Close()

	var failures []string
	c := New(upstream.URL, func(sid string) { failures = append(failures, sid) }, zap.NewNop())
	store := seededStore(t, "tok-123")

	_, err := c.Dashboard(scopedContext(store), 2026)

	// The caller still observes the failure.
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrSessionExpired)

	// The record is gone and the forced-logout callback fired exactly once.
	_, _, ok := store.Load(context.Background())
	assert.False(t, ok)
	assert.Equal(t, []string{"sid-test"}, failures)
}

func TestClient_UnauthorizedWithoutSessionScopeLeavesCallbackAlone(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid email or password"})
	}))
	defer upstream.Close()

	calls := 0
	c := New(upstream.URL, func(string) { calls++ }, zap.NewNop())

	_, _, err := c.Login(context.Background(), "a@b.com", "wrong")

	require.Error(t, err)
	var apiErr *errs.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid email or password", apiErr.Message)
	assert.Zero(t, calls, "no session scope, no forced logout")
}

func TestClient_LoginParsesFlattenedResponse(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body["email"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-xyz",
			"id":    9,
			"name":  "Ada",
			"email": "a@b.com",
		})
	}))
	defer upstream.Close()

	c := New(upstream.URL, nil, zap.NewNop())

	token, user, err := c.Login(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	assert.Equal(t, "tok-xyz", token)
	assert.Equal(t, uint(9), user.ID)
	assert.Equal(t, "a@b.com", user.Email)
	assert.Empty(t, user.Role, "role stays empty; defaulting is the session manager's job")
}

func TestClient_AttendanceSummary(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/attendance/monthly", r.URL.Path)
		assert.Equal(t, "4", r.URL.Query().Get("employeeId"))
		assert.Equal(t, "2026", r.URL.Query().Get("year"))
		assert.Equal(t, "8", r.URL.Query().Get("month"))

		_ = json.NewEncoder(w).Encode(model.AttendanceSummary{
			EmployeeID:  4,
			Year:        2026,
			Month:       8,
			WorkingDays: 21,
			PresentDays: 20,
			AbsentDays:  1,
		})
	}))
	defer upstream.Close()

	c := New(upstream.URL, nil, zap.NewNop())

	summary, err := c.AttendanceSummary(context.Background(), 4, 2026, 8)
	require.NoError(t, err)
	assert.Equal(t, 21, summary.WorkingDays)
	assert.Equal(t, 20, summary.PresentDays)
}

func TestClient_ServerErrorMessageExtraction(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid month or year"})
	}))
	defer upstream.Close()

	c := New(upstream.URL, nil, zap.NewNop())

	_, err := c.GeneratePayroll(context.Background(), 1, 13, 2026)
	require.Error(t, err)

	var apiErr *errs.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid month or year", apiErr.Message)
	assert.NotErrorIs(t, err, errs.ErrSessionExpired)
}

func TestClient_UpstreamDown(t *testing.T) {
	c := New("http://127.0.0.1:1", nil, zap.NewNop())

	_, err := c.Employees(context.Background())
	assert.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
}
