package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paygate/internal/config"
	"paygate/internal/gateway"
	"paygate/internal/handler"
	"paygate/internal/model"
	"paygate/internal/session"
	"paygate/internal/stub"
)

// fakeUpstream is a canned payroll API for portal integration tests.
func fakeUpstream(t *testing.T, loginRole string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "x" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid email or password"})
			return
		}
		res := map[string]any{
			"token": testJWT(t, time.Now().Add(time.Hour)),
			"id":    4,
			"name":  "Elena Petrov",
			"email": body["email"],
		}
		if loginRole != "" {
			res["role"] = loginRole
		}
		_ = json.NewEncoder(w).Encode(res)
	})
	mux.HandleFunc("/api/payroll/employee/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]model.Payslip{{ID: 1, EmployeeID: 4, Month: 7, Year: 2026}})
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	})

	return httptest.NewServer(mux)
}

func testJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func newPortal(t *testing.T, upstreamURL string) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		SessionCookie: "paygate_sid",
		APIBaseURL:    upstreamURL,
	}
	log := zap.NewNop()

	backend := session.NewMemoryBackend()
	newStore := func(sid string) session.Store {
		return session.NewMemoryStore(backend, sid)
	}

	var registry *session.Registry
	api := gateway.New(upstreamURL, func(sid string) {
		if registry != nil && sid != "" {
			registry.Evict(context.Background(), sid)
		}
	}, log)
	registry = session.NewRegistry(newStore, api, log)

	e := echo.New()
	Register(e, cfg, log, registry,
		handler.NewAuthHandler(registry, cfg.SessionCookie),
		handler.NewPageHandler(api))

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func noRedirectClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func login(t *testing.T, client *http.Client, portalURL string) {
	t.Helper()
	res, err := client.Post(portalURL+"/login", "application/json",
		strings.NewReader(`{"email":"employee@example.com","password":"x"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Equal(t, "/portal/dashboard", res.Header.Get("Location"))
}

func TestPortal_AnonymousRedirectsToLogin(t *testing.T) {
	upstream := fakeUpstream(t, string(model.RoleEmployee))
	defer upstream.Close()
	portal := newPortal(t, upstream.URL)
	client := noRedirectClient(t)

	// Role-restricted page, anonymous visitor: login wins over unauthorized.
	res, err := client.Get(portal.URL + "/portal/employees")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/login", res.Header.Get("Location"))
}

func TestPortal_RoleGateRedirectsToUnauthorized(t *testing.T) {
	upstream := fakeUpstream(t, string(model.RoleEmployee))
	defer upstream.Close()
	portal := newPortal(t, upstream.URL)
	client := noRedirectClient(t)

	login(t, client, portal.URL)

	// Employees page requires Admin or HR.
	res, err := client.Get(portal.URL + "/portal/employees")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/unauthorized", res.Header.Get("Location"))
}

func TestPortal_PermittedPageRenders(t *testing.T) {
	upstream := fakeUpstream(t, string(model.RoleEmployee))
	defer upstream.Close()
	portal := newPortal(t, upstream.URL)
	client := noRedirectClient(t)

	login(t, client, portal.URL)

	res, err := client.Get(portal.URL + "/portal/payroll/payslips")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	var payslips []model.Payslip
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payslips))
	require.Len(t, payslips, 1)
	assert.Equal(t, uint(4), payslips[0].EmployeeID)
}

func TestPortal_RolelessLoginDefaultsToEmployee(t *testing.T) {
	upstream := fakeUpstream(t, "")
	defer upstream.Close()
	portal := newPortal(t, upstream.URL)
	client := noRedirectClient(t)

	login(t, client, portal.URL)

	// Settings admits employees, so the defaulted role gets through...
	res, err := client.Get(portal.URL + "/portal/settings")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var user model.User
	require.NoError(t, json.NewDecoder(res.Body).Decode(&user))
	assert.Equal(t, model.RoleEmployee, user.Role)

	// ...and the HR-only page still refuses it.
	res2, err := client.Get(portal.URL + "/portal/employees")
	require.NoError(t, err)
	defer res2.Body.Close()
	assert.Equal(t, http.StatusSeeOther, res2.StatusCode)
	assert.Equal(t, "/unauthorized", res2.Header.Get("Location"))
}

func TestPortal_LoginFailureSurfacesUpstreamMessage(t *testing.T) {
	upstream := fakeUpstream(t, string(model.RoleEmployee))
	defer upstream.Close()
	portal := newPortal(t, upstream.URL)
	client := noRedirectClient(t)

	res, err := client.Post(portal.URL+"/login", "application/json",
		strings.NewReader(`{"email":"employee@example.com","password":"wrong"}`))
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "invalid email or password", body["error"])
}

func TestPortal_LogoutEndsSession(t *testing.T) {
	upstream := fakeUpstream(t, string(model.RoleEmployee))
	defer upstream.Close()
	portal := newPortal(t, upstream.URL)
	client := noRedirectClient(t)

	login(t, client, portal.URL)

	res, err := client.Post(portal.URL+"/logout", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.Equal(t, "/login", res.Header.Get("Location"))

	// Back on a protected page: anonymous again.
	res2, err := client.Get(portal.URL + "/portal/dashboard")
	require.NoError(t, err)
	defer res2.Body.Close()
	assert.Equal(t, http.StatusSeeOther, res2.StatusCode)
	assert.Equal(t, "/login", res2.Header.Get("Location"))
}

// TestPortal_AgainstTokenVerifyingUpstream pairs the portal with an upstream
// that runs the stub's real JWT middleware instead of a canned mux, so the
// bearer scheme the transport sends must survive actual verification.
func TestPortal_AgainstTokenVerifyingUpstream(t *testing.T) {
	const secret = "integration-secret"
	issuer := stub.NewTokenIssuer(secret)
	employee := &model.Employee{ID: 4, Name: "Elena Petrov", Email: "employee@example.com", Role: string(model.RoleEmployee)}

	up := echo.New()
	up.POST("/auth/login", func(c echo.Context) error {
		token, err := issuer.Issue(employee)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{
			"token": token,
			"id":    employee.ID,
			"name":  employee.Name,
			"email": employee.Email,
			"role":  employee.Role,
		})
	})
	api := up.Group("/api", stub.JWTMiddleware(secret))
	api.GET("/payroll/employee/:id", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []model.Payslip{{ID: 9, EmployeeID: 4, Month: 8, Year: 2026}})
	})
	upstream := httptest.NewServer(up)
	defer upstream.Close()

	portal := newPortal(t, upstream.URL)
	client := noRedirectClient(t)
	login(t, client, portal.URL)

	res, err := client.Get(portal.URL + "/portal/payroll/payslips")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode, "token must pass upstream verification")
	var payslips []model.Payslip
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payslips))
	require.Len(t, payslips, 1)
	assert.Equal(t, uint(9), payslips[0].ID)
}

func TestPortal_UpstreamAuthFailureForcesLogout(t *testing.T) {
	var reject bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": testJWT(t, time.Now().Add(time.Hour)),
			"id":    4,
			"email": "employee@example.com",
			"role":  string(model.RoleEmployee),
		})
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		if reject {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "token revoked"})
			return
		}
		_ = json.NewEncoder(w).Encode([]model.Payslip{})
	})
	upstream := httptest.NewServer(mux)
	defer upstream.Close()

	portal := newPortal(t, upstream.URL)
	client := noRedirectClient(t)
	login(t, client, portal.URL)

	// The upstream starts rejecting the token mid-session: the page call
	// fails, the session is torn down, and the visitor lands on login.
	reject = true
	res, err := client.Get(portal.URL + "/portal/payroll/payslips")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/login", res.Header.Get("Location"))

	res2, err := client.Get(portal.URL + "/portal/dashboard")
	require.NoError(t, err)
	defer res2.Body.Close()
	assert.Equal(t, http.StatusSeeOther, res2.StatusCode)
	assert.Equal(t, "/login", res2.Header.Get("Location"))
}
