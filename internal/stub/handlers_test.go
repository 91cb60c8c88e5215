package stub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paygate/internal/model"
)

// MockEmployeeRepository is a mock implementation of EmployeeRepository.
type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) Create(ctx context.Context, employee *model.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) Update(ctx context.Context, employee *model.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) FindByID(ctx context.Context, id uint) (*model.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) FindByEmail(ctx context.Context, email string) (*model.Employee, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) ListActive(ctx context.Context) ([]model.Employee, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

const testSecret = "stub-test-secret"

// newSecuredAPI mounts the handler behind the same JWT middleware
// cmd/stubapi uses, so the bearer scheme and token type are exercised
// end to end.
func newSecuredAPI(h *Handler) *echo.Echo {
	e := echo.New()
	api := e.Group("/api", JWTMiddleware(testSecret))
	api.PUT("/users/update-profile", h.UpdateProfile)
	api.GET("/attendance/monthly", h.AttendanceSummary)
	return e
}

func issueToken(t *testing.T, employee *model.Employee) string {
	t.Helper()
	token, err := NewTokenIssuer(testSecret).Issue(employee)
	require.NoError(t, err)
	return token
}

func TestSecuredAPI_AcceptsBearerToken(t *testing.T) {
	employee := &model.Employee{ID: 4, Name: "Elena Petrov", Email: "employee@example.com", Role: string(model.RoleEmployee)}
	employees := new(MockEmployeeRepository)
	employees.On("FindByID", mock.Anything, uint(4)).Return(employee, nil)
	employees.On("Update", mock.Anything, mock.Anything).Return(nil)

	h := NewHandler(employees, nil, nil, NewTokenIssuer(testSecret))
	e := newSecuredAPI(h)

	req := httptest.NewRequest(http.MethodPut, "/api/users/update-profile",
		strings.NewReader(`{"name":"Elena P."}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+issueToken(t, employee))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.Employee
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Elena P.", updated.Name)
	employees.AssertExpectations(t)
}

func TestSecuredAPI_RejectsMissingToken(t *testing.T) {
	h := NewHandler(new(MockEmployeeRepository), nil, nil, NewTokenIssuer(testSecret))
	e := newSecuredAPI(h)

	req := httptest.NewRequest(http.MethodPut, "/api/users/update-profile", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSecuredAPI_RejectsUnknownEmployee(t *testing.T) {
	employee := &model.Employee{ID: 7, Email: "gone@example.com"}
	employees := new(MockEmployeeRepository)
	employees.On("FindByID", mock.Anything, uint(7)).Return(nil, echo.ErrNotFound)

	h := NewHandler(employees, nil, nil, NewTokenIssuer(testSecret))
	e := newSecuredAPI(h)

	req := httptest.NewRequest(http.MethodPut, "/api/users/update-profile",
		strings.NewReader(`{"name":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+issueToken(t, employee))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAttendanceSummary(t *testing.T) {
	employee := &model.Employee{ID: 4, Email: "employee@example.com"}
	h := NewHandler(new(MockEmployeeRepository), nil, nil, NewTokenIssuer(testSecret))
	e := newSecuredAPI(h)

	// July 2026 has 31 days, 8 of them weekend days.
	req := httptest.NewRequest(http.MethodGet, "/api/attendance/monthly?employeeId=4&year=2026&month=7", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+issueToken(t, employee))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var summary model.AttendanceSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, uint(4), summary.EmployeeID)
	assert.Equal(t, 23, summary.WorkingDays)
	assert.Equal(t, 8, summary.WeekendDays)
	assert.Equal(t, summary.WorkingDays, summary.PresentDays+summary.AbsentDays+summary.LeaveDays)
	assert.InDelta(t, float64(summary.PresentDays)/float64(summary.WorkingDays)*100, summary.AttendanceRate, 0.01)
}
