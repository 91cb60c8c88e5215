package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	errs "paygate/internal/errors"
	"paygate/internal/model"
)

const requestTimeout = 30 * time.Second

// Client is the single outbound pipeline to the upstream payroll API. Every
// request goes through the auth transport, which attaches the bearer token
// of the session scoped into the request context and tears the session down
// when the upstream answers 401 or 403.
type Client struct {
	http    *http.Client
	baseURL string
	log     *zap.Logger
}

// New builds the upstream client. onAuthFailure may be nil.
func New(baseURL string, onAuthFailure AuthFailureFunc, log *zap.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: requestTimeout,
			Transport: &authTransport{
				base:   http.DefaultTransport,
				onFail: onAuthFailure,
				log:    log,
			},
		},
		baseURL: baseURL,
		log:     log,
	}
}

// loginRequest is the upstream authentication payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse flattens the upstream login body: the token plus the user
// fields at the top level.
type loginResponse struct {
	Token string `json:"token"`
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Login authenticates against the upstream auth endpoint. Implements
// session.Authenticator.
func (c *Client) Login(ctx context.Context, email, password string) (string, model.User, error) {
	var res loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, &res)
	if err != nil {
		return "", model.User{}, err
	}
	user := model.User{
		ID:    res.ID,
		Name:  res.Name,
		Email: res.Email,
		Role:  model.Role(res.Role),
	}
	return res.Token, user, nil
}

// Dashboard fetches the company-wide payroll dashboard for a year.
func (c *Client) Dashboard(ctx context.Context, year int) (*model.DashboardSummary, error) {
	q := url.Values{"year": {strconv.Itoa(year)}}
	var out model.DashboardSummary
	if err := c.do(ctx, http.MethodGet, "/api/payroll/dashboard", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EmployeeDashboard fetches one employee's payroll dashboard for a year.
func (c *Client) EmployeeDashboard(ctx context.Context, employeeID uint, year int) (*model.DashboardSummary, error) {
	q := url.Values{
		"employeeId": {strconv.FormatUint(uint64(employeeID), 10)},
		"year":       {strconv.Itoa(year)},
	}
	var out model.DashboardSummary
	if err := c.do(ctx, http.MethodGet, "/api/payroll/employee/dashboard", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AttendanceSummary fetches one employee's monthly attendance rollup for
// the dashboard card.
func (c *Client) AttendanceSummary(ctx context.Context, employeeID uint, year, month int) (*model.AttendanceSummary, error) {
	q := url.Values{
		"employeeId": {strconv.FormatUint(uint64(employeeID), 10)},
		"year":       {strconv.Itoa(year)},
		"month":      {strconv.Itoa(month)},
	}
	var out model.AttendanceSummary
	if err := c.do(ctx, http.MethodGet, "/api/attendance/monthly", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Employees lists all employees.
func (c *Client) Employees(ctx context.Context) ([]model.Employee, error) {
	var out []model.Employee
	if err := c.do(ctx, http.MethodGet, "/api/employees/get-all-employees", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Employee fetches one employee by ID.
func (c *Client) Employee(ctx context.Context, id uint) (*model.Employee, error) {
	var out model.Employee
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/employees/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GeneratePayroll asks the upstream to compute one employee/month payslip.
func (c *Client) GeneratePayroll(ctx context.Context, employeeID uint, month, year int) (*model.Payslip, error) {
	q := url.Values{
		"employeeId": {strconv.FormatUint(uint64(employeeID), 10)},
		"month":      {strconv.Itoa(month)},
		"year":       {strconv.Itoa(year)},
	}
	var out model.Payslip
	if err := c.do(ctx, http.MethodPost, "/api/payroll/generate", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PayrollDetails fetches one payslip by ID.
func (c *Client) PayrollDetails(ctx context.Context, payrollID uint) (*model.Payslip, error) {
	var out model.Payslip
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/payroll/%d", payrollID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitPayroll moves a draft payslip into the approval queue.
func (c *Client) SubmitPayroll(ctx context.Context, payrollID uint) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/payroll/%d/submit", payrollID), nil, nil, nil)
}

// ApprovePayroll marks a submitted payslip approved.
func (c *Client) ApprovePayroll(ctx context.Context, payrollID uint) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/payroll/%d/approve", payrollID), nil, nil, nil)
}

// PayPayroll marks an approved payslip paid.
func (c *Client) PayPayroll(ctx context.Context, payrollID uint) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/payroll/%d/pay", payrollID), nil, nil, nil)
}

// EmployeePayrolls lists the payslips of one employee.
func (c *Client) EmployeePayrolls(ctx context.Context, employeeID uint) ([]model.Payslip, error) {
	var out []model.Payslip
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/payroll/employee/%d", employeeID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PendingApprovals lists payslips awaiting approval.
func (c *Client) PendingApprovals(ctx context.Context) ([]model.Payslip, error) {
	var out []model.Payslip
	if err := c.do(ctx, http.MethodGet, "/api/payroll/pending-approvals", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// History fetches one page of payroll history.
func (c *Client) History(ctx context.Context, page, size int) (*model.PayslipPage, error) {
	q := url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
	}
	var out model.PayslipPage
	if err := c.do(ctx, http.MethodGet, "/api/payroll/history", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SalaryStructures lists every employee's salary structure.
func (c *Client) SalaryStructures(ctx context.Context) ([]model.SalaryStructure, error) {
	var out []model.SalaryStructure
	if err := c.do(ctx, http.MethodGet, "/api/payroll/salary-structure", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SalaryStructure fetches one employee's salary structure.
func (c *Client) SalaryStructure(ctx context.Context, employeeID uint) (*model.SalaryStructure, error) {
	var out model.SalaryStructure
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/payroll/salary-structure/%d", employeeID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveSalaryStructure creates or replaces an employee's salary structure.
func (c *Client) SaveSalaryStructure(ctx context.Context, s model.SalaryStructure) error {
	return c.do(ctx, http.MethodPost, "/api/payroll/salary-structure", nil, s, nil)
}

// UpdateProfile updates the logged-in user's profile fields.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]string) error {
	return c.do(ctx, http.MethodPut, "/api/users/update-profile", nil, fields, nil)
}

// ChangePassword changes the logged-in user's password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"current_password": current, "new_password": next}
	return c.do(ctx, http.MethodPut, "/api/users/change-password", nil, body, nil)
}

// upstreamError is the error body shape the payroll API emits.
type upstreamError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do runs one upstream request. Non-2xx statuses come back as *errs.APIError
// carrying the upstream's message; 401/403 additionally match
// errs.ErrSessionExpired so callers can redirect to login.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", errs.ErrUpstreamUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &errs.APIError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%s %s: %w: %w", method, path, errs.ErrSessionExpired, apiErr)
		}
		return fmt.Errorf("%s %s: %w", method, path, apiErr)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var body upstreamError
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
