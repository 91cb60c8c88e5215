package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	errs "paygate/internal/errors"
	"paygate/internal/gateway"
	"paygate/internal/model"
)

// PageHandler serves the portal pages. Every page fetches its data from the
// upstream payroll API through the gateway; the portal itself computes
// nothing.
type PageHandler struct {
	api *gateway.Client
}

// NewPageHandler creates a new page handler.
func NewPageHandler(api *gateway.Client) *PageHandler {
	return &PageHandler{api: api}
}

// Dashboard renders the payroll dashboard. Employees see their own numbers,
// every other role sees the company-wide view.
func (h *PageHandler) Dashboard(c echo.Context) error {
	year := intQuery(c, "year", time.Now().Year())
	user := CurrentUser(c)

	var (
		summary *model.DashboardSummary
		err     error
	)
	if user.Role == model.RoleEmployee {
		summary, err = h.api.EmployeeDashboard(c.Request().Context(), user.ID, year)
	} else {
		summary, err = h.api.Dashboard(c.Request().Context(), year)
	}
	if err != nil {
		return respondUpstream(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// DashboardAttendance renders the attendance summary card shown alongside
// the dashboard. The portal always asks for the logged-in user's own month.
func (h *PageHandler) DashboardAttendance(c echo.Context) error {
	now := time.Now()
	year := intQuery(c, "year", now.Year())
	month := intQuery(c, "month", int(now.Month()))
	user := CurrentUser(c)

	summary, err := h.api.AttendanceSummary(c.Request().Context(), user.ID, year, month)
	if err != nil {
		return respondUpstream(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// Employees lists all employees.
func (h *PageHandler) Employees(c echo.Context) error {
	employees, err := h.api.Employees(c.Request().Context())
	if err != nil {
		return respondUpstream(c, err)
	}
	return c.JSON(http.StatusOK, employees)
}

// OwnProfile renders the logged-in user's employee profile.
func (h *PageHandler) OwnProfile(c echo.Context) error {
	user := CurrentUser(c)
	employee, err := h.api.Employee(c.Request().Context(), user.ID)
	if err != nil {
		return respondUpstream(c, err)
	}
	return c.JSON(http.StatusOK, employee)
}

// EmployeeProfile renders another employee's profile.
func (h *PageHandler) EmployeeProfile(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	employee, err := h.api.Employee(c.Request().Context(), id)
	if err != nil {
		return respondUpstream(c, err)
	}
	return c.JSON(http.StatusOK, employee)
}

// GeneratePayrollRequest asks the upstream to compute one payslip.
type GeneratePayrollRequest struct {
	EmployeeID uint `json:"employee_id" form:"employee_id" validate:"required"`
	Month      int  `json:"month" form:"month" validate:"required,min=1,max=12"`
	Year       int  `json:"year" form:"year" validate:"required,min=2000"`
}

// GeneratePayrollPage renders the generate form's employee list.
func (h *PageHandler) GeneratePayrollPage(c echo.Context) error {
	employees, err := h.api.Employees(c.Request().Context())
	if err != nil {
		return respondUpstream(c, err)
	}
	return c.JSON(http.StatusOK, employees)
}

// GeneratePayroll triggers upstream payroll generation.
func (h *PageHandler) GeneratePayroll(c echo.Context) error {
	var req GeneratePayrollRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	payslip, err := h.api.GeneratePayroll(c.Request().Context(), req.EmployeeID, req.Month, req.Year)
	if err != nil {
		return respondUpstream(c, err)
	}
	return c.JSON(http.StatusCreated, payslip)
}

// Approvals lists payslips awaiting approval.
func (h *PageHandler) Approvals(c echo.Context) error {
	pending, err := h.api.PendingApprovals(c.Request().Context())
	if err != nil {
		return respondUpstream(c, err)
	}
	return c.JSON(http.StatusOK, pending)
}

// ApprovalActionRequest advances one payslip through its workflow.
type ApprovalActionRequest struct {
	PayrollID uint   `json:"payroll_id" form:"payroll_id" validate:"required"`
	Action    string `json:"action" form:"action" validate:"required,oneof=submit approve pay"`
}

// ApprovalAction submits, approves, or pays one payslip.
func (h *PageHandler) ApprovalAction(c echo.Context) error {
	var req ApprovalActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	var err error
	switch req.Action {
	case "submit":
		err = h.api.SubmitPayroll(ctx, req.PayrollID)
	case "approve":
		err = h.api.ApprovePayroll(ctx, req.PayrollID)
	case "pay":
		err = h.api.PayPayroll(ctx, req.PayrollID)
	}
	if err != nil {
		return respondUpstream(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// History renders one page of payroll history.
func (h *PageHandler) History(c echo.Context) error {
	page := intQuery(c, "page", 0)
	size := intQuery(c, "size", 10)
	history, err := h.api.History(c.Request().Context(), page, size)
	if err != nil {
		return respondUpstream(c, err)
	}
	return c.JSON(http.StatusOK, history)
}

// PayrollDetails renders one payslip.
func (h *PageHandler) PayrollDetails(c echo.Context) error {
	id, err := uintParam(c, "payrollID")
	if err != nil {
		return err
	}
	payslip, err := h.api.PayrollDetails(c.Request().Context(), id)
	if err != nil {
		return respondUpstream(c, err)
	}
	return c.JSON(http.StatusOK, payslip)
}

// OwnPayslips lists the logged-in employee's payslips.
func (h *PageHandler) OwnPayslips(c echo.Context) error {
	user := CurrentUser(c)
	payslips, err := h.api.EmployeePayrolls(c.Request().Context(), user.ID)
	if err != nil {
		return respondUpstream(c, err)
	}
	return c.JSON(http.StatusOK, payslips)
}

// SalaryStructures lists every employee's salary structure.
func (h *PageHandler) SalaryStructures(c echo.Context) error {
	structures, err := h.api.SalaryStructures(c.Request().Context())
	if err != nil {
		return respondUpstream(c, err)
	}
	return c.JSON(http.StatusOK, structures)
}

// SalaryStructureForEmployee renders one employee's structure for editing.
func (h *PageHandler) SalaryStructureForEmployee(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	structure, err := h.api.SalaryStructure(c.Request().Context(), id)
	if err != nil {
		return respondUpstream(c, err)
	}
	return c.JSON(http.StatusOK, structure)
}

// SaveSalaryStructure creates or replaces one employee's structure.
func (h *PageHandler) SaveSalaryStructure(c echo.Context) error {
	var req model.SalaryStructure
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.api.SaveSalaryStructure(c.Request().Context(), req); err != nil {
		return respondUpstream(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Documents is a placeholder page: document storage lives entirely upstream.
func (h *PageHandler) Documents(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "document upload and download are handled by the payroll API",
	})
}

// faqEntry is one help page question/answer pair.
type faqEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// HelpSupport renders the static help page content.
func (h *PageHandler) HelpSupport(c echo.Context) error {
	return c.JSON(http.StatusOK, []faqEntry{
		{Question: "When are payslips published?", Answer: "Payslips appear once payroll for the month is approved and paid."},
		{Question: "Who can approve payroll?", Answer: "Admin, HR, and Finance roles can act on pending approvals."},
		{Question: "How do I update my details?", Answer: "Use the settings page to update your profile or change your password."},
	})
}

// Settings renders the logged-in user's profile for the settings page.
func (h *PageHandler) Settings(c echo.Context) error {
	return c.JSON(http.StatusOK, CurrentUser(c))
}

// UpdateProfileRequest updates profile fields.
type UpdateProfileRequest struct {
	Name  string `json:"name" form:"name" validate:"required"`
	Email string `json:"email" form:"email" validate:"required,email"`
}

// UpdateProfile forwards a profile update upstream.
func (h *PageHandler) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	fields := map[string]string{"name": req.Name, "email": req.Email}
	if err := h.api.UpdateProfile(c.Request().Context(), fields); err != nil {
		return respondUpstream(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangePasswordRequest changes the user's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" form:"new_password" validate:"required,min=6"`
}

// ChangePassword forwards a password change upstream.
func (h *PageHandler) ChangePassword(c echo.Context) error {
	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.api.ChangePassword(c.Request().Context(), req.CurrentPassword, req.NewPassword); err != nil {
		return respondUpstream(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// respondUpstream translates an upstream call failure. A torn-down session
// redirects to login; everything else maps to a JSON error.
func respondUpstream(c echo.Context, err error) error {
	if errors.Is(err, errs.ErrSessionExpired) {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	httpErr := errs.MapErrorToHTTP(err)
	return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func intQuery(c echo.Context, name string, def int) int {
	if v := c.QueryParam(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func uintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(v), nil
}
