// Package stub is a miniature payroll API used as the portal's upstream in
// development. It issues HS256 bearer tokens and serves seeded employee and
// payslip data; the arithmetic is deliberately naive.
package stub

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"paygate/internal/model"
	"paygate/internal/repository"
)

// Handler serves the stub upstream endpoints.
type Handler struct {
	employees  repository.EmployeeRepository
	payslips   repository.PayslipRepository
	structures repository.SalaryStructureRepository
	issuer     *TokenIssuer
}

// NewHandler creates the stub handler.
func NewHandler(
	employees repository.EmployeeRepository,
	payslips repository.PayslipRepository,
	structures repository.SalaryStructureRepository,
	issuer *TokenIssuer,
) *Handler {
	return &Handler{
		employees:  employees,
		payslips:   payslips,
		structures: structures,
		issuer:     issuer,
	}
}

// loginRequest is the stub login payload.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// loginResponse flattens the token with the user fields, matching the real
// payroll API. Role is omitted when the employee record has none.
type loginResponse struct {
	Token string `json:"token"`
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Login authenticates an employee and issues a bearer token.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	employee, err := h.employees.FindByEmail(c.Request().Context(), req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	token, err := h.issuer.Issue(employee)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "issue token")
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token: token,
		ID:    employee.ID,
		Name:  employee.Name,
		Email: employee.Email,
		Role:  employee.Role,
	})
}

// Employees lists all active employees.
func (h *Handler) Employees(c echo.Context) error {
	employees, err := h.employees.ListActive(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list employees")
	}
	return c.JSON(http.StatusOK, employees)
}

// EmployeeByID fetches one employee.
func (h *Handler) EmployeeByID(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	employee, err := h.employees.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "employee not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "find employee")
	}
	return c.JSON(http.StatusOK, employee)
}

// Generate computes one payslip from the employee's salary structure.
func (h *Handler) Generate(c echo.Context) error {
	ctx := c.Request().Context()
	employeeID, err := uintQuery(c, "employeeId")
	if err != nil {
		return err
	}
	month, _ := strconv.Atoi(c.QueryParam("month"))
	year, _ := strconv.Atoi(c.QueryParam("year"))
	if month < 1 || month > 12 || year < 2000 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid month or year")
	}

	structure, err := h.structures.FindByEmployee(ctx, employeeID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no salary structure for employee")
	}

	gross := structure.Basic.Add(structure.HRA).Add(structure.Allowances)
	payslip := &model.Payslip{
		EmployeeID: employeeID,
		Month:      month,
		Year:       year,
		GrossPay:   gross,
		Deductions: structure.Deductions,
		NetPay:     gross.Sub(structure.Deductions),
		Status:     model.PayslipStatusDraft,
	}
	if err := h.payslips.Create(ctx, payslip); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "create payslip")
	}
	return c.JSON(http.StatusCreated, payslip)
}

// PayslipByID fetches one payslip.
func (h *Handler) PayslipByID(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	payslip, err := h.payslips.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "payslip not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "find payslip")
	}
	return c.JSON(http.StatusOK, payslip)
}

// Advance moves a payslip to the given workflow status.
func (h *Handler) Advance(status model.PayslipStatus) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id, err := uintParam(c, "id")
		if err != nil {
			return err
		}
		payslip, err := h.payslips.FindByID(ctx, id)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "payslip not found")
		}
		payslip.Status = status
		if err := h.payslips.Update(ctx, payslip); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "update payslip")
		}
		return c.JSON(http.StatusOK, payslip)
	}
}

// EmployeePayslips lists one employee's payslips.
func (h *Handler) EmployeePayslips(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	payslips, err := h.payslips.ListByEmployee(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list payslips")
	}
	return c.JSON(http.StatusOK, payslips)
}

// PendingApprovals lists submitted payslips.
func (h *Handler) PendingApprovals(c echo.Context) error {
	payslips, err := h.payslips.ListByStatus(c.Request().Context(), model.PayslipStatusSubmitted)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list pending")
	}
	return c.JSON(http.StatusOK, payslips)
}

// History returns one page of payslips.
func (h *Handler) History(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	if size <= 0 {
		size = 10
	}
	payslips, total, err := h.payslips.Page(c.Request().Context(), page, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "page payslips")
	}
	return c.JSON(http.StatusOK, model.PayslipPage{
		Content: payslips,
		Page:    page,
		Size:    size,
		Total:   total,
	})
}

// Dashboard aggregates the year's payroll for the company view.
func (h *Handler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	year, _ := strconv.Atoi(c.QueryParam("year"))
	if year == 0 {
		year = time.Now().Year()
	}

	payslips, err := h.payslips.ListByYear(ctx, year)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list payslips")
	}
	count, err := h.employees.Count(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "count employees")
	}

	return c.JSON(http.StatusOK, summarize(payslips, year, int(count)))
}

// EmployeeDashboard aggregates one employee's year.
func (h *Handler) EmployeeDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	employeeID, err := uintQuery(c, "employeeId")
	if err != nil {
		return err
	}
	year, _ := strconv.Atoi(c.QueryParam("year"))
	if year == 0 {
		year = time.Now().Year()
	}

	payslips, err := h.payslips.ListByEmployee(ctx, employeeID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list payslips")
	}
	var inYear []model.Payslip
	for _, p := range payslips {
		if p.Year == year {
			inYear = append(inYear, p)
		}
	}
	return c.JSON(http.StatusOK, summarize(inYear, year, 1))
}

// AttendanceSummary returns one employee's monthly attendance rollup. The
// stub keeps no attendance ledger: working days come from the calendar and
// the absence counts are derived from the employee ID, so the dashboard
// card always has stable data to render.
func (h *Handler) AttendanceSummary(c echo.Context) error {
	employeeID, err := uintQuery(c, "employeeId")
	if err != nil {
		return err
	}
	now := time.Now()
	year, _ := strconv.Atoi(c.QueryParam("year"))
	if year == 0 {
		year = now.Year()
	}
	month, _ := strconv.Atoi(c.QueryParam("month"))
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 || year < 2000 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid month or year")
	}

	totalDays := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	weekends := 0
	for day := 1; day <= totalDays; day++ {
		switch time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Weekday() {
		case time.Saturday, time.Sunday:
			weekends++
		}
	}
	working := totalDays - weekends
	leave := int(employeeID) % 3
	absent := int(employeeID) % 2
	present := working - leave - absent

	return c.JSON(http.StatusOK, model.AttendanceSummary{
		EmployeeID:     employeeID,
		Year:           year,
		Month:          month,
		WorkingDays:    working,
		PresentDays:    present,
		AbsentDays:     absent,
		LeaveDays:      leave,
		WeekendDays:    weekends,
		PayableDays:    present + leave,
		AttendanceRate: float64(present) / float64(working) * 100,
	})
}

// SalaryStructures lists all salary structures.
func (h *Handler) SalaryStructures(c echo.Context) error {
	structures, err := h.structures.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list structures")
	}
	return c.JSON(http.StatusOK, structures)
}

// SalaryStructureByEmployee fetches one employee's structure.
func (h *Handler) SalaryStructureByEmployee(c echo.Context) error {
	id, err := uintParam(c, "employeeId")
	if err != nil {
		return err
	}
	structure, err := h.structures.FindByEmployee(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "salary structure not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "find structure")
	}
	return c.JSON(http.StatusOK, structure)
}

// SaveSalaryStructure creates or replaces a structure.
func (h *Handler) SaveSalaryStructure(c echo.Context) error {
	var structure model.SalaryStructure
	if err := c.Bind(&structure); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if structure.EmployeeID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "employee_id required")
	}
	if err := h.structures.Upsert(c.Request().Context(), &structure); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "save structure")
	}
	return c.JSON(http.StatusOK, structure)
}

// updateProfileRequest updates the caller's own record.
type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateProfile updates the authenticated employee's profile fields.
func (h *Handler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	employee, err := h.callerEmployee(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name != "" {
		employee.Name = req.Name
	}
	if req.Email != "" {
		employee.Email = req.Email
	}
	if err := h.employees.Update(ctx, employee); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "update employee")
	}
	return c.JSON(http.StatusOK, employee)
}

// changePasswordRequest rotates the caller's password.
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// ChangePassword rotates the authenticated employee's password.
func (h *Handler) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	employee, err := h.callerEmployee(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "current password is incorrect")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "hash password")
	}
	employee.PasswordHash = string(hashed)
	if err := h.employees.Update(ctx, employee); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "update employee")
	}
	return c.NoContent(http.StatusNoContent)
}

// callerEmployee resolves the employee record behind the request's JWT.
// The middleware stores a jwt/v5 token; asserting any other version's type
// fails even for a valid request.
func (h *Handler) callerEmployee(c echo.Context) (*model.Employee, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "token has no user_id")
	}
	employee, err := h.employees.FindByID(c.Request().Context(), uint(id))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown employee")
	}
	return employee, nil
}

func summarize(payslips []model.Payslip, year, employeeCount int) model.DashboardSummary {
	totals := make(map[int]decimal.Decimal)
	total := decimal.Zero
	pending := 0
	for _, p := range payslips {
		totals[p.Month] = totals[p.Month].Add(p.NetPay)
		total = total.Add(p.NetPay)
		if p.Status == model.PayslipStatusSubmitted {
			pending++
		}
	}
	monthly := make([]model.MonthlyTotal, 0, 12)
	for month := 1; month <= 12; month++ {
		monthly = append(monthly, model.MonthlyTotal{Month: month, NetTotal: totals[month]})
	}
	return model.DashboardSummary{
		Year:             year,
		TotalEmployees:   employeeCount,
		TotalNetPay:      total,
		PendingApprovals: pending,
		Monthly:          monthly,
	}
}

func uintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(v), nil
}

func uintQuery(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.QueryParam(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(v), nil
}
