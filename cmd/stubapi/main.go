package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"paygate/internal/config"
	"paygate/internal/db"
	"paygate/internal/model"
	"paygate/internal/repository"
	"paygate/internal/stub"
)

// stubapi is the development upstream for the portal: a miniature payroll
// API with seeded employees. Run it next to cmd/portal and point
// API_BASE_URL at it.
func main() {
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.Employee{},
		&model.Payslip{},
		&model.SalaryStructure{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	employees := repository.NewEmployeeRepository(gormDB)
	payslips := repository.NewPayslipRepository(gormDB)
	structures := repository.NewSalaryStructureRepository(gormDB)

	if err := seed(employees, structures); err != nil {
		log.Fatalf("seed: %v", err)
	}

	issuer := stub.NewTokenIssuer(cfg.JWTSecret)
	h := stub.NewHandler(employees, payslips, structures, issuer)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Validator = newValidator()

	e.POST("/auth/login", h.Login)

	api := e.Group("/api", stub.JWTMiddleware(cfg.JWTSecret))

	api.GET("/employees/get-all-employees", h.Employees)
	api.GET("/employees/:id", h.EmployeeByID)

	api.POST("/payroll/generate", h.Generate)
	api.GET("/payroll/dashboard", h.Dashboard)
	api.GET("/payroll/employee/dashboard", h.EmployeeDashboard)
	api.GET("/payroll/employee/:id", h.EmployeePayslips)
	api.GET("/payroll/pending-approvals", h.PendingApprovals)
	api.GET("/payroll/history", h.History)
	api.GET("/payroll/:id", h.PayslipByID)
	api.PUT("/payroll/:id/submit", h.Advance(model.PayslipStatusSubmitted))
	api.PUT("/payroll/:id/approve", h.Advance(model.PayslipStatusApproved))
	api.PUT("/payroll/:id/pay", h.Advance(model.PayslipStatusPaid))
	api.GET("/payroll/salary-structure", h.SalaryStructures)
	api.POST("/payroll/salary-structure", h.SaveSalaryStructure)
	api.GET("/payroll/salary-structure/:employeeId", h.SalaryStructureByEmployee)

	api.GET("/attendance/monthly", h.AttendanceSummary)

	api.PUT("/users/update-profile", h.UpdateProfile)
	api.PUT("/users/change-password", h.ChangePassword)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

type seedEmployee struct {
	name       string
	email      string
	role       string
	department string
	basic      int64
}

// seed loads the demo workforce once. The intern deliberately has no role:
// the real payroll API sometimes omits it and the portal must default.
func seed(employees repository.EmployeeRepository, structures repository.SalaryStructureRepository) error {
	ctx := context.Background()

	count, err := employees.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	demo := []seedEmployee{
		{"Ada Okafor", "admin@example.com", string(model.RoleAdmin), "Operations", 9000},
		{"Hana Kim", "hr@example.com", string(model.RoleHR), "People", 7000},
		{"Felix Mora", "finance@example.com", string(model.RoleFinance), "Finance", 7500},
		{"Elena Petrov", "employee@example.com", string(model.RoleEmployee), "Engineering", 6000},
		{"Iris Tan", "intern@example.com", "", "Engineering", 2000},
	}

	for _, d := range demo {
		employee := &model.Employee{
			Name:         d.name,
			Email:        d.email,
			PasswordHash: string(hashed),
			Role:         d.role,
			Department:   d.department,
			Designation:  "Staff",
			Active:       true,
		}
		if err := employees.Create(ctx, employee); err != nil {
			return err
		}
		basic := decimal.NewFromInt(d.basic)
		structure := &model.SalaryStructure{
			EmployeeID: employee.ID,
			Basic:      basic,
			HRA:        basic.Div(decimal.NewFromInt(2)),
			Allowances: decimal.NewFromInt(500),
			Deductions: basic.Div(decimal.NewFromInt(10)),
		}
		if err := structures.Upsert(ctx, structure); err != nil {
			return err
		}
	}
	return nil
}

func newValidator() echo.Validator {
	return &requestValidator{validate: validator.New()}
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
