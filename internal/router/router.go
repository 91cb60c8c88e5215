package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"paygate/internal/config"
	"paygate/internal/guard"
	"paygate/internal/handler"
	"paygate/internal/metrics"
	"paygate/internal/session"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *zap.Logger,
	registry *session.Registry,
	authHandler *handler.AuthHandler,
	pageHandler *handler.PageHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(requestLogger(log))
	e.Use(metrics.Middleware())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Every remaining route runs inside a browser session.
	sessioned := e.Group("", handler.SessionMiddleware(registry, cfg.SessionCookie))

	sessioned.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/portal/dashboard")
	})
	sessioned.GET("/login", authHandler.LoginPage)
	sessioned.POST("/login", authHandler.Login)
	sessioned.POST("/logout", authHandler.Logout)
	sessioned.GET("/unauthorized", authHandler.Unauthorized)

	// Protected pages: both gates, in order, per the role table.
	portal := sessioned.Group("/portal",
		guard.Middleware(handler.CurrentUser, "/login", "/unauthorized", log))

	portal.GET("/dashboard", pageHandler.Dashboard)
	portal.GET("/dashboard/attendance", pageHandler.DashboardAttendance)

	portal.GET("/employees", pageHandler.Employees)
	portal.GET("/employees/profile", pageHandler.OwnProfile)
	portal.GET("/employees/:id/profile", pageHandler.EmployeeProfile)

	portal.GET("/payroll/generate", pageHandler.GeneratePayrollPage)
	portal.POST("/payroll/generate", pageHandler.GeneratePayroll)
	portal.GET("/payroll/generate/:id", pageHandler.EmployeeProfile)
	portal.GET("/payroll/approvals", pageHandler.Approvals)
	portal.POST("/payroll/approvals", pageHandler.ApprovalAction)
	portal.GET("/payroll/history", pageHandler.History)
	portal.GET("/payroll/details/:payrollID", pageHandler.PayrollDetails)
	portal.GET("/payroll/payslips", pageHandler.OwnPayslips)
	portal.GET("/payroll/preview/:payrollID", pageHandler.PayrollDetails)
	portal.GET("/payroll/salary-structure", pageHandler.SalaryStructures)
	portal.POST("/payroll/salary-structure", pageHandler.SaveSalaryStructure)
	portal.GET("/payroll/salary-structure/create/:id", pageHandler.SalaryStructureForEmployee)
	portal.GET("/payroll/documents", pageHandler.Documents)

	portal.GET("/help-support", pageHandler.HelpSupport)
	portal.GET("/settings", pageHandler.Settings)
	portal.POST("/settings/profile", pageHandler.UpdateProfile)
	portal.POST("/settings/password", pageHandler.ChangePassword)
}

// requestLogger emits one structured log line per request.
func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			log.Info("request", fields...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
