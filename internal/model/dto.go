package model

import "github.com/shopspring/decimal"

// MonthlyTotal is one month's aggregate in the dashboard charts.
type MonthlyTotal struct {
	Month    int             `json:"month"`
	NetTotal decimal.Decimal `json:"net_total"`
}

// DashboardSummary is the upstream payroll dashboard payload.
type DashboardSummary struct {
	Year             int             `json:"year"`
	TotalEmployees   int             `json:"total_employees"`
	TotalNetPay      decimal.Decimal `json:"total_net_pay"`
	PendingApprovals int             `json:"pending_approvals"`
	Monthly          []MonthlyTotal  `json:"monthly"`
}

// AttendanceSummary is one employee's monthly attendance rollup, rendered
// as the dashboard's attendance card.
type AttendanceSummary struct {
	EmployeeID     uint    `json:"employee_id"`
	Year           int     `json:"year"`
	Month          int     `json:"month"`
	WorkingDays    int     `json:"working_days"`
	PresentDays    int     `json:"present_days"`
	AbsentDays     int     `json:"absent_days"`
	LeaveDays      int     `json:"leave_days"`
	HalfDays       int     `json:"half_days"`
	LateDays       int     `json:"late_days"`
	HolidayDays    int     `json:"holiday_days"`
	WeekendDays    int     `json:"weekend_days"`
	PayableDays    int     `json:"payable_days"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// PayslipPage is one page of payroll history.
type PayslipPage struct {
	Content []Payslip `json:"content"`
	Page    int       `json:"page"`
	Size    int       `json:"size"`
	Total   int64     `json:"total"`
}

// SalaryStructure is the per-employee pay breakdown maintained by HR. The
// gorm tags back the stub upstream's storage; the portal treats it as a DTO.
type SalaryStructure struct {
	EmployeeID uint            `json:"employee_id" gorm:"primaryKey"`
	Basic      decimal.Decimal `json:"basic" gorm:"type:decimal(20,2);not null"`
	HRA        decimal.Decimal `json:"hra" gorm:"type:decimal(20,2);not null;default:0"`
	Allowances decimal.Decimal `json:"allowances" gorm:"type:decimal(20,2);not null;default:0"`
	Deductions decimal.Decimal `json:"deductions" gorm:"type:decimal(20,2);not null;default:0"`
}
