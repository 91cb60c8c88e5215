package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayslipStatus represents the approval state of a payslip.
type PayslipStatus string

const (
	PayslipStatusDraft     PayslipStatus = "draft"
	PayslipStatusSubmitted PayslipStatus = "submitted"
	PayslipStatusApproved  PayslipStatus = "approved"
	PayslipStatusPaid      PayslipStatus = "paid"
)

// Payslip is one employee/month payroll record served by the stub upstream.
// Amounts are computed upstream; the portal never derives them.
type Payslip struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	EmployeeID uint            `json:"employee_id" gorm:"not null;index"`
	Month      int             `json:"month" gorm:"not null"`
	Year       int             `json:"year" gorm:"not null;index"`
	GrossPay   decimal.Decimal `json:"gross_pay" gorm:"type:decimal(20,2);not null"`
	Deductions decimal.Decimal `json:"deductions" gorm:"type:decimal(20,2);not null;default:0"`
	NetPay     decimal.Decimal `json:"net_pay" gorm:"type:decimal(20,2);not null"`
	Status     PayslipStatus   `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `json:"-" gorm:"index"`

	// Relations
	Employee Employee `json:"-" gorm:"foreignKey:EmployeeID"`
}
