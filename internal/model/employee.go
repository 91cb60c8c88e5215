package model

import "time"

// Employee is a payroll system employee record served by the stub upstream.
type Employee struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null;index"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         string    `json:"role,omitempty" gorm:"size:50"`
	Department   string    `json:"department" gorm:"size:100;index"`
	Designation  string    `json:"designation" gorm:"size:100"`
	Active       bool      `json:"active" gorm:"default:true;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Payslips []Payslip `json:"payslips,omitempty" gorm:"foreignKey:EmployeeID"`
}
