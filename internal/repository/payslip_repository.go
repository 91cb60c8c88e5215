package repository

import (
	"context"

	"gorm.io/gorm"

	"paygate/internal/model"
)

// PayslipRepository defines persistence operations for stub payslips.
type PayslipRepository interface {
	Create(ctx context.Context, payslip *model.Payslip) error
	Update(ctx context.Context, payslip *model.Payslip) error
	FindByID(ctx context.Context, id uint) (*model.Payslip, error)
	ListByEmployee(ctx context.Context, employeeID uint) ([]model.Payslip, error)
	ListByStatus(ctx context.Context, status model.PayslipStatus) ([]model.Payslip, error)
	ListByYear(ctx context.Context, year int) ([]model.Payslip, error)
	Page(ctx context.Context, page, size int) ([]model.Payslip, int64, error)
}

type payslipRepository struct {
	db *gorm.DB
}

// NewPayslipRepository builds a GORM-backed repository.
func NewPayslipRepository(db *gorm.DB) PayslipRepository {
	return &payslipRepository{db: db}
}

func (r *payslipRepository) Create(ctx context.Context, payslip *model.Payslip) error {
	return r.db.WithContext(ctx).Create(payslip).Error
}

func (r *payslipRepository) Update(ctx context.Context, payslip *model.Payslip) error {
	return r.db.WithContext(ctx).Save(payslip).Error
}

func (r *payslipRepository) FindByID(ctx context.Context, id uint) (*model.Payslip, error) {
	var payslip model.Payslip
	if err := r.db.WithContext(ctx).First(&payslip, id).Error; err != nil {
		return nil, err
	}
	return &payslip, nil
}

func (r *payslipRepository) ListByEmployee(ctx context.Context, employeeID uint) ([]model.Payslip, error) {
	var payslips []model.Payslip
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("year DESC, month DESC").
		Find(&payslips).Error
	if err != nil {
		return nil, err
	}
	return payslips, nil
}

func (r *payslipRepository) ListByStatus(ctx context.Context, status model.PayslipStatus) ([]model.Payslip, error) {
	var payslips []model.Payslip
	if err := r.db.WithContext(ctx).Where("status = ?", status).Find(&payslips).Error; err != nil {
		return nil, err
	}
	return payslips, nil
}

func (r *payslipRepository) ListByYear(ctx context.Context, year int) ([]model.Payslip, error) {
	var payslips []model.Payslip
	if err := r.db.WithContext(ctx).Where("year = ?", year).Find(&payslips).Error; err != nil {
		return nil, err
	}
	return payslips, nil
}

func (r *payslipRepository) Page(ctx context.Context, page, size int) ([]model.Payslip, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Payslip{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var payslips []model.Payslip
	err := r.db.WithContext(ctx).
		Order("year DESC, month DESC").
		Offset(page * size).
		Limit(size).
		Find(&payslips).Error
	if err != nil {
		return nil, 0, err
	}
	return payslips, total, nil
}
