package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"paygate/internal/model"
)

// SalaryStructureRepository defines persistence operations for stub salary
// structures.
type SalaryStructureRepository interface {
	Upsert(ctx context.Context, structure *model.SalaryStructure) error
	FindByEmployee(ctx context.Context, employeeID uint) (*model.SalaryStructure, error)
	List(ctx context.Context) ([]model.SalaryStructure, error)
}

type salaryStructureRepository struct {
	db *gorm.DB
}

// NewSalaryStructureRepository builds a GORM-backed repository.
func NewSalaryStructureRepository(db *gorm.DB) SalaryStructureRepository {
	return &salaryStructureRepository{db: db}
}

func (r *salaryStructureRepository) Upsert(ctx context.Context, structure *model.SalaryStructure) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(structure).Error
}

func (r *salaryStructureRepository) FindByEmployee(ctx context.Context, employeeID uint) (*model.SalaryStructure, error) {
	var structure model.SalaryStructure
	if err := r.db.WithContext(ctx).First(&structure, "employee_id = ?", employeeID).Error; err != nil {
		return nil, err
	}
	return &structure, nil
}

func (r *salaryStructureRepository) List(ctx context.Context) ([]model.SalaryStructure, error) {
	var structures []model.SalaryStructure
	if err := r.db.WithContext(ctx).Find(&structures).Error; err != nil {
		return nil, err
	}
	return structures, nil
}
