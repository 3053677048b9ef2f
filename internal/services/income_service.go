package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"tallybook/internal/calendar"
	apperrors "tallybook/internal/errors"
	"tallybook/internal/models"
	"tallybook/internal/pagination"
)

// incomeService handles income records.
type incomeService struct {
	db    *gorm.DB
	clock calendar.Clock
}

// NewIncomeService creates a new IncomeServicer. The clock decides the
// default record date.
func NewIncomeService(db *gorm.DB, clock calendar.Clock) IncomeServicer {
	return &incomeService{db: db, clock: clock}
}

// CreateIncome records money received.
func (s *incomeService) CreateIncome(userID string, in RecordInput) (*models.Income, error) {
	if err := checkRecord(s.db, userID, models.CategoryKindIncome, &in, s.clock); err != nil {
		return nil, err
	}

	income := &models.Income{
		UserID:      userID,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		CategoryID:  in.CategoryID,
		IncomeDate:  in.Date,
	}
	if err := s.db.Create(income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return income, nil
}

// GetIncome lists income records newest first, with the total of every
// matching record.
func (s *incomeService) GetIncome(userID string, page pagination.PageRequest, filter LedgerFilter) (*LedgerPage[models.Income], error) {
	page.Defaults()
	scope := ledgerScope("income", "income_date", userID, filter)

	var totalItems int64
	if err := s.db.Model(&models.Income{}).Scopes(scope).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total, err := sumAmount(s.db, &models.Income{}, "income", scope)
	if err != nil {
		return nil, err
	}

	var records []models.Income
	if err := s.db.Model(&models.Income{}).
		Scopes(scope, withCategoryName("income", models.CategoryKindIncome), pagination.Paginate(page)).
		Order("income.income_date DESC, income.created_at DESC").
		Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &LedgerPage[models.Income]{
		PageResponse: pagination.NewPageResponse(records, page.Page, page.PageSize, totalItems),
		Total:        total,
	}, nil
}

// GetIncomeByID retrieves an income record by ID for a specific user
func (s *incomeService) GetIncomeByID(userID, incomeID string) (*models.Income, error) {
	var income models.Income
	if err := s.db.Model(&models.Income{}).
		Scopes(withCategoryName("income", models.CategoryKindIncome)).
		Where("income.id = ? AND income.user_id = ?", incomeID, userID).
		First(&income).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIncomeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &income, nil
}

// DeleteIncome removes an income record.
func (s *incomeService) DeleteIncome(userID, incomeID string) error {
	result := s.db.Where("id = ? AND user_id = ?", incomeID, userID).Delete(&models.Income{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrIncomeNotFound
	}
	return nil
}
