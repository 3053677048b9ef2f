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

// expenseService handles expense records.
type expenseService struct {
	db    *gorm.DB
	clock calendar.Clock
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, clock calendar.Clock) ExpenseServicer {
	return &expenseService{db: db, clock: clock}
}

// CreateExpense records money spent.
func (s *expenseService) CreateExpense(userID string, in RecordInput) (*models.Expense, error) {
	if err := checkRecord(s.db, userID, models.CategoryKindExpense, &in, s.clock); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		UserID:      userID,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		CategoryID:  in.CategoryID,
		ExpenseDate: in.Date,
	}
	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// GetExpenses lists expenses newest first, with the total of every matching
// record.
func (s *expenseService) GetExpenses(userID string, page pagination.PageRequest, filter LedgerFilter) (*LedgerPage[models.Expense], error) {
	page.Defaults()
	scope := ledgerScope("expenses", "expense_date", userID, filter)

	var totalItems int64
	if err := s.db.Model(&models.Expense{}).Scopes(scope).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total, err := sumAmount(s.db, &models.Expense{}, "expenses", scope)
	if err != nil {
		return nil, err
	}

	var records []models.Expense
	if err := s.db.Model(&models.Expense{}).
		Scopes(scope, withCategoryName("expenses", models.CategoryKindExpense), pagination.Paginate(page)).
		Order("expenses.expense_date DESC, expenses.created_at DESC").
		Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &LedgerPage[models.Expense]{
		PageResponse: pagination.NewPageResponse(records, page.Page, page.PageSize, totalItems),
		Total:        total,
	}, nil
}

// GetExpenseByID retrieves an expense by ID for a specific user
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Model(&models.Expense{}).
		Scopes(withCategoryName("expenses", models.CategoryKindExpense)).
		Where("expenses.id = ? AND expenses.user_id = ?", expenseID, userID).
		First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// DeleteExpense removes an expense.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	result := s.db.Where("id = ? AND user_id = ?", expenseID, userID).Delete(&models.Expense{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrExpenseNotFound
	}
	return nil
}
