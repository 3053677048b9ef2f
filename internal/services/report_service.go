package services

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"tallybook/internal/calendar"
	apperrors "tallybook/internal/errors"
	"tallybook/internal/models"
	"tallybook/internal/reports"
)

// reportService reads an owner's books and hands them to the reports package.
type reportService struct {
	db    *gorm.DB
	clock calendar.Clock
}

// NewReportService creates a new ReportServicer. The clock decides "today"
// and the day each sale falls on.
func NewReportService(db *gorm.DB, clock calendar.Clock) ReportServicer {
	return &reportService{db: db, clock: clock}
}

// Today returns the current date in the report zone.
func (s *reportService) Today() calendar.Date {
	return s.clock.Today()
}

// Snapshot loads every record the reports read. The loads run concurrently
// and the first failure cancels the rest.
func (s *reportService) Snapshot(ctx context.Context, userID string) (*reports.Snapshot, error) {
	snap := &reports.Snapshot{Location: s.clock.Loc()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&snap.Income).Error
	})
	g.Go(func() error {
		return s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&snap.Expenses).Error
	})
	g.Go(func() error {
		return s.db.WithContext(ctx).Table(models.CategoryKindExpense.Table()).
			Where("user_id = ?", userID).
			Order("created_at ASC, id ASC").
			Find(&snap.ExpenseCategories).Error
	})
	g.Go(func() error {
		return s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&snap.Sales).Error
	})
	g.Go(func() error {
		return s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&snap.Products).Error
	})

	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return snap, nil
}

// Dashboard builds the overview for today.
func (s *reportService) Dashboard(ctx context.Context, userID string) (*reports.Dashboard, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	dashboard := reports.BuildDashboard(*snap, s.clock.Today())
	return &dashboard, nil
}

// Report builds a days-long report ending today. days must be one of
// reports.Periods.
func (s *reportService) Report(ctx context.Context, userID string, days int) (*reports.Report, error) {
	if !reports.ValidPeriod(days) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be 7, 30 or 90 days")
	}
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	report := reports.BuildReport(*snap, days, s.clock.Today())
	return &report, nil
}
