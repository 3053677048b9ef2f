package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tallybook/internal/calendar"
	"tallybook/internal/checkout"
	apperrors "tallybook/internal/errors"
	"tallybook/internal/idempotency"
	"tallybook/internal/logger"
	"tallybook/internal/models"
	"tallybook/internal/notify"
	"tallybook/internal/pagination"
	"tallybook/internal/uuid"
)

var errStockConflict = errors.New("insufficient stock for one or more lines")

// saleService finalizes carts into sales. It is the only component that
// writes a sale, its items and its income posting, and it does so in one
// transaction.
type saleService struct {
	db        *gorm.DB
	inventory InventoryServicer
	clock     calendar.Clock
	keys      idempotency.Store
	keyTTL    time.Duration
	notifier  notify.Publisher

	// transact runs fn in a single database transaction.
	transact func(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SaleOption configures a SaleServicer.
type SaleOption func(*saleService)

// WithIdempotencyStore sets where idempotency keys are claimed.
func WithIdempotencyStore(store idempotency.Store, ttl time.Duration) SaleOption {
	return func(s *saleService) {
		s.keys = store
		if ttl > 0 {
			s.keyTTL = ttl
		}
	}
}

// WithNotifier sets where reconciliation notices are published.
func WithNotifier(p notify.Publisher) SaleOption {
	return func(s *saleService) { s.notifier = p }
}

// NewSaleService creates a new SaleServicer. Without options, idempotency
// keys are held in memory and notices go to the log.
func NewSaleService(db *gorm.DB, inventory InventoryServicer, clock calendar.Clock, opts ...SaleOption) SaleServicer {
	s := &saleService{
		db:        db,
		inventory: inventory,
		clock:     clock,
		keys:      idempotency.NewMemoryStore(),
		keyTTL:    idempotency.DefaultTTL,
		notifier:  notify.LogPublisher{},
	}
	s.transact = s.runInTransaction
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// runInTransaction detaches from request cancellation: once committing has
// started it runs to completion.
func (s *saleService) runInTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(context.WithoutCancel(ctx)).Transaction(fn)
}

// BuildCart loads each requested product and adds it to a new cart, so
// prices and stock limits come from the current product rows.
func (s *saleService) BuildCart(userID string, lines []CartLine) (*checkout.Cart, error) {
	cart := checkout.NewCart()
	for _, line := range lines {
		product, err := s.inventory.GetProductByID(userID, line.ProductID)
		if err != nil {
			return nil, err
		}
		if err := cart.Add(*product, line.Quantity); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

// Quote prices the requested lines without writing anything.
func (s *saleService) Quote(userID string, lines []CartLine, discount decimal.Decimal) (*checkout.Quote, error) {
	cart, err := s.BuildCart(userID, lines)
	if err != nil {
		return nil, err
	}
	return cart.Quote(discount)
}

// Finalize commits the cart as a sale. The sale, its items, the stock
// reservations and the income posting are written in one transaction; any
// failure rolls all of them back and returns a *checkout.FailedError.
//
// If every step succeeded but the commit itself reported an error, the
// outcome is unknown. The error is then marked Partial, a reconciliation
// notice is published and the idempotency key is kept so a blind retry
// cannot record the sale twice.
func (s *saleService) Finalize(ctx context.Context, userID string, cart *checkout.Cart, opts FinalizeOptions) (*checkout.Receipt, error) {
	method := opts.PaymentMethod
	if method == "" {
		method = models.PaymentMethodCash
	}
	if !method.Valid() {
		return nil, apperrors.ErrInvalidPaymentMethod
	}

	var key string
	if opts.IdempotencyKey != "" {
		key = userID + ":" + opts.IdempotencyKey
		claimed, err := s.keys.Claim(ctx, key, s.keyTTL)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !claimed {
			return nil, apperrors.ErrDuplicateSale
		}
	}

	quote, err := cart.Begin(opts.Discount)
	if err != nil {
		s.release(ctx, key)
		return nil, err
	}

	now := s.clock.Time()
	sale := models.Sale{
		UserID:        userID,
		TotalAmount:   quote.Total,
		Discount:      quote.Discount,
		PaymentMethod: method,
		SaleDate:      now,
	}
	var income *models.Income
	var conflicts []checkout.Conflict
	step := checkout.StepInsertSale
	applied := false

	err = s.transact(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&sale).Error; err != nil {
			return err
		}

		step = checkout.StepInsertItems
		items := make([]models.SaleItem, 0, len(quote.Lines))
		for _, line := range quote.Lines {
			items = append(items, models.SaleItem{
				SaleID:     sale.ID,
				ProductID:  line.ProductID,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				TotalPrice: line.Total(),
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		sale.Items = items

		// Every line is attempted so the error names all of them.
		step = checkout.StepReserveStock
		for _, line := range quote.Lines {
			err := s.inventory.ReserveStock(tx, userID, line.ProductID, line.Quantity)
			var stockErr *InsufficientStockError
			switch {
			case err == nil:
			case errors.As(err, &stockErr):
				conflicts = append(conflicts, checkout.Conflict{ProductID: line.ProductID, Requested: line.Quantity, Available: stockErr.Available})
			case errors.Is(err, apperrors.ErrProductNotFound):
				conflicts = append(conflicts, checkout.Conflict{ProductID: line.ProductID, Requested: line.Quantity})
			default:
				return err
			}
		}
		if len(conflicts) > 0 {
			return errStockConflict
		}

		step = checkout.StepPostIncome
		if quote.Total.IsPositive() {
			saleID := sale.ID
			income = &models.Income{
				UserID:      userID,
				Amount:      quote.Total,
				Description: "Sale #" + uuid.Short(sale.ID, 8),
				SaleID:      &saleID,
				IncomeDate:  calendar.In(now, s.clock.Loc()),
			}
			if err := tx.Create(income).Error; err != nil {
				return err
			}
		}

		applied = true
		return nil
	})

	if err != nil {
		failed := &checkout.FailedError{Step: step, SaleID: sale.ID, Conflicts: conflicts, Err: err}
		if applied {
			failed.Step = checkout.StepCommit
			failed.Partial = true
		}
		cart.Fail()

		logger.Named("checkout").Warnw("sale failed",
			"user_id", userID,
			"step", failed.Step,
			"sale_id", failed.SaleID,
			"partial", failed.Partial,
			"conflicts", len(conflicts),
			"error", err,
		)

		if failed.Partial {
			s.publishNotice(ctx, userID, failed)
		} else {
			s.release(ctx, key)
		}
		return nil, failed
	}

	cart.Commit()
	return &checkout.Receipt{Sale: sale, Income: income}, nil
}

func (s *saleService) release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.keys.Release(context.WithoutCancel(ctx), key); err != nil {
		logger.Named("checkout").Errorw("failed to release idempotency key", "key", key, "error", err)
	}
}

func (s *saleService) publishNotice(ctx context.Context, userID string, failed *checkout.FailedError) {
	notice := notify.Notice{
		UserID:     userID,
		SaleID:     failed.SaleID,
		Step:       string(failed.Step),
		Reason:     failed.Err.Error(),
		OccurredAt: s.clock.Time().UTC(),
	}
	if err := s.notifier.Publish(context.WithoutCancel(ctx), notice); err != nil {
		logger.Named("checkout").Errorw("failed to publish reconciliation notice",
			"user_id", userID,
			"sale_id", failed.SaleID,
			"error", err,
		)
	}
}

// GetSales lists sales newest first with their items.
func (s *saleService) GetSales(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Sale], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Sale{}).Where("user_id = ?", userID).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var sales []models.Sale
	if err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("sale_date DESC, created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&sales).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(sales, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetSaleByID retrieves a sale and its items for a specific user
func (s *saleService) GetSaleByID(userID, saleID string) (*models.Sale, error) {
	return findSale(s.db, userID, saleID)
}

func findSale(db *gorm.DB, userID, saleID string) (*models.Sale, error) {
	var sale models.Sale
	if err := db.Preload("Items").Where("id = ? AND user_id = ?", saleID, userID).First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSaleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &sale, nil
}

// InspectSale reports which parts of a sale reached storage. A sale is
// consistent when it is either fully absent or present with its items and,
// for a non-zero total, its income posting.
func (s *saleService) InspectSale(userID, saleID string) (*SaleInspection, error) {
	inspection := &SaleInspection{SaleID: saleID}

	sale, err := findSale(s.db, userID, saleID)
	switch {
	case err == nil:
		inspection.SaleExists = true
		inspection.Sale = sale
		inspection.ItemCount = len(sale.Items)
	case errors.Is(err, apperrors.ErrSaleNotFound):
	default:
		return nil, err
	}

	var incomes []models.Income
	if err := s.db.Where("sale_id = ? AND user_id = ?", saleID, userID).Limit(1).Find(&incomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(incomes) > 0 {
		inspection.IncomeExists = true
		inspection.IncomeID = incomes[0].ID
	}

	if inspection.SaleExists {
		inspection.Consistent = inspection.ItemCount > 0 &&
			(inspection.IncomeExists || !sale.TotalAmount.IsPositive())
	} else {
		inspection.Consistent = !inspection.IncomeExists
	}
	return inspection, nil
}

// CompensateSale reverses a recorded sale in one transaction: stock is
// returned for every item whose product still exists, the income posting is
// removed and the sale and its items are deleted. Deleting the sale row comes
// first, so of two concurrent compensations only one restores stock.
func (s *saleService) CompensateSale(userID, saleID string) (*Compensation, error) {
	comp := &Compensation{SaleID: saleID}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		sale, err := findSale(tx, userID, saleID)
		if err != nil {
			return err
		}

		result := tx.Where("id = ? AND user_id = ?", saleID, userID).Delete(&models.Sale{})
		if result.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		if result.RowsAffected != 1 {
			return apperrors.ErrSaleNotFound
		}

		// Without foreign key enforcement the items outlive the sale row.
		if err := tx.Where("sale_id = ?", saleID).Delete(&models.SaleItem{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		comp.ItemsRemoved = len(sale.Items)

		for _, item := range sale.Items {
			err := s.inventory.RestoreStock(tx, userID, item.ProductID, item.Quantity)
			switch {
			case err == nil:
				comp.RestoredUnits += item.Quantity
			case errors.Is(err, apperrors.ErrProductNotFound):
				comp.SkippedItems++
			default:
				return err
			}
		}

		result = tx.Where("sale_id = ? AND user_id = ?", saleID, userID).Delete(&models.Income{})
		if result.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		comp.IncomeRemoved = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Named("checkout").Infow("sale compensated",
		"user_id", userID,
		"sale_id", saleID,
		"restored_units", comp.RestoredUnits,
		"skipped_items", comp.SkippedItems,
	)
	return comp, nil
}
