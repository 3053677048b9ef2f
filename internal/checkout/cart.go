// Package checkout holds the in-memory side of a sale: the cart a cashier
// builds, its pricing, and the state a sale moves through until it is
// committed to the books or abandoned.
package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "tallybook/internal/errors"
	"tallybook/internal/models"
)

// State is the lifecycle position of a cart.
type State int

const (
	Building State = iota
	Validating
	Committing
	Committed
	Aborted
	Failed
)

func (s State) String() string {
	switch s {
	case Building:
		return "building"
	case Validating:
		return "validating"
	case Committing:
		return "committing"
	case Committed:
		return "committed"
	case Aborted:
		return "aborted"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Line is one product in the cart. UnitPrice is captured when the product is
// first added and is what the sale is charged at.
type Line struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Total is quantity times unit price.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Quote is the priced cart.
type Quote struct {
	Lines    []Line          `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Cart accumulates lines until it is finalized or aborted. A Cart is not safe
// for concurrent use.
type Cart struct {
	lines []Line
	index map[string]int
	state State
}

// NewCart returns an empty cart in the Building state.
func NewCart() *Cart {
	return &Cart{index: make(map[string]int)}
}

// State returns the cart's lifecycle state.
func (c *Cart) State() State { return c.state }

// Len returns the number of distinct products in the cart.
func (c *Cart) Len() int { return len(c.lines) }

// Lines returns a copy of the cart lines in the order they were first added.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Add puts qty units of product into the cart. Adding a product already in
// the cart merges the quantities; the merged amount is checked against the
// stock on the given product snapshot. A rejected add leaves the cart as it
// was.
func (c *Cart) Add(product models.Product, qty int) error {
	if c.state != Building {
		return apperrors.ErrCartClosed
	}
	if qty <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidQuantity, "quantity must be greater than zero")
	}

	if i, ok := c.index[product.ID]; ok {
		merged := c.lines[i].Quantity + qty
		if merged > product.Quantity {
			return insufficient(product, merged)
		}
		c.lines[i].Quantity = merged
		return nil
	}

	if qty > product.Quantity {
		return insufficient(product, qty)
	}
	c.index[product.ID] = len(c.lines)
	c.lines = append(c.lines, Line{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    qty,
		UnitPrice:   product.SellingPrice,
	})
	return nil
}

func insufficient(product models.Product, want int) error {
	return apperrors.WithDetails(
		apperrors.WithMessage(apperrors.ErrInvalidQuantity,
			fmt.Sprintf("only %d of %s in stock", product.Quantity, product.Name)),
		map[string]any{"product_id": product.ID, "requested": want, "available": product.Quantity},
	)
}

// Remove drops the product's line from the cart. Removing a product that is
// not in the cart is a no-op.
func (c *Cart) Remove(productID string) error {
	if c.state != Building {
		return apperrors.ErrCartClosed
	}
	i, ok := c.index[productID]
	if !ok {
		return nil
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, productID)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].ProductID] = j
	}
	return nil
}

// Abort abandons a cart that has not started committing. Nothing was
// written, so there is nothing to undo.
func (c *Cart) Abort() error {
	if c.state != Building {
		return apperrors.ErrCartClosed
	}
	c.state = Aborted
	c.lines = nil
	c.index = map[string]int{}
	return nil
}

// Subtotal is the sum of all line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range c.lines {
		subtotal = subtotal.Add(l.Total())
	}
	return subtotal
}

// Quote prices the cart with the given discount without changing its state.
func (c *Cart) Quote(discount decimal.Decimal) (*Quote, error) {
	if len(c.lines) == 0 {
		return nil, apperrors.ErrEmptyCart
	}
	if discount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidDiscount, "discount must not be negative")
	}
	subtotal := c.Subtotal()
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidDiscount,
			fmt.Sprintf("discount %s exceeds subtotal %s", discount.StringFixed(2), subtotal.StringFixed(2)))
	}
	return &Quote{Lines: c.Lines(), Subtotal: subtotal, Discount: discount, Total: total}, nil
}

// Begin validates the cart and moves it to Committing. On a validation
// failure the cart moves to Failed and the returned error is a *FailedError
// for StepValidate.
func (c *Cart) Begin(discount decimal.Decimal) (*Quote, error) {
	if c.state != Building {
		return nil, apperrors.ErrCartClosed
	}
	c.state = Validating
	quote, err := c.Quote(discount)
	if err != nil {
		c.state = Failed
		return nil, &FailedError{Step: StepValidate, Err: err}
	}
	c.state = Committing
	return quote, nil
}

// Commit marks a committing cart as committed and empties it.
func (c *Cart) Commit() {
	if c.state != Committing {
		return
	}
	c.state = Committed
	c.lines = nil
	c.index = map[string]int{}
}

// Fail marks a committing cart as failed. The lines are kept so the caller
// can report what was attempted.
func (c *Cart) Fail() {
	if c.state == Validating || c.state == Committing {
		c.state = Failed
	}
}

// Receipt is the outcome of a committed sale. Income is nil when the sale
// total was zero.
type Receipt struct {
	Sale   models.Sale    `json:"sale"`
	Income *models.Income `json:"income,omitempty"`
}
