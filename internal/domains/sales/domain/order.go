package domain

import (
	"errors"
	"fmt"
	"time"
)

// StatusPending is the default status assigned to new sale orders. Status is
// free-form beyond the default; the order service does not police downstream
// workflow states.
const StatusPending = "PENDING"

var (
	ErrMissingParties = errors.New("client and employee references are required")
	ErrNoItems        = errors.New("at least one sale item is required")
	ErrItemIncomplete = errors.New("product id, quantity, and price are required")
	ErrItemQuantity   = errors.New("item quantity must be a positive integer")
	ErrItemPrice      = errors.New("item price must be a non-negative number")
	ErrItemDiscount   = errors.New("item discount must be a non-negative number")
	ErrItemsImmutable = errors.New("sale items cannot be replaced once published")
)

// SaleItem is one sold line of a sale order. Items belong to exactly one
// order and are immutable once the order's fan-out has been published.
type SaleItem struct {
	ID          int64
	SaleOrderID int64
	ProductID   int64
	Quantity    int32
	Price       float64
	Discount    float64
}

// SaleOrder is the sale aggregate: header fields plus the owned item set.
// Notes is optional free text that ends up on the invoice.
type SaleOrder struct {
	ID            int64
	ClientID      int64
	EmployeeID    int64
	Date          time.Time
	PaymentMethod string
	Status        string
	Notes         string
	Items         []SaleItem
}

// ItemError ties a per-item validation failure to the offending product so
// callers can report which line was rejected.
type ItemError struct {
	ProductID int64
	Err       error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item for product %d: %v", e.ProductID, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// NewSaleOrder validates and constructs the aggregate, applying defaults:
// status PENDING when empty, date now when zero, discount zero is assumed to
// already be applied by the caller.
func NewSaleOrder(clientID, employeeID int64, date time.Time, paymentMethod, status string, items []SaleItem) (*SaleOrder, error) {
	if status == "" {
		status = StatusPending
	}
	if date.IsZero() {
		date = time.Now()
	}
	order := &SaleOrder{
		ClientID:      clientID,
		EmployeeID:    employeeID,
		Date:          date,
		PaymentMethod: paymentMethod,
		Status:        status,
		Items:         items,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces the aggregate invariants. The first failing item aborts
// validation and names its product.
func (o *SaleOrder) Validate() error {
	if o.ClientID <= 0 || o.EmployeeID <= 0 {
		return ErrMissingParties
	}
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range o.Items {
		if err := item.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (i SaleItem) validate() error {
	if i.ProductID <= 0 {
		return &ItemError{ProductID: i.ProductID, Err: ErrItemIncomplete}
	}
	if i.Quantity <= 0 {
		return &ItemError{ProductID: i.ProductID, Err: ErrItemQuantity}
	}
	if i.Price < 0 {
		return &ItemError{ProductID: i.ProductID, Err: ErrItemPrice}
	}
	if i.Discount < 0 {
		return &ItemError{ProductID: i.ProductID, Err: ErrItemDiscount}
	}
	return nil
}
