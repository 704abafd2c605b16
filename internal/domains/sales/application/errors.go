package application

import (
	"errors"

	"github.com/Apurer/go-sales-api-server/internal/domains/sales/domain"
	"github.com/Apurer/go-sales-api-server/internal/domains/sales/ports"
	"github.com/Apurer/go-sales-api-server/internal/shared/apperrors"
)

// mapError translates domain and repository errors into the shared taxonomy
// with the wire-contract messages.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var itemErr *domain.ItemError
	if errors.As(err, &itemErr) {
		msg := ""
		switch {
		case errors.Is(itemErr.Err, domain.ErrItemIncomplete):
			return apperrors.Validation("Product ID, quantity, and price are required for each item")
		case errors.Is(itemErr.Err, domain.ErrItemQuantity):
			msg = "Item quantity must be a positive integer"
		case errors.Is(itemErr.Err, domain.ErrItemPrice):
			msg = "Item price must be a non-negative number"
		case errors.Is(itemErr.Err, domain.ErrItemDiscount):
			msg = "Item discount must be a non-negative number"
		default:
			msg = "Invalid item in items list"
		}
		return apperrors.Validation(msg).WithDetail("product_id", itemErr.ProductID)
	}
	switch {
	case errors.Is(err, domain.ErrMissingParties):
		return apperrors.Validation("Client ID and Employee ID are required")
	case errors.Is(err, domain.ErrNoItems):
		return apperrors.Validation("Items are required and must be a non-empty list")
	case errors.Is(err, domain.ErrItemsImmutable):
		return apperrors.Validation("Sale items cannot be replaced after publication")
	case errors.Is(err, ports.ErrNotFound):
		return apperrors.NotFound("Sale not found")
	}
	return err
}
