package mapper

import (
	"bytes"
	"encoding/json"
	"time"

	salesdomain "github.com/Apurer/go-sales-api-server/internal/domains/sales/domain"
	salesports "github.com/Apurer/go-sales-api-server/internal/domains/sales/ports"
	"github.com/Apurer/go-sales-api-server/internal/shared/apperrors"
)

// CreateSaleRequest is the POST /sales body. Pointer fields keep absent and
// zero distinguishable for the validation contract; items bind as raw JSON so
// a mistyped value is classified as a validation failure, not a bad request.
type CreateSaleRequest struct {
	ClientID      *int64          `json:"client_id"`
	EmployeeID    *int64          `json:"employee_id"`
	Date          *string         `json:"date"`
	PaymentMethod *string         `json:"payment_method"`
	Status        *string         `json:"status"`
	Observacoes   *string         `json:"observacoes"`
	Items         json.RawMessage `json:"items"`
}

// UpdateSaleRequest is the PUT /sales/:id body; items are rejected downstream.
type UpdateSaleRequest struct {
	ClientID      *int64          `json:"client_id"`
	EmployeeID    *int64          `json:"employee_id"`
	Date          *string         `json:"date"`
	PaymentMethod *string         `json:"payment_method"`
	Status        *string         `json:"status"`
	Items         json.RawMessage `json:"items"`
}

// SaleResponse is the wire shape of a persisted order.
type SaleResponse struct {
	ID            int64              `json:"id"`
	ClientID      int64              `json:"client_id"`
	EmployeeID    int64              `json:"employee_id"`
	Date          time.Time          `json:"date"`
	PaymentMethod string             `json:"payment_method"`
	Status        string             `json:"status"`
	Observacoes   string             `json:"observacoes,omitempty"`
	Items         []SaleItemResponse `json:"items"`
}

// SaleItemResponse is the wire shape of a persisted item.
type SaleItemResponse struct {
	ID          int64   `json:"id"`
	SaleOrderID int64   `json:"sale_order_id"`
	ProductID   int64   `json:"product_id"`
	Quantity    int32   `json:"quantity"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount"`
}

// ToCreateInput converts the request body to the service input contract.
func ToCreateInput(req CreateSaleRequest) (salesports.CreateSaleInput, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return salesports.CreateSaleInput{}, err
	}
	items, err := decodeItems(req.Items)
	if err != nil {
		return salesports.CreateSaleInput{}, err
	}
	return salesports.CreateSaleInput{
		ClientID:      req.ClientID,
		EmployeeID:    req.EmployeeID,
		Date:          date,
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
		Observacoes:   req.Observacoes,
		Items:         items,
	}, nil
}

// ToUpdateInput converts the update body to the service input contract. Any
// items value present in the body, well-formed or not, counts as an attempted
// replacement and surfaces as a non-nil slice.
func ToUpdateInput(id int64, req UpdateSaleRequest) (salesports.UpdateSaleInput, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return salesports.UpdateSaleInput{}, err
	}
	var items []salesports.ItemInput
	if rawProvided(req.Items) {
		items = []salesports.ItemInput{}
	}
	return salesports.UpdateSaleInput{
		ID:            id,
		ClientID:      req.ClientID,
		EmployeeID:    req.EmployeeID,
		Date:          date,
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
		Items:         items,
	}, nil
}

// FromDomain converts a domain order to the transport representation.
func FromDomain(order *salesdomain.SaleOrder) SaleResponse {
	if order == nil {
		return SaleResponse{}
	}
	items := make([]SaleItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, SaleItemResponse{
			ID:          item.ID,
			SaleOrderID: item.SaleOrderID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Discount:    item.Discount,
		})
	}
	return SaleResponse{
		ID:            order.ID,
		ClientID:      order.ClientID,
		EmployeeID:    order.EmployeeID,
		Date:          order.Date,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
		Observacoes:   order.Notes,
		Items:         items,
	}
}

// FromDomainList converts a list of domain orders.
func FromDomainList(orders []*salesdomain.SaleOrder) []SaleResponse {
	list := make([]SaleResponse, 0, len(orders))
	for _, order := range orders {
		list = append(list, FromDomain(order))
	}
	return list
}

// decodeItems parses the raw items value. A value that is not a JSON array,
// or an item field that is not the expected number type, is a validation
// failure with the same message the field-level checks use.
func decodeItems(raw json.RawMessage) ([]salesports.ItemInput, error) {
	if !rawProvided(raw) {
		return nil, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, apperrors.Validation("Items are required and must be a non-empty list")
	}
	inputs := make([]salesports.ItemInput, 0, len(elems))
	for _, elem := range elems {
		item, err := decodeItem(elem)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, item)
	}
	return inputs, nil
}

func decodeItem(raw json.RawMessage) (salesports.ItemInput, error) {
	var wire struct {
		ProductID json.RawMessage `json:"product_id"`
		Quantity  json.RawMessage `json:"quantity"`
		Price     json.RawMessage `json:"price"`
		Discount  json.RawMessage `json:"discount"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return salesports.ItemInput{}, apperrors.Validation("Product ID, quantity, and price are required for each item")
	}
	var item salesports.ItemInput
	productID, err := int64Field(wire.ProductID, "Product ID, quantity, and price are required for each item")
	if err != nil {
		return salesports.ItemInput{}, err
	}
	item.ProductID = productID
	quantity, err := int64Field(wire.Quantity, "Item quantity must be a positive integer")
	if err != nil {
		return salesports.ItemInput{}, err
	}
	if quantity != nil {
		q := int32(*quantity)
		item.Quantity = &q
	}
	item.Price, err = floatField(wire.Price, "Item price must be a non-negative number")
	if err != nil {
		return salesports.ItemInput{}, err
	}
	item.Discount, err = floatField(wire.Discount, "Item discount must be a non-negative number")
	if err != nil {
		return salesports.ItemInput{}, err
	}
	return item, nil
}

func int64Field(raw json.RawMessage, msg string) (*int64, error) {
	if !rawProvided(raw) {
		return nil, nil
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, apperrors.Validation(msg)
	}
	return &v, nil
}

func floatField(raw json.RawMessage, msg string) (*float64, error) {
	if !rawProvided(raw) {
		return nil, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, apperrors.Validation(msg)
	}
	return &v, nil
}

func rawProvided(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, apperrors.Validation("Date must be an ISO-8601 timestamp")
	}
	return &parsed, nil
}
