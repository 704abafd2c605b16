// Package contracts holds the wire payloads exchanged over the message
// channel between the sales coordinator and its downstream consumers. The
// field names are the published contract and must not drift.
package contracts

import "time"

// Topic names on the message channel.
const (
	TopicInventoryUpdates  = "inventory-updates"
	TopicSaleInvoiceEvents = "sale-invoice-events"
)

// InventoryDecrement tells the inventory subsystem to reduce stock for one
// sold line item. EventID is unique per line item per sale; consumers use it
// to make redelivery a no-op. Legacy producers may omit it.
type InventoryDecrement struct {
	EventID      string `json:"event_id,omitempty"`
	ProductID    int64  `json:"product_id"`
	QuantitySold int32  `json:"quantity_sold"`
}

// SaleOrderSnapshot is the sale order copy embedded in invoice events for
// traceability.
type SaleOrderSnapshot struct {
	ID            int64     `json:"id"`
	ClientID      int64     `json:"client_id"`
	EmployeeID    int64     `json:"employee_id"`
	Date          time.Time `json:"date"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
}

// InvoiceItem is one priced line of an invoice document.
type InvoiceItem struct {
	ProductID int64   `json:"product_id"`
	Quantity  int32   `json:"quantity"`
	Price     float64 `json:"price"`
	Discount  float64 `json:"discount"`
	Total     float64 `json:"total"`
}

// InvoiceDocument is the fully formed invoice computed by the coordinator and
// persisted verbatim by the invoice store, keyed by NFID.
type InvoiceDocument struct {
	NFID          string        `json:"nf_id"`
	SaleOrderID   int64         `json:"sale_order_id"`
	IssueDate     time.Time     `json:"issue_date"`
	ClientID      int64         `json:"client_id"`
	EmployeeID    int64         `json:"employee_id"`
	PaymentMethod string        `json:"payment_method"`
	Status        string        `json:"status"`
	TotalValue    float64       `json:"total_value"`
	Items         []InvoiceItem `json:"items"`
	Notes         string        `json:"observacoes"`
}

// SaleInvoiceEvent is the sale-invoice-events payload: the precomputed
// invoice plus the originating order snapshot.
type SaleInvoiceEvent struct {
	SaleOrder   SaleOrderSnapshot `json:"sale_order"`
	InvoiceData InvoiceDocument   `json:"invoice_data"`
}
