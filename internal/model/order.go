package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

// Order is a tailoring order. OrderNumber is the human-facing day-scoped
// identifier (YYYYMMDD-NNN); ID is the stable UUID key.
type Order struct {
	ID             string      `json:"id"`
	OrderNumber    string      `json:"order_number"`
	CustomerID     string      `json:"customer_id"`
	Description    *string     `json:"description"`
	FabricDetails  *string     `json:"fabric_details"`
	Price          *float64    `json:"price"`
	AdvancePayment *float64    `json:"advance_payment"`
	DeliveryDate   *string     `json:"delivery_date"`
	Status         OrderStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	// Customer is populated on list/detail reads; it is not a column and
	// is omitted from backup snapshots.
	Customer *CustomerSummary `json:"customer,omitempty"`
}
