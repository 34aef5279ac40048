package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending = "pending"
	DefaultCurrency    = "TRY"
)

// Order represents a dealer order. Items and totals are a snapshot taken
// when the order was created.
type Order struct {
	ID            int64           `json:"id" db:"id"`
	OrderNumber   string          `json:"orderNumber" db:"order_number"`
	Status        string          `json:"status" db:"status"`
	DealerName    string          `json:"dealerName" db:"dealer_name"`
	DealerCode    string          `json:"dealerCode" db:"dealer_code"`
	ContactName   string          `json:"contactName" db:"contact_name"`
	ContactEmail  string          `json:"contactEmail" db:"contact_email"`
	ContactPhone  string          `json:"contactPhone" db:"contact_phone"`
	Currency      string          `json:"currency" db:"currency"`
	Items         []OrderItem     `json:"items" db:"items"`
	TotalQuantity int             `json:"totalQuantity" db:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Notes         string          `json:"notes" db:"notes"`
	Metadata      json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is one frozen line of an order.
type OrderItem struct {
	ProductID        int64            `json:"productId"`
	ProductCode      string           `json:"productCode"`
	ProductName      string           `json:"productName"`
	Quantity         int              `json:"quantity"`
	UnitPrice        decimal.Decimal  `json:"unitPrice"`
	DiscountRate     *decimal.Decimal `json:"discountRate,omitempty"`
	AppliedUnitPrice decimal.Decimal  `json:"appliedUnitPrice"`
	Subtotal         decimal.Decimal  `json:"subtotal"`
	Currency         string           `json:"currency"`
	RequestedSize    string           `json:"requestedSize,omitempty"`
	RequestedColor   string           `json:"requestedColor,omitempty"`
}

// OrderRequest is the payload for creating or updating an order.
// On update, Items is ignored.
type OrderRequest struct {
	OrderNumber  *string            `json:"orderNumber,omitempty"`
	Status       *string            `json:"status,omitempty"`
	DealerName   *string            `json:"dealerName,omitempty"`
	DealerCode   *string            `json:"dealerCode,omitempty"`
	ContactName  *string            `json:"contactName,omitempty"`
	ContactEmail *string            `json:"contactEmail,omitempty"`
	ContactPhone *string            `json:"contactPhone,omitempty"`
	Currency     *string            `json:"currency,omitempty"`
	Notes        *string            `json:"notes,omitempty"`
	Metadata     json.RawMessage    `json:"metadata,omitempty"`
	Items        []OrderItemRequest `json:"items,omitempty"`
}

// OrderItemRequest is a single requested line.
type OrderItemRequest struct {
	ProductCode string   `json:"productCode"`
	Quantity    *Numeric `json:"quantity,omitempty"`
	UnitPrice   *Numeric `json:"unitPrice,omitempty"`
	Discount    *Numeric `json:"discount,omitempty"`
	Size        string   `json:"size,omitempty"`
	Color       string   `json:"color,omitempty"`
}

// OrderFilter narrows an order listing.
type OrderFilter struct {
	Search       string
	Status       string
	DealerCode   string
	CreatedSince *time.Time
	Page         Page
}

// OrdersSummary aggregates the orders placed under one dealer code.
type OrdersSummary struct {
	TotalOrders   int             `json:"totalOrders"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TotalQuantity int             `json:"totalQuantity"`
	LastOrderAt   *time.Time      `json:"lastOrderAt"`
}
