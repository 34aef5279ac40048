package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices are rendered as JSON numbers rather than quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Variant is one color combination and size pairing of a product.
type Variant struct {
	Color       string `json:"color"`
	Size        string `json:"size"`
	VariantCode string `json:"variantCode"`
	ColorCode   string `json:"colorCode"`
}

// Product represents a catalogue item with its derived variants.
type Product struct {
	ID                int64           `json:"id" db:"id"`
	StockCode         string          `json:"stockCode" db:"stock_code"`
	StockCodePrefix   string          `json:"stockCodePrefix,omitempty" db:"stock_code_prefix"`
	Name              string          `json:"name" db:"name"`
	Category          string          `json:"category" db:"category"`
	ConsumerPrice     decimal.Decimal `json:"consumerPrice" db:"consumer_price"`
	DealerPrice       decimal.Decimal `json:"dealerPrice" db:"dealer_price"`
	StockCount        int             `json:"stockCount" db:"stock_count"`
	Sizes             []string        `json:"sizes" db:"sizes"`
	Colors            []string        `json:"colors" db:"colors"`
	ColorCombinations []string        `json:"colorCombinations" db:"color_combinations"`
	Variants          []Variant       `json:"variants" db:"variants"`
	Featured          bool            `json:"featured" db:"featured"`
	Description       string          `json:"description" db:"description"`
	Details           string          `json:"details" db:"details"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time       `json:"updatedAt" db:"updated_at"`
}

// DecrementStock takes qty units out of stock. It fails when the product
// cannot cover the quantity.
func (p *Product) DecrementStock(qty int) error {
	if qty > p.StockCount {
		return NewInsufficientStockError(p.StockCode)
	}
	p.StockCount = max(p.StockCount-qty, 0)
	return nil
}

// Restock puts qty units back into stock.
func (p *Product) Restock(qty int) {
	p.StockCount = max(p.StockCount+qty, 0)
}

// ProductRequest is the payload for creating or updating a product.
// Absent fields keep their stored value on update.
type ProductRequest struct {
	StockCode         *string     `json:"stockCode,omitempty"`
	StockCodePrefix   *string     `json:"stockCodePrefix,omitempty"`
	Name              *string     `json:"name,omitempty"`
	Category          *string     `json:"category,omitempty"`
	ConsumerPrice     *Numeric    `json:"consumerPrice,omitempty"`
	DealerPrice       *Numeric    `json:"dealerPrice,omitempty"`
	StockCount        *Numeric    `json:"stockCount,omitempty"`
	Sizes             *StringList `json:"sizes,omitempty"`
	Colors            *StringList `json:"colors,omitempty"`
	ColorCombinations *StringList `json:"colorCombinations,omitempty"`
	Featured          *bool       `json:"featured,omitempty"`
	Description       *string     `json:"description,omitempty"`
	Details           *string     `json:"details,omitempty"`
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Search       string
	Category     string
	Featured     *bool
	UpdatedSince *time.Time
	Page         Page
}
