package model

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	DealerStatusPending  = "pending"
	DealerStatusApproved = "approved"
	DealerStatusRejected = "rejected"

	DefaultCountry = "Türkiye"
)

// DealerStatus normalises a requested status. The second result is false
// for values outside pending, approved and rejected.
func DealerStatus(raw string) (string, bool) {
	status := strings.ToLower(strings.TrimSpace(raw))
	switch status {
	case DealerStatusPending, DealerStatusApproved, DealerStatusRejected:
		return status, true
	default:
		return "", false
	}
}

// DocumentSlot names one of the legal documents a dealer uploads.
type DocumentSlot string

const (
	DocumentTaxCertificate    DocumentSlot = "tax-certificate"
	DocumentTradeRegistry     DocumentSlot = "trade-registry"
	DocumentSignatureCircular DocumentSlot = "signature-circular"
)

// Valid reports whether s is a known slot.
func (s DocumentSlot) Valid() bool {
	switch s {
	case DocumentTaxCertificate, DocumentTradeRegistry, DocumentSignatureCircular:
		return true
	default:
		return false
	}
}

// Dealer represents a dealer or a dealer application.
type Dealer struct {
	ID                       int64           `json:"id" db:"id"`
	Code                     string          `json:"code" db:"code"`
	Name                     string          `json:"name" db:"name"`
	ContactName              string          `json:"contactName" db:"contact_name"`
	ContactEmail             string          `json:"contactEmail" db:"contact_email"`
	ContactPhone             string          `json:"contactPhone" db:"contact_phone"`
	Address                  string          `json:"address" db:"address"`
	City                     string          `json:"city" db:"city"`
	District                 string          `json:"district" db:"district"`
	Country                  string          `json:"country" db:"country"`
	EstablishmentYear        *int            `json:"establishmentYear" db:"establishment_year"`
	Website                  string          `json:"website" db:"website"`
	TaxNumber                string          `json:"taxNumber" db:"tax_number"`
	TaxOffice                string          `json:"taxOffice" db:"tax_office"`
	TaxCertificatePath       string          `json:"taxCertificatePath" db:"tax_certificate_path"`
	TradeRegistryGazettePath string          `json:"tradeRegistryGazettePath" db:"trade_registry_gazette_path"`
	SignatureCircularPath    string          `json:"signatureCircularPath" db:"signature_circular_path"`
	Notes                    string          `json:"notes" db:"notes"`
	Status                   string          `json:"status" db:"status"`
	IsActive                 bool            `json:"isActive" db:"is_active"`
	Metadata                 json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	CreatedAt                time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt                time.Time       `json:"updatedAt" db:"updated_at"`

	OrdersSummary *OrdersSummary `json:"ordersSummary,omitempty" db:"-"`
}

// DocumentPath returns the stored path for a slot.
func (d *Dealer) DocumentPath(slot DocumentSlot) string {
	switch slot {
	case DocumentTaxCertificate:
		return d.TaxCertificatePath
	case DocumentTradeRegistry:
		return d.TradeRegistryGazettePath
	case DocumentSignatureCircular:
		return d.SignatureCircularPath
	default:
		return ""
	}
}

// SetDocumentPath stores path in the given slot.
func (d *Dealer) SetDocumentPath(slot DocumentSlot, path string) {
	switch slot {
	case DocumentTaxCertificate:
		d.TaxCertificatePath = path
	case DocumentTradeRegistry:
		d.TradeRegistryGazettePath = path
	case DocumentSignatureCircular:
		d.SignatureCircularPath = path
	}
}

// DealerRequest is the payload for creating or updating a dealer.
type DealerRequest struct {
	Code              *string         `json:"code,omitempty"`
	Name              *string         `json:"name,omitempty"`
	ContactName       *string         `json:"contactName,omitempty"`
	ContactEmail      *string         `json:"contactEmail,omitempty"`
	ContactPhone      *string         `json:"contactPhone,omitempty"`
	Address           *string         `json:"address,omitempty"`
	City              *string         `json:"city,omitempty"`
	District          *string         `json:"district,omitempty"`
	Country           *string         `json:"country,omitempty"`
	EstablishmentYear *Numeric        `json:"establishmentYear,omitempty"`
	Website           *string         `json:"website,omitempty"`
	TaxNumber         *string         `json:"taxNumber,omitempty"`
	TaxOffice         *string         `json:"taxOffice,omitempty"`
	Notes             *string         `json:"notes,omitempty"`
	Status            *string         `json:"status,omitempty"`
	IsActive          *bool           `json:"isActive,omitempty"`
	Metadata          json.RawMessage `json:"metadata,omitempty"`
}

// DealerFilter narrows a dealer listing.
type DealerFilter struct {
	Search               string
	Status               string
	IsActive             *bool
	IncludeOrdersSummary bool
	Page                 Page
}
