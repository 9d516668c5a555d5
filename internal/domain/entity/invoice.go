package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una factura.
const (
	InvoiceStatusIssued    = "ISSUED"
	InvoiceStatusPaid      = "PAID"
	InvoiceStatusCancelled = "CANCELLED"
)

// Invoice representa la cabecera de una factura de la organización.
type Invoice struct {
	ID           string
	OrgID        string
	Number       string
	CustomerName string
	Status       string // ISSUED, PAID, CANCELLED
	Subtotal     decimal.Decimal
	TaxTotal     decimal.Decimal
	GrandTotal   decimal.Decimal
	IssuedAt     time.Time
	PaidAt       *time.Time
	CancelledAt  *time.Time
	CreatedByID  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InvoiceItem es una línea de factura. InventoryItemID es opcional: las líneas
// sin vínculo a inventario (servicios, conceptos libres) no pasan por el ledger.
type InvoiceItem struct {
	ID              string
	OrgID           string
	InvoiceID       string
	InventoryItemID string // vacío = línea sin inventario
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal // precio congelado al facturar
	TaxRate         decimal.Decimal
	Subtotal        decimal.Decimal
}
