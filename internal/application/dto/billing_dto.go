package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItemRequest línea de factura. InventoryItemID opcional: vacío =
// línea libre sin paso por inventario. UnitPrice en cero usa el precio
// vigente del artículo.
type InvoiceItemRequest struct {
	InventoryItemID string          `json:"inventory_item_id,omitempty"`
	Description     string          `json:"description,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
}

// CreateInvoiceRequest creación de factura.
type CreateInvoiceRequest struct {
	Number       string               `json:"number,omitempty"`
	CustomerName string               `json:"customer_name"`
	Items        []InvoiceItemRequest `json:"items"`
}

// UpdateInvoiceRequest edición de cabecera. Los campos vacíos no se tocan.
type UpdateInvoiceRequest struct {
	Number       string `json:"number,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
}

// InvoiceResponse factura para respuestas.
type InvoiceResponse struct {
	ID           string                `json:"id"`
	Number       string                `json:"number"`
	CustomerName string                `json:"customer_name"`
	Status       string                `json:"status"`
	Subtotal     decimal.Decimal       `json:"subtotal"`
	TaxTotal     decimal.Decimal       `json:"tax_total"`
	GrandTotal   decimal.Decimal       `json:"grand_total"`
	IssuedAt     time.Time             `json:"issued_at"`
	Items        []InvoiceItemResponse `json:"items,omitempty"`
}

// InvoiceItemResponse línea de factura para respuestas.
type InvoiceItemResponse struct {
	ID              string          `json:"id"`
	InventoryItemID string          `json:"inventory_item_id,omitempty"`
	Description     string          `json:"description,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}
