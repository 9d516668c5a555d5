package webhook

import (
	"context"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// Eventos de dominio notificables.
const (
	EventInvoiceCreated   = "invoice.created"
	EventInvoiceUpdated   = "invoice.updated"
	EventInvoicePaid      = "invoice.paid"
	EventInvoiceCancelled = "invoice.cancelled"
	EventLeadCreated      = "lead.created"
	EventLeadUpdated      = "lead.updated"
	EventLeadConverted    = "lead.converted"
	EventLowStock         = "inventory.low_stock"
)

// Notifier son los wrappers de conveniencia por evento de dominio: arman el
// data del payload y disparan el fan-out en una goroutine desacoplada de la
// transacción que escribió el evento (fire-and-forget). El dominio nunca
// espera ni depende del resultado de las entregas.
type Notifier struct {
	dispatcher *Dispatcher
}

// NewNotifier construye el notificador.
func NewNotifier(dispatcher *Dispatcher) *Notifier {
	return &Notifier{dispatcher: dispatcher}
}

// notifyAsync dispara el evento en background. El contexto es independiente
// del caller: la entrega no se cancela porque la petición HTTP original termine.
func (n *Notifier) notifyAsync(orgID, eventType string, data any) {
	go func() {
		// TriggerWebhooks ya contiene todos los fallos de entrega; el error
		// solo puede venir de la búsqueda de suscripciones y no tiene caller
		// al que propagarse.
		_, _ = n.dispatcher.TriggerWebhooks(context.Background(), orgID, eventType, data)
	}()
}

func invoiceData(inv *entity.Invoice) map[string]any {
	return map[string]any{
		"id":            inv.ID,
		"number":        inv.Number,
		"customer_name": inv.CustomerName,
		"status":        inv.Status,
		"subtotal":      inv.Subtotal,
		"tax_total":     inv.TaxTotal,
		"grand_total":   inv.GrandTotal,
		"issued_at":     inv.IssuedAt,
	}
}

func leadData(l *entity.Lead) map[string]any {
	return map[string]any{
		"id":      l.ID,
		"name":    l.Name,
		"email":   l.Email,
		"company": l.Company,
		"source":  l.Source,
		"status":  l.Status,
	}
}

// InvoiceCreated notifica invoice.created.
func (n *Notifier) InvoiceCreated(inv *entity.Invoice) {
	n.notifyAsync(inv.OrgID, EventInvoiceCreated, invoiceData(inv))
}

// InvoiceUpdated notifica invoice.updated.
func (n *Notifier) InvoiceUpdated(inv *entity.Invoice) {
	n.notifyAsync(inv.OrgID, EventInvoiceUpdated, invoiceData(inv))
}

// InvoicePaid notifica invoice.paid.
func (n *Notifier) InvoicePaid(inv *entity.Invoice) {
	n.notifyAsync(inv.OrgID, EventInvoicePaid, invoiceData(inv))
}

// InvoiceCancelled notifica invoice.cancelled.
func (n *Notifier) InvoiceCancelled(inv *entity.Invoice) {
	n.notifyAsync(inv.OrgID, EventInvoiceCancelled, invoiceData(inv))
}

// LeadCreated notifica lead.created.
func (n *Notifier) LeadCreated(l *entity.Lead) {
	n.notifyAsync(l.OrgID, EventLeadCreated, leadData(l))
}

// LeadUpdated notifica lead.updated.
func (n *Notifier) LeadUpdated(l *entity.Lead) {
	n.notifyAsync(l.OrgID, EventLeadUpdated, leadData(l))
}

// LeadConverted notifica lead.converted.
func (n *Notifier) LeadConverted(l *entity.Lead) {
	n.notifyAsync(l.OrgID, EventLeadConverted, leadData(l))
}

// LowStock notifica inventory.low_stock con los artículos bajo su punto de reorden.
func (n *Notifier) LowStock(orgID string, itemIDs []string) {
	if len(itemIDs) == 0 {
		return
	}
	n.notifyAsync(orgID, EventLowStock, map[string]any{"item_ids": itemIDs})
}
