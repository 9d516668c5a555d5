package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeSALE       = "SALE"       // salida por venta (factura)
	MovementTypeRETURN     = "RETURN"     // devolución por anulación de factura
	MovementTypeRESTOCK    = "RESTOCK"    // entrada por reposición
	MovementTypeDAMAGE     = "DAMAGE"     // baja por daño o pérdida
	MovementTypeCORRECTION = "CORRECTION" // corrección manual de inventario
)

// Referencias del movimiento: a qué operación pertenece.
const (
	ReferenceTypeInvoice = "INVOICE" // ReferenceID = ID de la factura
	ReferenceTypeManual  = "MANUAL"  // ajuste manual, ReferenceID vacío
)

// Tipos de actor que originan un movimiento.
const (
	ActorTypeUser   = "user"   // usuario humano
	ActorTypeSystem = "system" // proceso o agente del sistema
)

// StockMovement es el registro inmutable de un cambio de stock: se crea una
// vez por cambio y nunca se actualiza ni se borra. PreviousLevel y NewLevel
// son redundantes con Quantity a propósito: NewLevel - PreviousLevel debe ser
// igual a Quantity en todo registro (invariante de auditoría).
type StockMovement struct {
	ID              string
	OrgID           string
	InventoryItemID string
	Type            string          // SALE, RETURN, RESTOCK, DAMAGE, CORRECTION
	Quantity        decimal.Decimal // delta con signo: negativo salida, positivo entrada
	PreviousLevel   decimal.Decimal
	NewLevel        decimal.Decimal
	UnitPrice       decimal.Decimal // precio capturado en el momento del movimiento (inmutable)
	ReferenceType   string          // INVOICE o MANUAL
	ReferenceID     string          // ID de factura, o vacío para operaciones manuales
	CreatedByID     string
	CreatedByType   string // user o system
	Reason          string
	Notes           string
	CreatedAt       time.Time
}
