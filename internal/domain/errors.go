package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	ErrItemNotFound      = errors.New("artículo de inventario no encontrado")
	ErrItemInactive      = errors.New("artículo de inventario inactivo")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidAdjustment = errors.New("el ajuste dejaría el stock en negativo")

	ErrMissingEndpoint = errors.New("la integración no tiene URL configurada")
)

// ItemNotFoundError indica qué artículos de la operación no existen en la organización.
type ItemNotFoundError struct {
	ItemIDs []string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("artículos no encontrados: %s", strings.Join(e.ItemIDs, ", "))
}

func (e *ItemNotFoundError) Unwrap() error { return ErrItemNotFound }

// ItemInactiveError indica qué artículos están desactivados (soft-delete).
type ItemInactiveError struct {
	ItemIDs []string
}

func (e *ItemInactiveError) Error() string {
	return fmt.Sprintf("artículos inactivos: %s", strings.Join(e.ItemIDs, ", "))
}

func (e *ItemInactiveError) Unwrap() error { return ErrItemInactive }

// StockShortfall detalle de un artículo sin stock suficiente para la deducción.
type StockShortfall struct {
	ItemID    string
	Available decimal.Decimal
	Requested decimal.Decimal
}

// InsufficientStockError agrupa los artículos que no alcanzan el stock solicitado.
// La operación completa se rechaza; ningún artículo se deduce parcialmente.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Shortfalls))
	for i, s := range e.Shortfalls {
		parts[i] = fmt.Sprintf("%s (disponible %s, solicitado %s)", s.ItemID, s.Available, s.Requested)
	}
	return "stock insuficiente: " + strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvalidAdjustmentError reporta el nivel actual y el delta intentado para diagnóstico.
type InvalidAdjustmentError struct {
	ItemID       string
	CurrentLevel decimal.Decimal
	Quantity     decimal.Decimal
}

func (e *InvalidAdjustmentError) Error() string {
	return fmt.Sprintf("ajuste inválido para %s: nivel actual %s, delta %s", e.ItemID, e.CurrentLevel, e.Quantity)
}

func (e *InvalidAdjustmentError) Unwrap() error { return ErrInvalidAdjustment }
