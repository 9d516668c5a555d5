package billing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/billing"
	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/ledger"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. El TxRunner serializa transacciones y restaura el estado
// previo en error, igual que un rollback real; el motor de inventario usado es
// el real (ledger.StockLedgerUseCase), de modo que factura y deducción se
// ejercitan juntas como en producción.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	items     map[string]*entity.InventoryItem
	movements []*entity.StockMovement
	invoices  map[string]*entity.Invoice
	lines     map[string][]*entity.InvoiceItem
}

func newMemStore() *memStore {
	return &memStore{
		items:    make(map[string]*entity.InventoryItem),
		invoices: make(map[string]*entity.Invoice),
		lines:    make(map[string][]*entity.InvoiceItem),
	}
}

type storeSnapshot struct {
	items    map[string]entity.InventoryItem
	movCount int
	invoices map[string]entity.Invoice
	lines    map[string]int
}

func (s *memStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		items:    make(map[string]entity.InventoryItem, len(s.items)),
		movCount: len(s.movements),
		invoices: make(map[string]entity.Invoice, len(s.invoices)),
		lines:    make(map[string]int, len(s.lines)),
	}
	for id, item := range s.items {
		snap.items[id] = *item
	}
	for id, inv := range s.invoices {
		snap.invoices[id] = *inv
	}
	for id, ls := range s.lines {
		snap.lines[id] = len(ls)
	}
	return snap
}

func (s *memStore) restore(snap storeSnapshot) {
	for id := range s.items {
		if orig, ok := snap.items[id]; ok {
			copia := orig
			s.items[id] = &copia
		} else {
			delete(s.items, id)
		}
	}
	s.movements = s.movements[:snap.movCount]
	for id := range s.invoices {
		if orig, ok := snap.invoices[id]; ok {
			copia := orig
			s.invoices[id] = &copia
		} else {
			delete(s.invoices, id)
		}
	}
	for id, ls := range s.lines {
		if n, ok := snap.lines[id]; ok {
			s.lines[id] = ls[:n]
		} else {
			delete(s.lines, id)
		}
	}
}

type memTxRunner struct{ store *memStore }

func (r *memTxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.InventoryItemRepository,
	movRepo repository.StockMovementRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	snap := r.store.snapshot()
	err := fn(&memItemRepo{store: r.store}, &memMovementRepo{store: r.store}, &memInvoiceRepo{store: r.store})
	if err != nil {
		r.store.restore(snap)
	}
	return err
}

type memItemRepo struct{ store *memStore }

func (r *memItemRepo) Create(item *entity.InventoryItem) error {
	r.store.items[item.ID] = item
	return nil
}

func (r *memItemRepo) GetByID(id, orgID string) (*entity.InventoryItem, error) {
	item, ok := r.store.items[id]
	if !ok || item.OrgID != orgID {
		return nil, nil
	}
	copia := *item
	return &copia, nil
}

func (r *memItemRepo) GetForUpdate(id, orgID string) (*entity.InventoryItem, error) {
	return r.GetByID(id, orgID)
}

func (r *memItemRepo) ListForUpdate(ids []string, orgID string) ([]*entity.InventoryItem, error) {
	out := make([]*entity.InventoryItem, 0, len(ids))
	for _, id := range ids {
		item, ok := r.store.items[id]
		if !ok || item.OrgID != orgID {
			continue
		}
		copia := *item
		out = append(out, &copia)
	}
	return out, nil
}

func (r *memItemRepo) UpdateStockLevel(id string, level decimal.Decimal) error {
	item, ok := r.store.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	item.StockLevel = level
	return nil
}

func (r *memItemRepo) Update(item *entity.InventoryItem) error {
	r.store.items[item.ID] = item
	return nil
}

func (r *memItemRepo) ListByOrg(orgID string, limit, offset int) ([]*entity.InventoryItem, error) {
	return nil, nil
}

type memMovementRepo struct{ store *memStore }

func (r *memMovementRepo) Create(m *entity.StockMovement) error {
	r.store.movements = append(r.store.movements, m)
	return nil
}

func (r *memMovementRepo) GetByID(id, orgID string) (*entity.StockMovement, error) { return nil, nil }

func (r *memMovementRepo) ListByItem(itemID, orgID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return nil, nil
}

func (r *memMovementRepo) ListByReference(referenceType, referenceID, orgID string) ([]*entity.StockMovement, error) {
	return nil, nil
}

type memInvoiceRepo struct{ store *memStore }

func (r *memInvoiceRepo) Create(inv *entity.Invoice) error {
	r.store.invoices[inv.ID] = inv
	return nil
}

func (r *memInvoiceRepo) CreateItem(it *entity.InvoiceItem) error {
	r.store.lines[it.InvoiceID] = append(r.store.lines[it.InvoiceID], it)
	return nil
}

func (r *memInvoiceRepo) GetByID(id, orgID string) (*entity.Invoice, error) {
	inv, ok := r.store.invoices[id]
	if !ok || inv.OrgID != orgID {
		return nil, nil
	}
	copia := *inv
	return &copia, nil
}

// GetForUpdate: el mutex del memTxRunner serializa las transacciones, así que
// la lectura bajo lock equivale al FOR UPDATE real.
func (r *memInvoiceRepo) GetForUpdate(id, orgID string) (*entity.Invoice, error) {
	return r.GetByID(id, orgID)
}

func (r *memInvoiceRepo) ListItemsByInvoice(invoiceID, orgID string) ([]*entity.InvoiceItem, error) {
	return r.store.lines[invoiceID], nil
}

func (r *memInvoiceRepo) Update(inv *entity.Invoice) error {
	stored, ok := r.store.invoices[inv.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Number = inv.Number
	stored.CustomerName = inv.CustomerName
	stored.UpdatedAt = inv.UpdatedAt
	return nil
}

func (r *memInvoiceRepo) UpdateStatus(inv *entity.Invoice) error {
	stored, ok := r.store.invoices[inv.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = inv.Status
	stored.PaidAt = inv.PaidAt
	stored.CancelledAt = inv.CancelledAt
	stored.UpdatedAt = inv.UpdatedAt
	return nil
}

func (r *memInvoiceRepo) ListByOrg(orgID string, limit, offset int) ([]*entity.Invoice, error) {
	return nil, nil
}

// spyNotifier registra las notificaciones emitidas tras el commit.
type spyNotifier struct {
	mu        sync.Mutex
	created   []string
	updated   []string
	paid      []string
	cancelled []string
	lowStock  [][]string
}

func (s *spyNotifier) InvoiceCreated(inv *entity.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, inv.ID)
}

func (s *spyNotifier) InvoiceUpdated(inv *entity.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, inv.ID)
}

func (s *spyNotifier) InvoicePaid(inv *entity.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paid = append(s.paid, inv.ID)
}

func (s *spyNotifier) InvoiceCancelled(inv *entity.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, inv.ID)
}

func (s *spyNotifier) LowStock(orgID string, itemIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(itemIDs) > 0 {
		s.lowStock = append(s.lowStock, itemIDs)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const (
	testOrg  = "org-1"
	testUser = "user-1"
)

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func setup(t *testing.T) (*billing.InvoiceUseCase, *memStore, *spyNotifier) {
	t.Helper()
	store := newMemStore()
	notifier := &spyNotifier{}
	txRunner := &memTxRunner{store: store}
	ledgerUC := ledger.NewStockLedgerUseCase(txRunner)
	uc := billing.NewInvoiceUseCase(txRunner, ledgerUC, &memInvoiceRepo{store: store}, notifier)
	return uc, store, notifier
}

func seedItem(store *memStore, id, stock, price, reorder string) {
	store.items[id] = &entity.InventoryItem{
		ID:           id,
		OrgID:        testOrg,
		Name:         "artículo " + id,
		SKU:          "SKU-" + id,
		StockLevel:   dec(stock),
		ReorderLevel: dec(reorder),
		UnitPrice:    dec(price),
		IsActive:     true,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateInvoice
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateInvoice_DescuentaStockYCalculaTotales(t *testing.T) {
	uc, store, notifier := setup(t)
	seedItem(store, "item-a", "50", "1000", "0")

	inv, err := uc.CreateInvoice(context.Background(), testOrg, testUser, dto.CreateInvoiceRequest{
		CustomerName: "Acme S.A.S.",
		Items: []dto.InvoiceItemRequest{
			{InventoryItemID: "item-a", Quantity: dec("2"), UnitPrice: dec("1000"), TaxRate: dec("0.19")},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, inv)

	assert.Equal(t, entity.InvoiceStatusIssued, inv.Status)
	assert.True(t, dec("2000").Equal(inv.Subtotal))
	assert.True(t, dec("380").Equal(inv.TaxTotal))
	assert.True(t, dec("2380").Equal(inv.GrandTotal))
	assert.NotEmpty(t, inv.Number)

	// El stock bajó y quedó el movimiento SALE referenciando la factura.
	assert.True(t, dec("48").Equal(store.items["item-a"].StockLevel))
	require.Len(t, store.movements, 1)
	assert.Equal(t, inv.ID, store.movements[0].ReferenceID)

	// Cabecera, líneas y notificación post-commit.
	require.Contains(t, store.invoices, inv.ID)
	require.Len(t, store.lines[inv.ID], 1)
	assert.Equal(t, []string{inv.ID}, notifier.created)
	assert.Empty(t, notifier.lowStock)
}

// Atomicidad extremo a extremo: sin stock suficiente no queda factura, ni
// líneas, ni movimientos, ni notificación.
func TestCreateInvoice_SinStockNoDejaNada(t *testing.T) {
	uc, store, notifier := setup(t)
	seedItem(store, "item-a", "1", "1000", "0")

	_, err := uc.CreateInvoice(context.Background(), testOrg, testUser, dto.CreateInvoiceRequest{
		CustomerName: "Acme S.A.S.",
		Items: []dto.InvoiceItemRequest{
			{InventoryItemID: "item-a", Quantity: dec("5"), UnitPrice: dec("1000")},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, dec("1").Equal(store.items["item-a"].StockLevel))
	assert.Empty(t, store.invoices)
	assert.Empty(t, store.movements)
	assert.Empty(t, notifier.created, "una factura rechazada no notifica")
}

// El mismo artículo repetido en dos líneas no puede empujar el stock bajo
// cero: la deducción valida la cantidad consolidada de la factura completa.
func TestCreateInvoice_LineasDuplicadasNoDejanStockNegativo(t *testing.T) {
	uc, store, notifier := setup(t)
	seedItem(store, "item-a", "10", "1000", "0")

	_, err := uc.CreateInvoice(context.Background(), testOrg, testUser, dto.CreateInvoiceRequest{
		CustomerName: "Acme S.A.S.",
		Items: []dto.InvoiceItemRequest{
			{InventoryItemID: "item-a", Quantity: dec("6"), UnitPrice: dec("1000")},
			{InventoryItemID: "item-a", Quantity: dec("6"), UnitPrice: dec("1000")},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, dec("10").Equal(store.items["item-a"].StockLevel), "el stock no cambia y jamás queda negativo")
	assert.Empty(t, store.movements)
	assert.Empty(t, store.invoices)
	assert.Empty(t, notifier.created)
}

// Dentro del stock disponible, la factura conserva sus líneas pero el
// inventario registra un único movimiento consolidado.
func TestCreateInvoice_LineasDuplicadasDentroDelStock(t *testing.T) {
	uc, store, _ := setup(t)
	seedItem(store, "item-a", "10", "1000", "0")

	inv, err := uc.CreateInvoice(context.Background(), testOrg, testUser, dto.CreateInvoiceRequest{
		CustomerName: "Acme S.A.S.",
		Items: []dto.InvoiceItemRequest{
			{InventoryItemID: "item-a", Quantity: dec("3"), UnitPrice: dec("1000")},
			{InventoryItemID: "item-a", Quantity: dec("4"), UnitPrice: dec("1000")},
		},
	})
	require.NoError(t, err)

	assert.True(t, dec("3").Equal(store.items["item-a"].StockLevel))
	require.Len(t, store.lines[inv.ID], 2)
	require.Len(t, store.movements, 1)
	assert.True(t, dec("-7").Equal(store.movements[0].Quantity))
}

// Las líneas libres (sin vínculo a inventario) no pasan por el ledger.
func TestCreateInvoice_LineaLibreNoTocaInventario(t *testing.T) {
	uc, store, notifier := setup(t)

	inv, err := uc.CreateInvoice(context.Background(), testOrg, testUser, dto.CreateInvoiceRequest{
		CustomerName: "Acme S.A.S.",
		Items: []dto.InvoiceItemRequest{
			{Description: "servicio de instalación", Quantity: dec("1"), UnitPrice: dec("50000")},
		},
	})
	require.NoError(t, err)
	assert.True(t, dec("50000").Equal(inv.GrandTotal))
	assert.Empty(t, store.movements)
	assert.Equal(t, []string{inv.ID}, notifier.created)
}

// Precio en cero: la línea hereda el precio vigente del artículo, que queda
// congelado en la línea.
func TestCreateInvoice_PrecioCeroUsaElVigente(t *testing.T) {
	uc, store, _ := setup(t)
	seedItem(store, "item-a", "50", "2500", "0")

	inv, err := uc.CreateInvoice(context.Background(), testOrg, testUser, dto.CreateInvoiceRequest{
		CustomerName: "Acme S.A.S.",
		Items: []dto.InvoiceItemRequest{
			{InventoryItemID: "item-a", Quantity: dec("3")},
		},
	})
	require.NoError(t, err)
	assert.True(t, dec("7500").Equal(inv.Subtotal))
	require.Len(t, store.lines[inv.ID], 1)
	assert.True(t, dec("2500").Equal(store.lines[inv.ID][0].UnitPrice))
}

func TestCreateInvoice_NotificaStockBajo(t *testing.T) {
	uc, store, notifier := setup(t)
	seedItem(store, "item-a", "10", "1000", "5")

	_, err := uc.CreateInvoice(context.Background(), testOrg, testUser, dto.CreateInvoiceRequest{
		CustomerName: "Acme S.A.S.",
		Items: []dto.InvoiceItemRequest{
			{InventoryItemID: "item-a", Quantity: dec("6"), UnitPrice: dec("1000")},
		},
	})
	require.NoError(t, err)
	require.Len(t, notifier.lowStock, 1)
	assert.Equal(t, []string{"item-a"}, notifier.lowStock[0])
}

func TestCreateInvoice_ValidaEntrada(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()

	_, err := uc.CreateInvoice(ctx, testOrg, testUser, dto.CreateInvoiceRequest{CustomerName: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas debe rechazarse")

	_, err = uc.CreateInvoice(ctx, testOrg, testUser, dto.CreateInvoiceRequest{
		CustomerName: "x",
		Items:        []dto.InvoiceItemRequest{{InventoryItemID: "item-a", Quantity: dec("0")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero debe rechazarse")
}

// ──────────────────────────────────────────────────────────────────────────────
// CancelInvoice
// ──────────────────────────────────────────────────────────────────────────────

func TestCancelInvoice_RestauraYEvitaDobleAnulacion(t *testing.T) {
	uc, store, notifier := setup(t)
	seedItem(store, "item-a", "50", "1000", "0")
	ctx := context.Background()

	inv, err := uc.CreateInvoice(ctx, testOrg, testUser, dto.CreateInvoiceRequest{
		CustomerName: "Acme S.A.S.",
		Items: []dto.InvoiceItemRequest{
			{InventoryItemID: "item-a", Quantity: dec("10"), UnitPrice: dec("1000")},
		},
	})
	require.NoError(t, err)
	require.True(t, dec("40").Equal(store.items["item-a"].StockLevel))

	cancelled, err := uc.CancelInvoice(ctx, inv.ID, testOrg, testUser)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.True(t, dec("50").Equal(store.items["item-a"].StockLevel), "el stock regresa al nivel original")
	assert.Equal(t, []string{inv.ID}, notifier.cancelled)

	// Segunda anulación: conflicto, y el stock NO se acredita de nuevo.
	_, err = uc.CancelInvoice(ctx, inv.ID, testOrg, testUser)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, dec("50").Equal(store.items["item-a"].StockLevel), "no debe haber doble restauración")
	assert.Len(t, notifier.cancelled, 1)
}

func TestCancelInvoice_FacturaInexistente(t *testing.T) {
	uc, _, _ := setup(t)
	_, err := uc.CancelInvoice(context.Background(), "no-existe", testOrg, testUser)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Anulaciones concurrentes: el guard de estado se evalúa con la fila de la
// cabecera bloqueada dentro de la transacción, así que exactamente una gana
// y el stock se acredita una sola vez.
func TestCancelInvoice_ConcurrenteRestauraUnaSolaVez(t *testing.T) {
	uc, store, notifier := setup(t)
	seedItem(store, "item-a", "50", "1000", "0")
	ctx := context.Background()

	inv, err := uc.CreateInvoice(ctx, testOrg, testUser, dto.CreateInvoiceRequest{
		CustomerName: "Acme S.A.S.",
		Items: []dto.InvoiceItemRequest{
			{InventoryItemID: "item-a", Quantity: dec("10"), UnitPrice: dec("1000")},
		},
	})
	require.NoError(t, err)
	movementsAfterCreate := len(store.movements)

	const cancels = 8
	errs := make(chan error, cancels)
	var wg sync.WaitGroup
	for i := 0; i < cancels; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.CancelInvoice(ctx, inv.ID, testOrg, testUser)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, domain.ErrConflict):
			conflicts++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, won, "exactamente una anulación debe ganar")
	assert.Equal(t, cancels-1, conflicts)

	assert.True(t, dec("50").Equal(store.items["item-a"].StockLevel), "el stock regresa al nivel original una sola vez")
	assert.Len(t, store.movements, movementsAfterCreate+1, "un único RETURN registrado")
	assert.Len(t, notifier.cancelled, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateInvoice
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateInvoice_EditaCabeceraYNotifica(t *testing.T) {
	uc, store, notifier := setup(t)
	seedItem(store, "item-a", "50", "1000", "0")
	ctx := context.Background()

	inv, err := uc.CreateInvoice(ctx, testOrg, testUser, dto.CreateInvoiceRequest{
		CustomerName: "Acme S.A.S.",
		Items: []dto.InvoiceItemRequest{
			{InventoryItemID: "item-a", Quantity: dec("1"), UnitPrice: dec("1000")},
		},
	})
	require.NoError(t, err)

	updated, err := uc.UpdateInvoice(ctx, inv.ID, testOrg, dto.UpdateInvoiceRequest{CustomerName: "Beta Ltda."})
	require.NoError(t, err)
	assert.Equal(t, "Beta Ltda.", updated.CustomerName)
	assert.Equal(t, inv.Number, updated.Number, "el número no enviado no cambia")
	assert.Equal(t, "Beta Ltda.", store.invoices[inv.ID].CustomerName)
	assert.Equal(t, []string{inv.ID}, notifier.updated)

	// La edición de cabecera no toca inventario ni líneas.
	assert.True(t, dec("49").Equal(store.items["item-a"].StockLevel))
	assert.Len(t, store.movements, 1)
	assert.Len(t, store.lines[inv.ID], 1)
}

func TestUpdateInvoice_AnuladaNoSeEdita(t *testing.T) {
	uc, store, notifier := setup(t)
	seedItem(store, "item-a", "50", "1000", "0")
	ctx := context.Background()

	inv, err := uc.CreateInvoice(ctx, testOrg, testUser, dto.CreateInvoiceRequest{
		CustomerName: "Acme S.A.S.",
		Items: []dto.InvoiceItemRequest{
			{InventoryItemID: "item-a", Quantity: dec("1"), UnitPrice: dec("1000")},
		},
	})
	require.NoError(t, err)
	_, err = uc.CancelInvoice(ctx, inv.ID, testOrg, testUser)
	require.NoError(t, err)

	_, err = uc.UpdateInvoice(ctx, inv.ID, testOrg, dto.UpdateInvoiceRequest{CustomerName: "Beta Ltda."})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "Acme S.A.S.", store.invoices[inv.ID].CustomerName)
	assert.Empty(t, notifier.updated)
}

func TestUpdateInvoice_ValidaEntrada(t *testing.T) {
	uc, _, _ := setup(t)
	_, err := uc.UpdateInvoice(context.Background(), "inv-x", testOrg, dto.UpdateInvoiceRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin campos que actualizar debe rechazarse")

	_, err = uc.UpdateInvoice(context.Background(), "no-existe", testOrg, dto.UpdateInvoiceRequest{CustomerName: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// PayInvoice
// ──────────────────────────────────────────────────────────────────────────────

func TestPayInvoice_SoloDesdeEmitida(t *testing.T) {
	uc, store, notifier := setup(t)
	seedItem(store, "item-a", "50", "1000", "0")
	ctx := context.Background()

	inv, err := uc.CreateInvoice(ctx, testOrg, testUser, dto.CreateInvoiceRequest{
		CustomerName: "Acme S.A.S.",
		Items: []dto.InvoiceItemRequest{
			{InventoryItemID: "item-a", Quantity: dec("1"), UnitPrice: dec("1000")},
		},
	})
	require.NoError(t, err)

	paid, err := uc.PayInvoice(ctx, inv.ID, testOrg)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, []string{inv.ID}, notifier.paid)

	// Pagar dos veces: conflicto.
	_, err = uc.PayInvoice(ctx, inv.ID, testOrg)
	assert.ErrorIs(t, err, domain.ErrConflict)
}
