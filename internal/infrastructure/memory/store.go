// Package memory implementa los puertos de stock y ledger en memoria.
// Se usa con DB_DRIVER=memory para desarrollo y como doble de pruebas de los casos de uso.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ inventory.TxRunner                 = (*Store)(nil)
	_ repository.StockableItemRepository = (*itemRepo)(nil)
	_ repository.StockMovementRepository = (*movementRepo)(nil)
)

// Store estado compartido. Una transacción toma el mutex completo (equivale a bloquear toda fila)
// y al fallar restaura el snapshot tomado al inicio.
type Store struct {
	mu        sync.Mutex
	items     map[string]entity.StockableItem
	movements []entity.StockMovement
	now       func() time.Time

	// FailNextCreate hace fallar el próximo Create (simula caída de la base en pruebas).
	FailNextCreate error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		items: make(map[string]entity.StockableItem),
		now:   time.Now,
	}
}

// SetClock reemplaza el reloj usado para CreatedAt.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Put inserta o reemplaza un ítem.
func (s *Store) Put(item entity.StockableItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.Key()] = item
}

// AppendMovement agrega un movimiento sin pasar por el motor (semillas e inconsistencias en pruebas).
func (s *Store) AppendMovement(m entity.StockMovement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	s.movements = append(s.movements, m)
}

// Movements copia del ledger en orden de inserción.
func (s *Store) Movements() []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.StockMovement(nil), s.movements...)
}

// Items repositorio de ítems fuera de transacción.
func (s *Store) Items() repository.StockableItemRepository {
	return &itemRepo{s: s}
}

// MovementRepo repositorio del ledger fuera de transacción.
func (s *Store) MovementRepo() repository.StockMovementRepository {
	return &movementRepo{s: s}
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	itemRepo repository.StockableItemRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make(map[string]entity.StockableItem, len(s.items))
	for k, v := range s.items {
		items[k] = v
	}
	n := len(s.movements)

	if err := fn(&itemRepo{s: s, inTx: true}, &movementRepo{s: s, inTx: true}); err != nil {
		s.items = items
		s.movements = s.movements[:n]
		return err
	}
	return nil
}

func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type itemRepo struct {
	s    *Store
	inTx bool
}

func (r *itemRepo) Get(_ context.Context, productID, variationID string) (*entity.StockableItem, error) {
	defer r.s.lock(r.inTx)()
	it, ok := r.s.items[entity.ItemKey(productID, variationID)]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *itemRepo) GetForUpdate(ctx context.Context, productID, variationID string) (*entity.StockableItem, error) {
	return r.Get(ctx, productID, variationID)
}

func (r *itemRepo) UpdateStock(_ context.Context, productID, variationID string, quantity int) error {
	defer r.s.lock(r.inTx)()
	k := entity.ItemKey(productID, variationID)
	it, ok := r.s.items[k]
	if !ok {
		return domain.ErrNotFound
	}
	if quantity < 0 {
		return domain.ErrNegativeResult
	}
	it.StockQuantity = quantity
	it.UpdatedAt = r.s.now()
	r.s.items[k] = it
	return nil
}

func (r *itemRepo) UpdateCostPrice(_ context.Context, productID, variationID string, cost decimal.Decimal) error {
	defer r.s.lock(r.inTx)()
	k := entity.ItemKey(productID, variationID)
	it, ok := r.s.items[k]
	if !ok {
		return domain.ErrNotFound
	}
	it.CostPrice = &cost
	r.s.items[k] = it
	return nil
}

// ListActive igual que en PostgreSQL: un producto con variaciones no es stockeable por sí mismo,
// y una variación de un producto inactivo queda fuera.
func (r *itemRepo) ListActive(_ context.Context) ([]*entity.StockableItem, error) {
	defer r.s.lock(r.inTx)()
	withVariations := make(map[string]bool)
	for _, it := range r.s.items {
		if it.VariationID != "" {
			withVariations[it.ProductID] = true
		}
	}
	var out []*entity.StockableItem
	for _, it := range r.s.items {
		if !it.IsActive {
			continue
		}
		if it.VariationID == "" && withVariations[it.ProductID] {
			continue
		}
		if parent, ok := r.s.items[entity.ItemKey(it.ProductID, "")]; ok && it.VariationID != "" && !parent.IsActive {
			continue
		}
		it := it
		out = append(out, &it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

type movementRepo struct {
	s    *Store
	inTx bool
}

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	defer r.s.lock(r.inTx)()
	if err := r.s.FailNextCreate; err != nil {
		r.s.FailNextCreate = nil
		return err
	}
	if m.QuantityAfter < 0 || m.QuantityBefore < 0 || m.QuantityAfter != m.QuantityBefore+m.Quantity {
		return domain.ErrNegativeResult
	}
	m.ID = uuid.NewString()
	m.CreatedAt = r.s.now()
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *movementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	defer r.s.lock(r.inTx)()
	for i := range r.s.movements {
		if r.s.movements[i].ID == id {
			m := r.s.movements[i]
			return &m, nil
		}
	}
	return nil, nil
}

func (r *movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	defer r.s.lock(r.inTx)()
	list := r.filter(f)
	if f.Ascending {
		sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	} else {
		// Mismo instante: el último insertado primero
		for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
			list[i], list[j] = list[j], list[i]
		}
		sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	}
	if f.Offset >= len(list) {
		return []*entity.StockMovement{}, nil
	}
	list = list[f.Offset:]
	if f.Limit > 0 && f.Limit < len(list) {
		list = list[:f.Limit]
	}
	return list, nil
}

func (r *movementRepo) Count(_ context.Context, f repository.MovementFilter) (int, error) {
	defer r.s.lock(r.inTx)()
	return len(r.filter(f)), nil
}

func (r *movementRepo) ListChain(_ context.Context, productID, variationID string) ([]*entity.StockMovement, error) {
	defer r.s.lock(r.inTx)()
	return r.filter(repository.MovementFilter{ProductID: productID, VariationID: variationID}), nil
}

// filter devuelve copias en orden de inserción.
func (r *movementRepo) filter(f repository.MovementFilter) []*entity.StockMovement {
	var out []*entity.StockMovement
	for i := range r.s.movements {
		m := r.s.movements[i]
		if m.ProductID != f.ProductID {
			continue
		}
		switch {
		case f.VariationID != "":
			if m.VariationID != f.VariationID {
				continue
			}
		case !f.AllVariations:
			if m.VariationID != "" {
				continue
			}
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		out = append(out, &m)
	}
	return out
}
