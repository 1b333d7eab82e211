package inventory_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// ValidateAdjustment
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateAdjustment_Escenarios(t *testing.T) {
	cases := []struct {
		name     string
		current  int
		quantity int
		op       entity.Operation
		valid    bool
		newStock int
		kind     error
	}{
		{"resta mayor al stock", 5, 10, entity.OperationSub, false, 0, domain.ErrNegativeResult},
		{"suma de cero", 5, 0, entity.OperationAdd, false, 0, domain.ErrNonPositiveDelta},
		{"set a cero es quiebre explícito", 5, 0, entity.OperationSet, true, 0, nil},
		{"suma válida", 20, 15, entity.OperationAdd, true, 35, nil},
		{"resta exacta deja cero", 7, 7, entity.OperationSub, true, 0, nil},
		{"resta de cero", 5, 0, entity.OperationSub, false, 0, domain.ErrNonPositiveDelta},
		{"resta negativa no deja negativo", 5, -3, entity.OperationSub, false, 0, domain.ErrNonPositiveDelta},
		{"suma negativa que deja negativo", 5, -10, entity.OperationAdd, false, 0, domain.ErrNegativeResult},
		{"set negativo cae en la primera regla", 5, -3, entity.OperationSet, false, 0, domain.ErrNegativeResult},
		{"set por encima del actual", 5, 40, entity.OperationSet, true, 40, nil},
		{"operación desconocida", 5, 1, entity.Operation("mul"), false, 0, domain.ErrInvalidOperation},
		{"suma de math.MaxInt no desborda a negativo", 10, math.MaxInt, entity.OperationAdd, false, 0, domain.ErrInvalidInput},
		{"suma fuera de rango INTEGER", 0, 3_000_000_000, entity.OperationAdd, false, 0, domain.ErrInvalidInput},
		{"resta fuera de rango INTEGER", 5, 3_000_000_000, entity.OperationSub, false, 0, domain.ErrInvalidInput},
		{"set por encima del máximo", 0, inventory.MaxStockQuantity + 1, entity.OperationSet, false, 0, domain.ErrInvalidInput},
		{"suma que supera el máximo", inventory.MaxStockQuantity, 1, entity.OperationAdd, false, 0, domain.ErrInvalidInput},
		{"set exactamente en el máximo", 0, inventory.MaxStockQuantity, entity.OperationSet, true, inventory.MaxStockQuantity, nil},
		{"suma que llega exactamente al máximo", inventory.MaxStockQuantity - 5, 5, entity.OperationAdd, true, inventory.MaxStockQuantity, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := inventory.ValidateAdjustment(tc.current, tc.quantity, tc.op)
			assert.Equal(t, tc.valid, v.Valid)
			if tc.valid {
				assert.Equal(t, tc.newStock, v.NewStock)
				assert.Empty(t, v.Message)
				assert.NoError(t, v.Err)
				return
			}
			require.Error(t, v.Err)
			assert.True(t, errors.Is(v.Err, tc.kind), "se esperaba %v, se obtuvo %v", tc.kind, v.Err)
			assert.NotEmpty(t, v.Message)
			assert.Equal(t, v.Message, v.Err.Error())
		})
	}
}

func TestValidateAdjustment_MensajeReportaValorNegativo(t *testing.T) {
	v := inventory.ValidateAdjustment(5, 10, entity.OperationSub)
	require.False(t, v.Valid)
	assert.Contains(t, v.Message, "-5")

	var adjErr *inventory.AdjustmentError
	require.True(t, errors.As(v.Err, &adjErr))
	assert.Equal(t, -5, adjErr.Attempted)
}

func TestValidateAdjustment_FueraDeRangoNoSeReportaComoNegativo(t *testing.T) {
	v := inventory.ValidateAdjustment(10, math.MaxInt, entity.OperationAdd)
	require.False(t, v.Valid)
	assert.False(t, errors.Is(v.Err, domain.ErrNegativeResult))
	assert.NotContains(t, v.Message, "negativo")

	var adjErr *inventory.AdjustmentError
	require.True(t, errors.As(v.Err, &adjErr))
	assert.Equal(t, math.MaxInt, adjErr.Attempted)
}

// Invariantes sobre una grilla de entradas: valid implica stock >= 0 y las reglas de cantidad.
func TestValidateAdjustment_Invariantes(t *testing.T) {
	ops := []entity.Operation{entity.OperationSet, entity.OperationAdd, entity.OperationSub}
	for current := 0; current <= 30; current++ {
		for quantity := -30; quantity <= 30; quantity++ {
			for _, op := range ops {
				v := inventory.ValidateAdjustment(current, quantity, op)
				again := inventory.ValidateAdjustment(current, quantity, op)
				require.Equal(t, v, again, "sin estado oculto: %d %s %d", current, op, quantity)
				if !v.Valid {
					continue
				}
				require.GreaterOrEqual(t, v.NewStock, 0)
				if op.IsDelta() {
					require.Greater(t, quantity, 0)
				} else {
					require.GreaterOrEqual(t, quantity, 0)
				}
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// ClassifyMovement / BuildMovementRecord
// ──────────────────────────────────────────────────────────────────────────────

func TestClassifyMovement(t *testing.T) {
	assert.Equal(t, entity.MovementTypeIn, inventory.ClassifyMovement(entity.OperationAdd, 3))
	assert.Equal(t, entity.MovementTypeOut, inventory.ClassifyMovement(entity.OperationSub, -3))
	assert.Equal(t, entity.MovementTypeAdjustment, inventory.ClassifyMovement(entity.OperationSet, 50))
	assert.Equal(t, entity.MovementTypeAdjustment, inventory.ClassifyMovement(entity.OperationSet, -50))
}

func TestBuildMovementRecord_SumaValida(t *testing.T) {
	item := entity.StockableItem{ProductID: "p-1", StockQuantity: 20}
	req := entity.StockAdjustmentRequest{
		ProductID:     "p-1",
		Operation:     entity.OperationAdd,
		Quantity:      15,
		Reason:        entity.ReasonRestock,
		Notes:         "proveedor A",
		ReferenceType: "order",
		ReferenceID:   "po-77",
		RequestedBy:   "u-1",
	}
	v := inventory.ValidateAdjustment(item.StockQuantity, req.Quantity, req.Operation)
	require.True(t, v.Valid)
	assert.Equal(t, 35, v.NewStock)

	mov, err := inventory.BuildMovementRecord(item, req, v)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeIn, mov.Type)
	assert.Equal(t, 15, mov.Quantity)
	assert.Equal(t, 20, mov.QuantityBefore)
	assert.Equal(t, 35, mov.QuantityAfter)
	assert.Equal(t, entity.ReasonRestock, mov.Reason)
	assert.Equal(t, "po-77", mov.ReferenceID)
	assert.Equal(t, "u-1", mov.CreatedBy)
	assert.Empty(t, mov.ID, "el ID lo asigna la persistencia")
	assert.True(t, mov.CreatedAt.IsZero(), "el timestamp lo asigna la persistencia")
}

func TestBuildMovementRecord_SetEsAjusteConDeltaFirmado(t *testing.T) {
	item := entity.StockableItem{ProductID: "p-1", VariationID: "v-2", StockQuantity: 12}
	req := entity.StockAdjustmentRequest{ProductID: "p-1", VariationID: "v-2", Operation: entity.OperationSet, Quantity: 4, Reason: entity.ReasonAdjustment}
	v := inventory.ValidateAdjustment(item.StockQuantity, req.Quantity, req.Operation)

	mov, err := inventory.BuildMovementRecord(item, req, v)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeAdjustment, mov.Type)
	assert.Equal(t, -8, mov.Quantity)
	assert.Equal(t, mov.QuantityAfter-mov.QuantityBefore, mov.Quantity)
}

func TestBuildMovementRecord_RechazaValidacionInvalida(t *testing.T) {
	item := entity.StockableItem{ProductID: "p-1", StockQuantity: 5}
	req := entity.StockAdjustmentRequest{ProductID: "p-1", Operation: entity.OperationSub, Quantity: 10}
	v := inventory.ValidateAdjustment(item.StockQuantity, req.Quantity, req.Operation)

	_, err := inventory.BuildMovementRecord(item, req, v)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBuildMovementRecord_RechazaValidacionDeOtroStock(t *testing.T) {
	req := entity.StockAdjustmentRequest{ProductID: "p-1", Operation: entity.OperationAdd, Quantity: 2}
	stale := inventory.ValidateAdjustment(3, req.Quantity, req.Operation)

	_, err := inventory.BuildMovementRecord(entity.StockableItem{ProductID: "p-1", StockQuantity: 9}, req, stale)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = inventory.BuildMovementRecord(entity.StockableItem{ProductID: "otro", StockQuantity: 3}, req, stale)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// VerifyChain
// ──────────────────────────────────────────────────────────────────────────────

func TestVerifyChain_EncadenaMovimientosAceptados(t *testing.T) {
	item := entity.StockableItem{ProductID: "p-1", StockQuantity: 10}
	steps := []entity.StockAdjustmentRequest{
		{ProductID: "p-1", Operation: entity.OperationAdd, Quantity: 5},
		{ProductID: "p-1", Operation: entity.OperationSub, Quantity: 12},
		{ProductID: "p-1", Operation: entity.OperationSet, Quantity: 30},
		{ProductID: "p-1", Operation: entity.OperationSub, Quantity: 30},
	}
	var ledger []entity.StockMovement
	for _, req := range steps {
		v := inventory.ValidateAdjustment(item.StockQuantity, req.Quantity, req.Operation)
		require.True(t, v.Valid)
		mov, err := inventory.BuildMovementRecord(item, req, v)
		require.NoError(t, err)
		ledger = append(ledger, mov)
		item.StockQuantity = v.NewStock
	}

	final, err := inventory.VerifyChain(10, ledger)
	require.NoError(t, err)
	assert.Equal(t, item.StockQuantity, final)

	sum := 10
	for _, m := range ledger {
		sum += m.Quantity
	}
	assert.Equal(t, final, sum, "sumar deltas sobre el stock inicial reproduce el final")
}

func TestVerifyChain_DetectaHueco(t *testing.T) {
	ledger := []entity.StockMovement{
		{ID: "m1", Quantity: 5, QuantityBefore: 0, QuantityAfter: 5},
		{ID: "m2", Quantity: -2, QuantityBefore: 4, QuantityAfter: 2},
	}
	final, err := inventory.VerifyChain(0, ledger)
	assert.ErrorIs(t, err, domain.ErrBrokenLedgerChain)
	assert.Equal(t, 5, final)
}

func TestVerifyChain_DetectaDeltaInconsistente(t *testing.T) {
	ledger := []entity.StockMovement{{ID: "m1", Quantity: 3, QuantityBefore: 0, QuantityAfter: 5}}
	_, err := inventory.VerifyChain(0, ledger)
	assert.ErrorIs(t, err, domain.ErrBrokenLedgerChain)
}
