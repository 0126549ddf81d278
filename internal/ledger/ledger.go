// Package ledger is the single writer of product stock.
package ledger

import (
	"context"
	"fmt"
	"math"
	"sort"

	"saas-commerce/internal/model"
	"saas-commerce/internal/repository"

	"github.com/google/uuid"
)

// Result is the post-delta state of one product.
type Result struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	NewStock  int       `json:"new_stock"`
	Minimum   int       `json:"stock_minimum"`
	LowStock  bool      `json:"low_stock"`
}

type Ledger struct{}

func New() *Ledger {
	return &Ledger{}
}

// ApplyDelta applies one signed quantity change inside tx.
func (l *Ledger) ApplyDelta(ctx context.Context, tx repository.Tx, tenantID, productID uuid.UUID, delta int, actor string) (*Result, error) {
	results, err := l.ApplyDeltas(ctx, tx, tenantID, []model.StockDelta{{ProductID: productID, Delta: delta}}, actor)
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// ApplyDeltas applies the whole batch or nothing. Deltas for the same product are
// merged first; rows are locked in id order so concurrent batches cannot deadlock.
// Every product that would go negative is reported in one InsufficientStockError.
func (l *Ledger) ApplyDeltas(ctx context.Context, tx repository.Tx, tenantID uuid.UUID, deltas []model.StockDelta, actor string) ([]Result, error) {
	if len(deltas) == 0 {
		return nil, nil
	}

	merged := make(map[uuid.UUID]int, len(deltas))
	for _, d := range deltas {
		sum, ok := addStock(merged[d.ProductID], d.Delta)
		if !ok {
			return nil, model.ValidationError("stock change for product %s is out of range", d.ProductID)
		}
		merged[d.ProductID] = sum
	}
	ids := make([]uuid.UUID, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	products, err := tx.Products().LockForUpdate(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	newStock := make(map[uuid.UUID]int, len(ids))
	var shortages []model.StockShortage
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, model.NotFoundError("product", id)
		}
		next, ok := addStock(p.StockCurrent, merged[id])
		if !ok {
			return nil, model.ValidationError("stock of '%s' would be out of range", p.Name)
		}
		newStock[id] = next
		if next < 0 {
			shortages = append(shortages, model.StockShortage{
				ProductID: id,
				Name:      p.Name,
				Available: p.StockCurrent,
				Requested: -merged[id],
			})
		}
	}
	if len(shortages) > 0 {
		return nil, &model.InsufficientStockError{Shortages: shortages}
	}

	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		p := byID[id]
		if merged[id] != 0 {
			if err := tx.Products().UpdateStock(ctx, tenantID, id, newStock[id], actor); err != nil {
				return nil, fmt.Errorf("update stock of %s: %w", id, err)
			}
		}
		results = append(results, Result{
			ProductID: id,
			Name:      p.Name,
			SKU:       p.SKU,
			NewStock:  newStock[id],
			Minimum:   p.StockMinimum,
			LowStock:  newStock[id] <= p.StockMinimum,
		})
	}
	return results, nil
}

// addStock adds two quantities and reports false when the sum leaves
// [-MaxInt, MaxInt]. The symmetric range keeps the negated value representable.
func addStock(a, b int) (int, bool) {
	if (b > 0 && a > math.MaxInt-b) || (b < 0 && a < -math.MaxInt-b) {
		return 0, false
	}
	return a + b, true
}
