package memory

import (
	"context"
	"errors"
	"sort"

	"saas-commerce/internal/model"
	"saas-commerce/internal/repository"

	"github.com/google/uuid"
)

func cloneSale(s model.Sale) model.Sale {
	s.Lines = append([]model.SaleLine(nil), s.Lines...)
	return s
}

func clonePurchase(p model.Purchase) model.Purchase {
	p.Lines = append([]model.PurchaseLine(nil), p.Lines...)
	return p
}

type productRepo struct {
	s  *Store
	tx *tx
}

func (r *productRepo) get(tenantID, id uuid.UUID) (model.Product, bool) {
	if r.tx != nil {
		if p, ok := r.tx.products[id]; ok {
			return p, p.TenantID == tenantID
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	return p, ok && p.TenantID == tenantID
}

func (r *productRepo) Create(_ context.Context, product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.Status == "" {
		product.Status = model.ProductActive
	}
	if r.tx != nil {
		r.tx.products[product.ID] = *product
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[product.ID] = *product
	return nil
}

func (r *productRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.Product, error) {
	p, ok := r.get(tenantID, id)
	if !ok {
		return nil, model.NotFoundError("product", id)
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]model.Product, error) {
	products := make([]model.Product, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		p, err := r.FindByID(ctx, tenantID, id)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}

func (r *productRepo) LockForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]model.Product, error) {
	if r.tx != nil {
		r.tx.lock(ids...)
	}
	products, err := r.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[uuid.UUID]bool, len(products))
	for _, p := range products {
		found[p.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, model.NotFoundError("product", id)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID.String() < products[j].ID.String() })
	return products, nil
}

func (r *productRepo) UpdateStock(_ context.Context, tenantID, id uuid.UUID, newStock int, updatedBy string) error {
	p, ok := r.get(tenantID, id)
	if !ok {
		return model.NotFoundError("product", id)
	}
	p.StockCurrent = newStock
	p.UpdatedBy = updatedBy
	if r.tx != nil {
		r.tx.products[id] = p
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[id] = p
	return nil
}

type saleRepo struct {
	s  *Store
	tx *tx
}

func (r *saleRepo) put(sale model.Sale) {
	if r.tx != nil {
		r.tx.sales[sale.ID] = cloneSale(sale)
		return
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sales[sale.ID] = cloneSale(sale)
}

func (r *saleRepo) get(tenantID, id uuid.UUID) (model.Sale, bool) {
	if r.tx != nil {
		if s, ok := r.tx.sales[id]; ok {
			return cloneSale(s), s.TenantID == tenantID
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	s, ok := r.s.sales[id]
	return cloneSale(s), ok && s.TenantID == tenantID
}

func (r *saleRepo) Create(_ context.Context, sale *model.Sale) error {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	r.put(*sale)
	return nil
}

func (r *saleRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.Sale, error) {
	sale, ok := r.get(tenantID, id)
	if !ok {
		return nil, model.NotFoundError("sale", id)
	}
	return &sale, nil
}

func (r *saleRepo) LockForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error) {
	if r.tx != nil {
		r.tx.lock(id)
	}
	return r.FindByID(ctx, tenantID, id)
}

func (r *saleRepo) UpdateState(_ context.Context, sale *model.Sale) error {
	existing, ok := r.get(sale.TenantID, sale.ID)
	if !ok {
		return model.NotFoundError("sale", sale.ID)
	}
	updated := *sale
	updated.Lines = existing.Lines
	updated.Total = existing.Total
	updated.TaxAmount = existing.TaxAmount
	r.put(updated)
	return nil
}

func (r *saleRepo) FindAll(_ context.Context, tenantID uuid.UUID, filter repository.SaleFilter) ([]model.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sales := make([]model.Sale, 0)
	for _, s := range r.s.sales {
		if s.TenantID != tenantID {
			continue
		}
		if filter.Channel != "" && s.Channel != filter.Channel {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.From != nil && s.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !s.CreatedAt.Before(*filter.To) {
			continue
		}
		sales = append(sales, cloneSale(s))
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].CreatedAt.After(sales[j].CreatedAt) })
	if filter.Limit > 0 && len(sales) > filter.Limit {
		sales = sales[:filter.Limit]
	}
	return sales, nil
}

type purchaseRepo struct {
	s  *Store
	tx *tx
}

func (r *purchaseRepo) Create(_ context.Context, purchase *model.Purchase) error {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	if r.tx != nil {
		r.tx.purchases[purchase.ID] = clonePurchase(*purchase)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.purchases[purchase.ID] = clonePurchase(*purchase)
	return nil
}

func (r *purchaseRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.Purchase, error) {
	if r.tx != nil {
		if p, ok := r.tx.purchases[id]; ok && p.TenantID == tenantID {
			p = clonePurchase(p)
			return &p, nil
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.purchases[id]
	if !ok || p.TenantID != tenantID {
		return nil, model.NotFoundError("purchase", id)
	}
	p = clonePurchase(p)
	return &p, nil
}

func (r *purchaseRepo) FindAll(_ context.Context, tenantID uuid.UUID, filter repository.PurchaseFilter) ([]model.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	purchases := make([]model.Purchase, 0)
	for _, p := range r.s.purchases {
		if p.TenantID != tenantID {
			continue
		}
		if filter.SupplierID != nil && (p.SupplierID == nil || *p.SupplierID != *filter.SupplierID) {
			continue
		}
		if filter.From != nil && p.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !p.CreatedAt.Before(*filter.To) {
			continue
		}
		purchases = append(purchases, clonePurchase(p))
	}
	sort.Slice(purchases, func(i, j int) bool { return purchases[i].CreatedAt.After(purchases[j].CreatedAt) })
	if filter.Limit > 0 && len(purchases) > filter.Limit {
		purchases = purchases[:filter.Limit]
	}
	return purchases, nil
}

type fiscalRepo struct {
	s  *Store
	tx *tx
}

// NextNumber uses the tenant id as the row lock of its sequence.
func (r *fiscalRepo) NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	if r.tx == nil {
		var number string
		err := r.s.Do(ctx, func(tx repository.Tx) error {
			var err error
			number, err = tx.Fiscal().NextNumber(ctx, tenantID)
			return err
		})
		return number, err
	}

	r.tx.lock(tenantID)
	seq, ok := r.tx.fiscal[tenantID]
	if !ok {
		r.s.mu.RLock()
		seq, ok = r.s.fiscal[tenantID]
		r.s.mu.RUnlock()
	}
	if !ok {
		seq = model.FiscalSequence{TenantID: tenantID, Series: r.s.fiscalSeries, NextNumber: 1}
	}
	number := seq.NextNumber
	seq.NextNumber++
	r.tx.fiscal[tenantID] = seq
	return model.FormatFiscalNumber(seq.Series, number), nil
}

type tenantRepo struct {
	s *Store
}

func (r *tenantRepo) FindProfile(_ context.Context, tenantID uuid.UUID) (*model.TenantProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[tenantID]
	if !ok {
		return nil, model.NotFoundError("tenant", tenantID)
	}
	return &p, nil
}

type customerRepo struct {
	s *Store
}

func (r *customerRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, model.NotFoundError("customer", id)
	}
	return &c, nil
}
