package memory

import (
	"context"
	"sort"
	"time"

	"saas-commerce/internal/model"
	"saas-commerce/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type dashboardRepo struct {
	s *Store
}

func (r *dashboardRepo) GetStockMovement(_ context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]repository.StockMovementData, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byDate := map[string]*repository.StockMovementData{}
	get := func(t time.Time) *repository.StockMovementData {
		date := t.Format("2006-01-02")
		if d, ok := byDate[date]; ok {
			return d
		}
		d := &repository.StockMovementData{Date: date}
		byDate[date] = d
		return d
	}
	inRange := func(t time.Time) bool {
		return !t.Before(startDate) && !t.After(endDate)
	}

	for _, p := range r.s.purchases {
		if p.TenantID != tenantID || !inRange(p.CreatedAt) {
			continue
		}
		for _, l := range p.Lines {
			get(p.CreatedAt).Inbound += l.Quantity
		}
	}
	for _, s := range r.s.sales {
		if s.TenantID != tenantID || !s.StockApplied || !inRange(s.CreatedAt) {
			continue
		}
		for _, l := range s.Lines {
			get(s.CreatedAt).Outbound += l.Quantity
		}
	}

	results := make([]repository.StockMovementData, 0, len(byDate))
	for _, d := range byDate {
		results = append(results, *d)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results, nil
}

func (r *dashboardRepo) GetDashboardStats(_ context.Context, tenantID uuid.UUID) (*repository.DashboardStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var stats repository.DashboardStats
	valuation := decimal.Zero
	for _, p := range r.s.products {
		if p.TenantID != tenantID {
			continue
		}
		stats.TotalProducts++
		if p.IsActive() && p.IsLowStock() {
			stats.LowStockCount++
		}
		valuation = valuation.Add(p.Price.Mul(decimal.NewFromInt(int64(p.StockCurrent))))
	}

	paid := decimal.Zero
	for _, s := range r.s.sales {
		if s.TenantID == tenantID && s.Status == model.SalePaid {
			paid = paid.Add(s.Total)
		}
	}

	stats.TotalValuation = valuation.StringFixed(2)
	stats.PaidSalesTotal = paid.StringFixed(2)
	return &stats, nil
}
