package repository

import (
	"context"
	"sort"
	"time"

	"saas-commerce/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

type dailyQuantity struct {
	Date     string
	Quantity int
}

// GetStockMovement aggregates purchase lines (inbound) and the lines of sales that
// currently hold stock (outbound) per day.
func (r *dashboardRepo) GetStockMovement(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]StockMovementData, error) {
	db := r.db.WithContext(ctx)

	var inbound []dailyQuantity
	err := db.Table("purchase_lines").
		Select("TO_CHAR(DATE(purchases.created_at), 'YYYY-MM-DD') AS date, COALESCE(SUM(purchase_lines.quantity), 0) AS quantity").
		Joins("JOIN purchases ON purchases.id = purchase_lines.purchase_id").
		Where("purchases.tenant_id = ? AND purchases.created_at BETWEEN ? AND ?", tenantID, startDate, endDate).
		Group("DATE(purchases.created_at)").
		Scan(&inbound).Error
	if err != nil {
		return nil, err
	}

	var outbound []dailyQuantity
	err = db.Table("sale_lines").
		Select("TO_CHAR(DATE(sales.created_at), 'YYYY-MM-DD') AS date, COALESCE(SUM(sale_lines.quantity), 0) AS quantity").
		Joins("JOIN sales ON sales.id = sale_lines.sale_id").
		Where("sales.tenant_id = ? AND sales.stock_applied = ? AND sales.created_at BETWEEN ? AND ?", tenantID, true, startDate, endDate).
		Group("DATE(sales.created_at)").
		Scan(&outbound).Error
	if err != nil {
		return nil, err
	}

	return mergeMovement(inbound, outbound), nil
}

func mergeMovement(inbound, outbound []dailyQuantity) []StockMovementData {
	byDate := map[string]*StockMovementData{}
	get := func(date string) *StockMovementData {
		if d, ok := byDate[date]; ok {
			return d
		}
		d := &StockMovementData{Date: date}
		byDate[date] = d
		return d
	}
	for _, in := range inbound {
		get(in.Date).Inbound += in.Quantity
	}
	for _, out := range outbound {
		get(out.Date).Outbound += out.Quantity
	}

	results := make([]StockMovementData, 0, len(byDate))
	for _, d := range byDate {
		results = append(results, *d)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results
}

func (r *dashboardRepo) GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*DashboardStats, error) {
	db := r.db.WithContext(ctx)
	var stats DashboardStats

	products := db.Model(&model.Product{}).Where("tenant_id = ?", tenantID)
	if err := products.Session(&gorm.Session{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	if err := products.Session(&gorm.Session{}).
		Where("status = ? AND stock_current <= stock_minimum", string(model.ProductActive)).
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	var valuation decimal.Decimal
	if err := products.Session(&gorm.Session{}).
		Select("COALESCE(SUM(stock_current * price), 0)").
		Scan(&valuation).Error; err != nil {
		return nil, err
	}

	var paid decimal.Decimal
	if err := db.Model(&model.Sale{}).
		Where("tenant_id = ? AND status = ?", tenantID, string(model.SalePaid)).
		Select("COALESCE(SUM(total), 0)").
		Scan(&paid).Error; err != nil {
		return nil, err
	}

	stats.TotalValuation = valuation.StringFixed(2)
	stats.PaidSalesTotal = paid.StringFixed(2)
	return &stats, nil
}
