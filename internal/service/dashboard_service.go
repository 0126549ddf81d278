package service

import (
	"context"
	"time"

	"saas-commerce/internal/repository"

	"github.com/google/uuid"
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, tenantID uuid.UUID, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*repository.DashboardStats, error)
}

type dashboardService struct {
	repo repository.DashboardRepository
	settings
}

func NewDashboardService(repo repository.DashboardRepository, opts ...Option) DashboardService {
	return &dashboardService{repo: repo, settings: newSettings(opts)}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, tenantID uuid.UUID, days int) ([]repository.StockMovementData, error) {
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days).Truncate(24 * time.Hour)

	return s.repo.GetStockMovement(ctx, tenantID, startDate, endDate)
}

func (s *dashboardService) GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*repository.DashboardStats, error) {
	return s.repo.GetDashboardStats(ctx, tenantID)
}
