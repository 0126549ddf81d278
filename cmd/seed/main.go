// Command seed creates a demo tenant with a small catalog and prints access
// tokens for it. It is meant for local development only.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"saas-commerce/internal/config"
	"saas-commerce/internal/model"
	"saas-commerce/internal/repository"
	"saas-commerce/pkg/database"
	"saas-commerce/pkg/jwt"
	"saas-commerce/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	tenantFlag := flag.String("tenant", "", "tenant id to seed (random when empty)")
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	tenantID := uuid.New()
	if *tenantFlag != "" {
		if tenantID, err = uuid.Parse(*tenantFlag); err != nil {
			zlog.Fatal("invalid tenant id", zap.Error(err))
		}
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DatabaseURL, zlog, cfg.IsDevelopment())
	if err != nil {
		zlog.Fatal("connect", zap.Error(err))
	}
	if err := database.Migrate(db, repository.Models()...); err != nil {
		zlog.Fatal("migrate", zap.Error(err))
	}

	// 3. Seed tenant, catalog and customer
	if err := seedTenant(context.Background(), db, tenantID); err != nil {
		zlog.Fatal("seed tenant", zap.Error(err))
	}
	zlog.Info("tenant seeded", zap.String("tenant_id", tenantID.String()))

	// 4. Mint dev tokens
	tokens := jwt.NewManager(cfg.JWTSecret, 7*24*time.Hour)
	for _, role := range model.OperatorRoles {
		token, err := tokens.GenerateToken(fmt.Sprintf("demo-%s", role), tenantID, role)
		if err != nil {
			zlog.Fatal("mint token", zap.Error(err))
		}
		fmt.Printf("%s token: %s\n", role, token)
	}
}

// seedTenant is idempotent: existing rows with the same keys are left alone.
func seedTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile := model.TenantProfile{
			TenantID:  tenantID,
			Name:      "Demo Store",
			TaxID:     "1020304050",
			Address:   "Main Street 1",
			Phone:     "+591 2 000000",
			Currency:  "BOB",
			TaxRate:   decimal.RequireFromString("13"),
			LegalNote: "This invoice is a legal document. Keep it for your records.",
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&profile).Error; err != nil {
			return err
		}

		products := []model.Product{
			{TenantID: tenantID, SKU: "COF-500", Name: "Ground coffee 500g", Price: decimal.RequireFromString("42.50"), StockCurrent: 40, StockMinimum: 5},
			{TenantID: tenantID, SKU: "TEA-025", Name: "Green tea 25 bags", Price: decimal.RequireFromString("18.00"), StockCurrent: 25, StockMinimum: 5},
			{TenantID: tenantID, SKU: "SUG-1K", Name: "Sugar 1kg", Price: decimal.RequireFromString("9.90"), StockCurrent: 60, StockMinimum: 10},
			{TenantID: tenantID, SKU: "MLK-1L", Name: "Whole milk 1L", Price: decimal.RequireFromString("7.50"), StockCurrent: 3, StockMinimum: 6},
		}
		for i := range products {
			products[i].Status = model.ProductActive
			products[i].CreatedBy = "seed"
			products[i].UpdatedBy = "seed"
			var count int64
			if err := tx.Model(&model.Product{}).Where("tenant_id = ? AND sku = ?", tenantID, products[i].SKU).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := tx.Create(&products[i]).Error; err != nil {
				return err
			}
		}

		customer := model.Customer{TenantID: tenantID, Name: "Walk-in Demo Customer", TaxID: "99001"}
		customer.CreatedBy = "seed"
		customer.UpdatedBy = "seed"
		var count int64
		if err := tx.Model(&model.Customer{}).Where("tenant_id = ? AND tax_id = ?", tenantID, customer.TaxID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return tx.Create(&customer).Error
		}
		return nil
	})
}
