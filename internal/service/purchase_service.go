package service

import (
	"context"

	"saas-commerce/internal/ledger"
	"saas-commerce/internal/model"
	"saas-commerce/internal/payment"
	"saas-commerce/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PurchaseService interface {
	Create(ctx context.Context, actor Actor, cmd PurchaseCommand) (*model.Purchase, error)
	GetPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) (*model.Purchase, error)
	ListPurchases(ctx context.Context, tenantID uuid.UUID, filter repository.PurchaseFilter) ([]model.Purchase, error)
}

type purchaseService struct {
	store  repository.Store
	ledger *ledger.Ledger
	settings
}

func NewPurchaseService(store repository.Store, l *ledger.Ledger, opts ...Option) PurchaseService {
	return &purchaseService{store: store, ledger: l, settings: newSettings(opts)}
}

// Create records a supplier purchase and replenishes stock in one unit of work.
// A non-cash purchase without proof is refused before the ledger is touched.
func (s *purchaseService) Create(ctx context.Context, actor Actor, cmd PurchaseCommand) (*model.Purchase, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validateCommand(&cmd); err != nil {
		return nil, err
	}
	if err := payment.Verify(cmd.PaymentMethod, cmd.ProofArtifact); err != nil {
		return nil, err
	}
	if err := s.checkProof(actor.TenantID, cmd.ProofArtifact); err != nil {
		return nil, err
	}

	items := make([]model.PurchaseItem, 0, len(cmd.Lines))
	for _, l := range cmd.Lines {
		items = append(items, model.PurchaseItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitCost:  l.UnitCost,
			LotNumber: l.LotNumber,
			ExpiresAt: l.ExpiresAt,
		})
	}

	var purchase *model.Purchase
	err := s.atomically(ctx, s.store, func(tx repository.Tx) error {
		var err error
		purchase, err = model.NewPurchase(model.NewPurchaseParams{
			TenantID:      actor.TenantID,
			SupplierID:    cmd.SupplierID,
			PaymentMethod: cmd.PaymentMethod,
			InvoiceNumber: cmd.InvoiceNumber,
			Observation:   cmd.Observation,
			ProofArtifact: cmd.ProofArtifact,
			Items:         items,
			Actor:         actor.UserID,
			Now:           s.now(),
		})
		if err != nil {
			return err
		}
		if _, err := s.ledger.ApplyDeltas(ctx, tx, actor.TenantID, purchase.StockDeltas(), actor.UserID); err != nil {
			return err
		}
		return tx.Purchases().Create(ctx, purchase)
	})
	if err != nil {
		if isBusinessError(err) {
			s.log.Info("purchase rejected", zap.String("tenant_id", actor.TenantID.String()), zap.Error(err))
		} else {
			s.log.Error("purchase failed", zap.String("tenant_id", actor.TenantID.String()), zap.Error(err))
		}
		return nil, err
	}

	s.log.Info("purchase registered",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("total", purchase.Total.StringFixed(2)),
	)
	s.events.Publish(ctx, model.Event{
		Type:       model.EventPurchaseCreated,
		TenantID:   actor.TenantID,
		EntityID:   purchase.ID,
		Actor:      actor.UserID,
		OccurredAt: s.now(),
		Data: map[string]interface{}{
			"total": purchase.Total.StringFixed(2),
			"lines": len(purchase.Lines),
		},
	})
	return purchase, nil
}

func (s *purchaseService) GetPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) (*model.Purchase, error) {
	return s.store.Purchases().FindByID(ctx, tenantID, purchaseID)
}

func (s *purchaseService) ListPurchases(ctx context.Context, tenantID uuid.UUID, filter repository.PurchaseFilter) ([]model.Purchase, error) {
	return s.store.Purchases().FindAll(ctx, tenantID, filter)
}
