package service

import (
	"context"
	"errors"

	"saas-commerce/internal/ledger"
	"saas-commerce/internal/model"
	"saas-commerce/internal/payment"
	"saas-commerce/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SaleService interface {
	Checkout(ctx context.Context, actor Actor, cmd CheckoutCommand) (*model.Sale, error)
	Approve(ctx context.Context, actor Actor, saleID uuid.UUID) (*model.Sale, error)
	Reject(ctx context.Context, actor Actor, saleID uuid.UUID) (*model.Sale, error)
	Cancel(ctx context.Context, actor Actor, saleID uuid.UUID) (*model.Sale, error)
	Deliver(ctx context.Context, actor Actor, saleID uuid.UUID) (*model.Sale, error)
	IssueInvoice(ctx context.Context, actor Actor, saleID uuid.UUID) (*model.Sale, error)
	AttachProof(ctx context.Context, actor Actor, saleID uuid.UUID, artifactRef string) (*model.Sale, error)
	GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*model.Sale, error)
	ListSales(ctx context.Context, tenantID uuid.UUID, filter repository.SaleFilter) ([]model.Sale, error)
}

type saleService struct {
	store  repository.Store
	ledger *ledger.Ledger
	settings
}

func NewSaleService(store repository.Store, l *ledger.Ledger, opts ...Option) SaleService {
	return &saleService{store: store, ledger: l, settings: newSettings(opts)}
}

func (s *saleService) Checkout(ctx context.Context, actor Actor, cmd CheckoutCommand) (*model.Sale, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validateCommand(&cmd); err != nil {
		return nil, err
	}
	if err := s.checkProof(actor.TenantID, cmd.ProofArtifact); err != nil {
		return nil, err
	}

	taxRate := decimal.Zero
	profile, err := s.store.Tenants().FindProfile(ctx, actor.TenantID)
	switch {
	case err == nil:
		taxRate = profile.TaxRate
	case !errors.Is(err, model.ErrNotFound):
		return nil, err
	}

	if cmd.CustomerID != nil {
		if _, err := s.store.Customers().FindByID(ctx, actor.TenantID, *cmd.CustomerID); err != nil {
			return nil, err
		}
	}

	ids := make([]uuid.UUID, 0, len(cmd.Lines))
	for _, l := range cmd.Lines {
		ids = append(ids, l.ProductID)
	}

	var (
		sale    *model.Sale
		results []ledger.Result
	)
	err = s.atomically(ctx, s.store, func(tx repository.Tx) error {
		results = nil
		products, err := tx.Products().FindByIDs(ctx, actor.TenantID, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		items := make([]model.SaleItem, 0, len(cmd.Lines))
		for _, l := range cmd.Lines {
			p, ok := byID[l.ProductID]
			if !ok {
				return model.NotFoundError("product", l.ProductID)
			}
			items = append(items, model.SaleItem{Product: p, Quantity: l.Quantity, Discount: l.Discount})
		}

		sale, err = model.NewSale(model.NewSaleParams{
			TenantID:      actor.TenantID,
			Channel:       cmd.Channel,
			PaymentMethod: cmd.PaymentMethod,
			CustomerID:    cmd.CustomerID,
			ProofArtifact: cmd.ProofArtifact,
			Items:         items,
			TaxRate:       taxRate,
			Actor:         actor.UserID,
			Now:           s.now(),
		})
		if err != nil {
			return err
		}

		if sale.StockApplied {
			results, err = s.ledger.ApplyDeltas(ctx, tx, actor.TenantID, sale.StockDeltas(-1), actor.UserID)
			if err != nil {
				return err
			}
		}
		return tx.Sales().Create(ctx, sale)
	})
	if err != nil {
		s.logFailure("checkout", actor, uuid.Nil, err)
		return nil, err
	}

	s.log.Info("sale registered",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("channel", string(sale.Channel)),
		zap.String("status", string(sale.Status)),
		zap.String("total", sale.Total.StringFixed(2)),
	)
	events := []model.Event{s.saleEvent(model.EventSaleCreated, sale, actor)}
	if sale.Status == model.SalePaid {
		events = append(events, s.saleEvent(model.EventSalePaid, sale, actor))
	}
	events = append(events, lowStockEvents(s.settings, actor, results)...)
	s.events.Publish(ctx, events...)
	return sale, nil
}

func (s *saleService) Approve(ctx context.Context, actor Actor, saleID uuid.UUID) (*model.Sale, error) {
	var results []ledger.Result
	sale, err := s.transition(ctx, actor, saleID, "approve", func(tx repository.Tx, sale *model.Sale) error {
		if err := sale.CheckApprove(); err != nil {
			return err
		}
		if err := payment.Verify(sale.PaymentMethod, sale.ProofArtifact); err != nil {
			return err
		}
		var err error
		results, err = s.ledger.ApplyDeltas(ctx, tx, actor.TenantID, sale.StockDeltas(-1), actor.UserID)
		if err != nil {
			return err
		}
		return sale.Approve(actor.UserID, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sale approved", zap.String("tenant_id", actor.TenantID.String()), zap.String("sale_id", saleID.String()))
	events := append([]model.Event{s.saleEvent(model.EventSalePaid, sale, actor)}, lowStockEvents(s.settings, actor, results)...)
	s.events.Publish(ctx, events...)
	return sale, nil
}

func (s *saleService) Reject(ctx context.Context, actor Actor, saleID uuid.UUID) (*model.Sale, error) {
	sale, err := s.transition(ctx, actor, saleID, "reject", func(_ repository.Tx, sale *model.Sale) error {
		return sale.Reject(actor.UserID, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sale rejected", zap.String("tenant_id", actor.TenantID.String()), zap.String("sale_id", saleID.String()))
	s.events.Publish(ctx, s.saleEvent(model.EventSaleCancelled, sale, actor))
	return sale, nil
}

func (s *saleService) Cancel(ctx context.Context, actor Actor, saleID uuid.UUID) (*model.Sale, error) {
	var restored bool
	sale, err := s.transition(ctx, actor, saleID, "cancel", func(tx repository.Tx, sale *model.Sale) error {
		deltas := sale.StockDeltas(1)
		restore, err := sale.Cancel(actor.UserID, s.now())
		if err != nil {
			return err
		}
		restored = restore
		if !restore {
			return nil
		}
		_, err = s.ledger.ApplyDeltas(ctx, tx, actor.TenantID, deltas, actor.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sale cancelled",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("sale_id", saleID.String()),
		zap.Bool("stock_restored", restored),
	)
	event := s.saleEvent(model.EventSaleCancelled, sale, actor)
	event.Data["stock_restored"] = restored
	s.events.Publish(ctx, event)
	return sale, nil
}

func (s *saleService) Deliver(ctx context.Context, actor Actor, saleID uuid.UUID) (*model.Sale, error) {
	sale, err := s.transition(ctx, actor, saleID, "deliver", func(_ repository.Tx, sale *model.Sale) error {
		return sale.Deliver(actor.UserID, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sale delivered", zap.String("tenant_id", actor.TenantID.String()), zap.String("sale_id", saleID.String()))
	s.events.Publish(ctx, s.saleEvent(model.EventSaleDelivered, sale, actor))
	return sale, nil
}

// IssueInvoice stamps a fiscal number on a PAID sale. Calling it again returns the
// sale with the number it already has.
func (s *saleService) IssueInvoice(ctx context.Context, actor Actor, saleID uuid.UUID) (*model.Sale, error) {
	issued := false
	sale, err := s.transition(ctx, actor, saleID, "invoice", func(tx repository.Tx, sale *model.Sale) error {
		issued = false
		if sale.FiscalStatus == model.FiscalIssued {
			return nil
		}
		if err := sale.CheckInvoice(); err != nil {
			return err
		}
		number, err := tx.Fiscal().NextNumber(ctx, actor.TenantID)
		if err != nil {
			return err
		}
		issued = true
		return sale.StampInvoice(number, actor.UserID, s.now())
	})
	if err != nil {
		return nil, err
	}
	if !issued {
		return sale, nil
	}

	s.log.Info("invoice issued",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("sale_id", saleID.String()),
		zap.String("fiscal_number", *sale.FiscalNumber),
	)
	s.events.Publish(ctx, s.saleEvent(model.EventSaleInvoiced, sale, actor))
	return sale, nil
}

func (s *saleService) AttachProof(ctx context.Context, actor Actor, saleID uuid.UUID, artifactRef string) (*model.Sale, error) {
	if artifactRef == "" {
		return nil, model.ValidationError("artifact reference is required")
	}
	if err := s.checkProof(actor.TenantID, &artifactRef); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, saleID, "attach proof", func(_ repository.Tx, sale *model.Sale) error {
		return sale.AttachProof(artifactRef, actor.UserID, s.now())
	})
}

func (s *saleService) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*model.Sale, error) {
	return s.store.Sales().FindByID(ctx, tenantID, saleID)
}

func (s *saleService) ListSales(ctx context.Context, tenantID uuid.UUID, filter repository.SaleFilter) ([]model.Sale, error) {
	return s.store.Sales().FindAll(ctx, tenantID, filter)
}

// transition locks the sale, lets apply mutate it and persists its state in the
// same unit of work. When apply fails nothing is written.
func (s *saleService) transition(ctx context.Context, actor Actor, saleID uuid.UUID, action string, apply func(tx repository.Tx, sale *model.Sale) error) (*model.Sale, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var sale *model.Sale
	err := s.atomically(ctx, s.store, func(tx repository.Tx) error {
		var err error
		sale, err = tx.Sales().LockForUpdate(ctx, actor.TenantID, saleID)
		if err != nil {
			return err
		}
		before := *sale
		if err := apply(tx, sale); err != nil {
			return err
		}
		if stateUnchanged(&before, sale) {
			return nil
		}
		return tx.Sales().UpdateState(ctx, sale)
	})
	if err != nil {
		s.logFailure(action, actor, saleID, err)
		return nil, err
	}
	return sale, nil
}

func stateUnchanged(a, b *model.Sale) bool {
	return a.Status == b.Status &&
		a.FulfillmentStatus == b.FulfillmentStatus &&
		a.FiscalStatus == b.FiscalStatus &&
		a.StockApplied == b.StockApplied &&
		a.ProofArtifact == b.ProofArtifact &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}

func (s *saleService) logFailure(action string, actor Actor, saleID uuid.UUID, err error) {
	fields := []zap.Field{
		zap.String("action", action),
		zap.String("tenant_id", actor.TenantID.String()),
		zap.Error(err),
	}
	if saleID != uuid.Nil {
		fields = append(fields, zap.String("sale_id", saleID.String()))
	}

	var stockErr *model.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		s.log.Info("insufficient stock", append(fields, zap.Int("shortages", len(stockErr.Shortages)))...)
	case isBusinessError(err):
		s.log.Info("sale operation rejected", fields...)
	default:
		s.log.Error("sale operation failed", fields...)
	}
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		model.ErrNotFound,
		model.ErrInvalidStateTransition,
		model.ErrInsufficientStock,
		model.ErrMissingPaymentProof,
		model.ErrValidation,
		model.ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *saleService) saleEvent(t model.EventType, sale *model.Sale, actor Actor) model.Event {
	data := map[string]interface{}{
		"channel":            sale.Channel,
		"status":             sale.Status,
		"fulfillment_status": sale.FulfillmentStatus,
		"fiscal_status":      sale.FiscalStatus,
		"total":              sale.Total.StringFixed(2),
	}
	if sale.FiscalNumber != nil {
		data["fiscal_number"] = *sale.FiscalNumber
	}
	return model.Event{
		Type:       t,
		TenantID:   sale.TenantID,
		EntityID:   sale.ID,
		Actor:      actor.UserID,
		OccurredAt: s.now(),
		Data:       data,
	}
}

func lowStockEvents(st settings, actor Actor, results []ledger.Result) []model.Event {
	var events []model.Event
	for _, r := range results {
		if !r.LowStock {
			continue
		}
		events = append(events, model.Event{
			Type:       model.EventStockLow,
			TenantID:   actor.TenantID,
			EntityID:   r.ProductID,
			Actor:      actor.UserID,
			OccurredAt: st.now(),
			Data: map[string]interface{}{
				"name":          r.Name,
				"sku":           r.SKU,
				"stock_current": r.NewStock,
				"stock_minimum": r.Minimum,
			},
		})
	}
	return events
}
