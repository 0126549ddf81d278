package service

import (
	"context"
	"errors"

	"saas-commerce/internal/document"
	"saas-commerce/internal/model"
	"saas-commerce/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Rendered is a finished document ready to be served.
type Rendered struct {
	Filename    string
	ContentType string
	Layout      document.Layout
	Content     []byte
}

type DocumentService interface {
	RenderSale(ctx context.Context, tenantID, saleID uuid.UUID) (*Rendered, error)
	RenderPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) (*Rendered, error)
}

type documentService struct {
	store repository.Store
	settings
}

func NewDocumentService(store repository.Store, opts ...Option) DocumentService {
	return &documentService{store: store, settings: newSettings(opts)}
}

// RenderSale reads the sale, the tenant display data and the customer on every
// call; nothing is cached.
func (s *documentService) RenderSale(ctx context.Context, tenantID, saleID uuid.UUID) (*Rendered, error) {
	sale, err := s.store.Sales().FindByID(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.Tenants().FindProfile(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var customer *model.Customer
	if sale.CustomerID != nil {
		customer, err = s.store.Customers().FindByID(ctx, tenantID, *sale.CustomerID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
	}

	return s.render(document.BuildSalePage(sale, *profile, customer))
}

func (s *documentService) RenderPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) (*Rendered, error) {
	purchase, err := s.store.Purchases().FindByID(ctx, tenantID, purchaseID)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.Tenants().FindProfile(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	names, err := s.productNames(ctx, tenantID, purchase)
	if err != nil {
		return nil, err
	}
	return s.render(document.BuildPurchasePage(purchase, *profile, names))
}

// productNames maps the purchase's products to their current names. Products
// that no longer exist are left out and print by id.
func (s *documentService) productNames(ctx context.Context, tenantID uuid.UUID, purchase *model.Purchase) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0, len(purchase.Lines))
	for _, l := range purchase.Lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.store.Products().FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names, nil
}

func (s *documentService) render(page document.Page) (*Rendered, error) {
	content, err := document.Render(page)
	if err != nil {
		s.log.Error("render document", zap.String("reference", page.Reference), zap.Error(err))
		return nil, err
	}
	return &Rendered{
		Filename:    page.Filename(),
		ContentType: "application/pdf",
		Layout:      page.Layout,
		Content:     content,
	}, nil
}
