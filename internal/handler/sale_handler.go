package handler

import (
	"context"
	"strconv"
	"time"

	"saas-commerce/internal/model"
	"saas-commerce/internal/repository"
	"saas-commerce/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SaleHandler struct {
	sales service.SaleService
	docs  service.DocumentService
}

func NewSaleHandler(sales service.SaleService, docs service.DocumentService) *SaleHandler {
	return &SaleHandler{sales: sales, docs: docs}
}

// Checkout registers a sale from the POS or the online store
func (h *SaleHandler) Checkout(c *fiber.Ctx) error {
	var cmd service.CheckoutCommand
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sale, err := h.sales.Checkout(c.UserContext(), actorFrom(c), cmd)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(sale)
}

// GetSales lists sales. Query params: channel, status, from, to (YYYY-MM-DD or RFC3339), limit
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	filter := repository.SaleFilter{
		Channel: model.SaleChannel(c.Query("channel")),
		Status:  model.SaleStatus(c.Query("status")),
	}
	var err error
	if filter.From, err = parseTime(c.Query("from")); err != nil {
		return respondError(c, err)
	}
	if filter.To, err = parseTime(c.Query("to")); err != nil {
		return respondError(c, err)
	}
	if filter.Limit, err = parseLimit(c.Query("limit")); err != nil {
		return respondError(c, err)
	}

	sales, err := h.sales.ListSales(c.UserContext(), actorFrom(c).TenantID, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sales)
}

func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	sale, err := h.sales.GetSale(c.UserContext(), actorFrom(c).TenantID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

func (h *SaleHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, h.sales.Approve)
}

func (h *SaleHandler) Reject(c *fiber.Ctx) error {
	return h.transition(c, h.sales.Reject)
}

func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.sales.Cancel)
}

func (h *SaleHandler) Deliver(c *fiber.Ctx) error {
	return h.transition(c, h.sales.Deliver)
}

func (h *SaleHandler) IssueInvoice(c *fiber.Ctx) error {
	return h.transition(c, h.sales.IssueInvoice)
}

type attachProofRequest struct {
	ArtifactRef string `json:"artifact_ref"`
}

func (h *SaleHandler) AttachProof(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req attachProofRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sale, err := h.sales.AttachProof(c.UserContext(), actorFrom(c), id, req.ArtifactRef)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

// GetDocument renders the ticket or A4 document of a sale
func (h *SaleHandler) GetDocument(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	doc, err := h.docs.RenderSale(c.UserContext(), actorFrom(c).TenantID, id)
	if err != nil {
		return respondError(c, err)
	}
	return sendDocument(c, doc)
}

func (h *SaleHandler) transition(c *fiber.Ctx, op func(context.Context, service.Actor, uuid.UUID) (*model.Sale, error)) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	sale, err := op(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

func parseTime(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, model.ValidationError("invalid date %q", v)
}

func parseLimit(v string) (int, error) {
	if v == "" {
		return 100, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > 500 {
		return 0, model.ValidationError("limit must be between 1 and 500")
	}
	return n, nil
}
