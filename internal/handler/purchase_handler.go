package handler

import (
	"saas-commerce/internal/repository"
	"saas-commerce/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PurchaseHandler struct {
	purchases service.PurchaseService
	docs      service.DocumentService
}

func NewPurchaseHandler(purchases service.PurchaseService, docs service.DocumentService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases, docs: docs}
}

func (h *PurchaseHandler) CreatePurchase(c *fiber.Ctx) error {
	var cmd service.PurchaseCommand
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	purchase, err := h.purchases.Create(c.UserContext(), actorFrom(c), cmd)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(purchase)
}

// GetPurchases lists purchases. Query params: supplier_id, from, to, limit
func (h *PurchaseHandler) GetPurchases(c *fiber.Ctx) error {
	var (
		filter repository.PurchaseFilter
		err    error
	)
	if v := c.Query("supplier_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid supplier_id"})
		}
		filter.SupplierID = &id
	}
	if filter.From, err = parseTime(c.Query("from")); err != nil {
		return respondError(c, err)
	}
	if filter.To, err = parseTime(c.Query("to")); err != nil {
		return respondError(c, err)
	}
	if filter.Limit, err = parseLimit(c.Query("limit")); err != nil {
		return respondError(c, err)
	}

	purchases, err := h.purchases.ListPurchases(c.UserContext(), actorFrom(c).TenantID, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(purchases)
}

func (h *PurchaseHandler) GetPurchase(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	purchase, err := h.purchases.GetPurchase(c.UserContext(), actorFrom(c).TenantID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(purchase)
}

func (h *PurchaseHandler) GetDocument(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	doc, err := h.docs.RenderPurchase(c.UserContext(), actorFrom(c).TenantID, id)
	if err != nil {
		return respondError(c, err)
	}
	return sendDocument(c, doc)
}
