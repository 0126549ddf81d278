package handler

import (
	"errors"

	"saas-commerce/internal/middleware"
	"saas-commerce/internal/model"
	"saas-commerce/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError maps domain errors to HTTP statuses. Unknown errors are not echoed.
func respondError(c *fiber.Ctx, err error) error {
	var stockErr *model.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error(), "shortages": stockErr.Shortages})
	case errors.Is(err, model.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, model.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, model.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, model.ErrInvalidStateTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, model.ErrMissingPaymentProof):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrContention):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Operation failed, please retry"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}

func actorFrom(c *fiber.Ctx) service.Actor {
	return service.Actor{
		TenantID: middleware.TenantID(c),
		UserID:   middleware.UserID(c),
		Role:     middleware.Role(c),
	}
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, model.ValidationError("invalid id %q", c.Params("id"))
	}
	return id, nil
}

func sendDocument(c *fiber.Ctx, doc *service.Rendered) error {
	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+doc.Filename+`"`)
	c.Set("X-Document-Layout", string(doc.Layout.Format))
	return c.Send(doc.Content)
}
