package handler

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ArtifactStore keeps uploaded payment proofs per tenant.
type ArtifactStore interface {
	Put(ctx context.Context, tenantID uuid.UUID, r io.Reader) (string, error)
	Open(tenantID uuid.UUID, ref string) (io.ReadCloser, string, error)
}

type ArtifactHandler struct {
	store ArtifactStore
}

func NewArtifactHandler(store ArtifactStore) *ArtifactHandler {
	return &ArtifactHandler{store: store}
}

// Upload stores the multipart field "file" and returns its reference
func (h *ArtifactHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Missing file"})
	}
	f, err := header.Open()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Unreadable file"})
	}
	defer f.Close()

	ref, err := h.store.Put(c.UserContext(), actorFrom(c).TenantID, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"artifact_ref": ref})
}

func (h *ArtifactHandler) Download(c *fiber.Ctx) error {
	rc, contentType, err := h.store.Open(actorFrom(c).TenantID, c.Params("ref"))
	if err != nil {
		return respondError(c, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}
