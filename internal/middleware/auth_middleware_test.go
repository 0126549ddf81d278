package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"saas-commerce/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(tokens *jwt.Manager) *fiber.App {
	app := fiber.New()
	app.Get("/me", RequireAuth(tokens), RequireRole("OWNER", "SELLER"), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"tenant_id": TenantID(c), "user_id": UserID(c), "role": Role(c)})
	})
	return app
}

func TestRequireAuth(t *testing.T) {
	tokens := jwt.NewManager("secret", time.Hour)
	app := newApp(tokens)
	tenantID := uuid.New()

	seller, err := tokens.GenerateToken("u1", tenantID, "SELLER")
	require.NoError(t, err)
	viewer, err := tokens.GenerateToken("u2", tenantID, "VIEWER")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"missing", "", "", 401},
		{"bad scheme", "Token " + seller, "", 401},
		{"bad token", "Bearer nope", "", 401},
		{"seller", "Bearer " + seller, "", 200},
		{"query token", "", "?token=" + seller, 200},
		{"viewer", "Bearer " + viewer, "", 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
