package repository

import (
	"errors"
	"fmt"
	"testing"

	"saas-commerce/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		conflict bool
	}{
		{"serialization", &pgconn.PgError{Code: "40001", Message: "could not serialize access"}, true},
		{"deadlock", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}), true},
		{"lock timeout", &pgconn.PgError{Code: "55P03", Message: "canceling statement due to lock timeout"}, true},
		{"check violation", &pgconn.PgError{Code: "23514", Message: "stock_current check"}, false},
		{"business", model.ErrInsufficientStock, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			assert.Equal(t, tt.conflict, errors.Is(got, ErrConflict))
			if !tt.conflict {
				assert.Equal(t, tt.err, got)
			}
		})
	}
	assert.NoError(t, translateError(nil))
}

func TestFormatFiscalNumber(t *testing.T) {
	assert.Equal(t, "001-00000042", model.FormatFiscalNumber("001", 42))
}
