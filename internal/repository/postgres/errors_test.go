package postgres

import (
	"errors"
	"fmt"
	"testing"

	"medstudy-be/internal/repository/contract"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", gorm.ErrRecordNotFound, contract.ErrNotFound},
		{"statement too complex", &pgconn.PgError{Code: "54001", Message: "statement too complex"}, contract.ErrCapabilityFailure},
		{"too many columns", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "54011"}), contract.ErrCapabilityFailure},
		{"feature not supported", &pgconn.PgError{Code: "0A000"}, contract.ErrCapabilityFailure},
		{"unique violation", &pgconn.PgError{Code: "23505"}, contract.ErrBackendFault},
		{"connection refused", errors.New("dial tcp: connection refused"), contract.ErrBackendFault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify("op", tt.err), tt.want)
		})
	}

	assert.NoError(t, classify("op", nil))
}
