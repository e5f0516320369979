package postgres

import (
	"errors"
	"strings"

	"medstudy-be/internal/repository/contract"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	sqlStateProgramLimitClass  = "54"    // statement too complex, too many columns
	sqlStateFeatureUnsupported = "0A000" // feature_not_supported
)

// classify maps driver errors onto the repository error kinds. Only planner and feature limits
// count as capability failures, everything else is a fault.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return contract.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, sqlStateProgramLimitClass) || pgErr.Code == sqlStateFeatureUnsupported {
			return contract.CapabilityFailure(op+": "+pgErr.Message, err)
		}
	}
	return contract.BackendFault(op, err)
}
