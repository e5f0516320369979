package mongodb

import (
	"errors"
	"fmt"

	"medstudy-be/internal/repository/contract"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Server error codes that mean the query cannot be planned as written.
var capabilityCodes = []int{
	27,  // IndexNotFound
	115, // CommandNotSupported
	292, // QueryExceededMemoryLimitNoDiskUseAllowed
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return contract.ErrNotFound
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		for _, code := range capabilityCodes {
			if serverErr.HasErrorCode(code) {
				return contract.CapabilityFailure(fmt.Sprintf("%s: server code %d", op, code), err)
			}
		}
	}
	return contract.BackendFault(op, err)
}
