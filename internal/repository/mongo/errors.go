package mongo

import (
	"errors"
	"fmt"
	"streamdb/internal/shared"

	"go.mongodb.org/mongo-driver/mongo"
)

// Server error codes the store reacts to.
const (
	codeNamespaceExists           = 48
	codeNoReplicationEnabled      = 76
	codeIndexOptionsConflict      = 85
	codeIndexKeySpecsConflict     = 86
	codeNotYetInitialized         = 94
	codeDocumentValidationFailure = 121
)

func commandCode(err error) (int32, bool) {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return 0, false
}

// mapError translates driver errors into the store's sentinel errors.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", op, shared.ErrNotFound)
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w: %v", op, shared.ErrConflict, err)
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == codeDocumentValidationFailure {
				return fmt.Errorf("%s: %w: %v", op, shared.ErrValidation, err)
			}
		}
	}

	if code, ok := commandCode(err); ok {
		switch code {
		case codeNamespaceExists, codeIndexOptionsConflict:
			return fmt.Errorf("%s: %w", op, shared.ErrAlreadyExists)
		case codeIndexKeySpecsConflict:
			return fmt.Errorf("%s: %w: %v", op, shared.ErrConflict, err)
		case codeDocumentValidationFailure:
			return fmt.Errorf("%s: %w: %v", op, shared.ErrValidation, err)
		case codeNoReplicationEnabled, codeNotYetInitialized:
			return fmt.Errorf("%s: %w: %v", op, shared.ErrUnsupported, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
