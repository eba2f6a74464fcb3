package relations

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/emergent-company/emergent.relations/pkg/apperror"
)

var (
	// ErrInvalidRecord is returned when a scanned or coerced record is not an object.
	ErrInvalidRecord = apperror.New(http.StatusBadRequest, "invalid_record", "Record must be a JSON object")

	// ErrInvalidData is returned when primary data is neither an entity, a
	// homogeneous entity sequence nor null.
	ErrInvalidData = apperror.New(http.StatusBadRequest, "invalid_data", "Data must be an entity, a list of entities of one type, or null")

	// ErrRelationStorage is returned when any batch fetch fails. No partial
	// relations are returned alongside it.
	ErrRelationStorage = apperror.New(http.StatusInternalServerError, "relation_storage_error", "Failed to load related entities")
)

// IsValidation reports whether err is caused by malformed input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidRecord) || errors.Is(err, ErrInvalidData)
}

// IsStorage reports whether err is a relation storage failure.
func IsStorage(err error) bool {
	return errors.Is(err, ErrRelationStorage)
}

func invalidRecord(v any) *apperror.Error {
	return ErrInvalidRecord.WithMessage(fmt.Sprintf("Record must be a JSON object, got %s", describe(v)))
}

func withIndex(err error, index int) error {
	appErr, ok := apperror.As(err)
	if !ok {
		return err
	}
	details := map[string]any{"index": index}
	for k, v := range appErr.Details {
		details[k] = v
	}
	return appErr.WithDetails(details)
}

func describe(v any) string {
	switch v.(type) {
	case nil, map[string]any:
		// a non-nil map is always a valid record, so only a nil one lands here
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
