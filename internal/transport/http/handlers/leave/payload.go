package leavehandler

import (
	"errors"
	"net/http"

	"elms/internal/domain/apperr"
)

var errInvalidPayload = apperr.Validation("invalid_payload", "invalid request payload")

// asPayloadError keeps oversized bodies distinguishable from malformed JSON.
func asPayloadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}
	return errInvalidPayload
}
