package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorIncludesUnderlying(t *testing.T) {
	err := ErrDatabaseOperation("put", stderrors.New("throttled"))

	assert.Equal(t, "DATABASE_ERROR: Database operation 'put' failed (underlying: throttled)", err.Error())
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.EqualError(t, stderrors.Unwrap(err), "throttled")
}

func TestAs_FindsWrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("computing sell: %w", ErrConfiguration("currency", "rate must be positive"))

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeConfiguration, appErr.Code)
	assert.True(t, HasCode(wrapped, CodeConfiguration))
	assert.False(t, HasCode(stderrors.New("plain"), CodeConfiguration))
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(ErrPromocodeRejected("SUMMER10", "expired"))

	assert.Equal(t, CodePromocodeRejected, resp.Error.Code)
	assert.Equal(t, "Promocode 'SUMMER10' rejected: expired", resp.Error.Message)
}
