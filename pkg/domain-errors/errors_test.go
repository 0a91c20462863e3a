package domainerrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesCode(t *testing.T) {
	err := New(CodeUnauthorized, "caller is not the master account")
	assert.True(t, Is(err, CodeUnauthorized))
	assert.False(t, Is(err, CodeBadRequest))
}

func TestIsUnwrapsChains(t *testing.T) {
	err := fmt.Errorf("add parties: %w", New(CodeUnauthorized, "no access"))
	assert.True(t, Is(err, CodeUnauthorized))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(fmt.Errorf("plain failure")))
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "missing")))
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(CodeBadRequest))
	assert.Equal(t, http.StatusUnauthorized, ToHTTPStatus(CodeUnauthorized))
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(CodeNotFound))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(CodeInternal))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(Code("unknown")))
}
