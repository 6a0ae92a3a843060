package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		Validation:           http.StatusBadRequest,
		ModelUnavailable:     http.StatusServiceUnavailable,
		UpstreamService:      http.StatusBadGateway,
		ExtractionIncomplete: http.StatusInternalServerError,
		NotFound:             http.StatusNotFound,
		Conflict:             http.StatusConflict,
		Internal:             http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, New(kind, "x").HTTPStatus(), kind.String())
	}
}

func TestKindOfWrappedChain(t *testing.T) {
	base := errors.New("dial tcp: refused")
	err := fmt.Errorf("rag: %w", Upstream("embedding", base))

	assert.Equal(t, UpstreamService, KindOf(err))
	assert.True(t, Is(err, UpstreamService))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))

	assert.Equal(t, Internal, KindOf(errors.New("plain")))
	assert.False(t, Is(nil, Internal))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
}

func TestInvalidMessageNamesField(t *testing.T) {
	err := Invalid("age", "required")
	assert.Equal(t, "validation: age: required", err.Error())
}
