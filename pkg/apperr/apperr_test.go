package apperr_test

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/planty/pkg/apperr"
)

func TestStatusMapping(t *testing.T) {
	cases := map[error]int{
		apperr.Validation("bad"):                 http.StatusBadRequest,
		apperr.Conflict("Email already exists"):  http.StatusConflict,
		apperr.NotFound("User not found"):        http.StatusNotFound,
		apperr.Auth("Password is incorrect"):     http.StatusPaymentRequired,
		apperr.Expired("OTP expired"):            http.StatusGone,
		apperr.Storage("db", errors.New("boom")): http.StatusInternalServerError,
		apperr.RateLimited("slow down"):          http.StatusTooManyRequests,
		apperr.Internal("mail", io.EOF):          http.StatusInternalServerError,
		errors.New("plain"):                      http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, apperr.StatusOf(err), err.Error())
	}
}

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("service: %w", apperr.NotFound("Plant not found"))

	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.False(t, errors.Is(err, apperr.ErrAuth))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := apperr.Storage("could not save", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}
