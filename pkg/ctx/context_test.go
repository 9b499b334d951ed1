package ctx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/planty/pkg/apperr"
	"github.com/shashiranjanraj/planty/pkg/auth"
	appctx "github.com/shashiranjanraj/planty/pkg/ctx"
)

func serve(req *http.Request, h appctx.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	appctx.Wrap(h)(rec, req)
	return rec
}

func TestWrapAndJSON(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.JSON(http.StatusOK, map[string]any{"ok": true})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)
}

func TestCreatedEnvelope(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodPost, "/", nil), func(c *appctx.Context) {
		c.Created(map[string]any{"id": "p1"})
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"status":201,"data":{"id":"p1"}}`, rec.Body.String())
}

func TestNoContent(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodDelete, "/", nil), func(c *appctx.Context) {
		c.NoContent()
		assert.Equal(t, http.StatusNoContent, c.WrittenStatus())
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestBindJSONValid(t *testing.T) {
	body := `{"name":"Fern","price":12.5}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	rec := serve(req, func(c *appctx.Context) {
		var input struct {
			Name  string  `json:"name"  validate:"required"`
			Price float64 `json:"price" validate:"required,gt=0"`
		}
		if !assert.True(t, c.BindJSON(&input)) {
			return
		}
		assert.Equal(t, "Fern", input.Name)
		c.Success(nil)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBindJSONValidationFailureIs400(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"price":0}`))

	rec := serve(req, func(c *appctx.Context) {
		var input struct {
			Price float64 `json:"price" validate:"required,gt=0"`
		}
		assert.False(t, c.BindJSON(&input))
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"errors":{"price"`)
}

func TestBindJSONMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))

	rec := serve(req, func(c *appctx.Context) {
		var input struct{ Name string }
		assert.False(t, c.BindJSON(&input))
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFailMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{apperr.NotFound("Plant not found"), http.StatusNotFound, `"message":"Plant not found"`},
		{apperr.Auth("Password is incorrect"), http.StatusPaymentRequired, `"message":"Password is incorrect"`},
		{apperr.Conflict("Email already exists"), http.StatusConflict, `"message":"Email already exists"`},
		{apperr.Expired("OTP has expired"), http.StatusGone, `"message":"OTP has expired"`},
		{apperr.ValidationFields(map[string]string{"quantity": "bad"}), http.StatusBadRequest, `"errors":{"quantity":"bad"}`},
		{apperr.Storage("could not save order", errors.New("socket closed")), http.StatusInternalServerError, `"message":"could not save order"`},
		{errors.New("raw driver failure"), http.StatusInternalServerError, `"message":"Internal Server Error"`},
	}

	for _, tc := range cases {
		rec := serve(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
			c.Fail(tc.err)
		})
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.Contains(t, rec.Body.String(), tc.body)
		assert.NotContains(t, rec.Body.String(), "socket closed")
	}
}

func TestUserIDFromClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{UserID: "u-42"}))

	serve(req, func(c *appctx.Context) {
		assert.Equal(t, "u-42", c.UserID())
	})

	serve(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		assert.Equal(t, "", c.UserID())
	})
}
