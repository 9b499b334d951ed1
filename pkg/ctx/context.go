// Package ctx provides the request context every controller receives.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context with helpers for params, binding, the
// authenticated user and the JSON envelope:
//
//	func (pc *PlantController) Show(c *ctx.Context) {
//	    plant, err := pc.plants.Get(c.Context(), c.Param("id"))
//	    if err != nil {
//	        c.Fail(err)
//	        return
//	    }
//	    c.Success(plant)
//	}
//
//	router.Get("/plants/{id}", "plants.show", ctx.Wrap(pc.Show))
package ctx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/planty/pkg/apperr"
	"github.com/shashiranjanraj/planty/pkg/auth"
	"github.com/shashiranjanraj/planty/pkg/bind"
	"github.com/shashiranjanraj/planty/pkg/logger"
	"github.com/shashiranjanraj/planty/pkg/response"
	"github.com/shashiranjanraj/planty/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap adapts h to http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// ─── Context ──────────────────────────────────────────────────────────────────

// Context is one request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int // 0 until something is written
}

var pool = sync.Pool{
	New: func() any { return new(Context) },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W, c.R, c.status = w, r, 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter (e.g. "/plants/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// UserID returns the id the auth middleware put on the request, or "" on
// public routes.
func (c *Context) UserID() string {
	if cl, ok := auth.FromCtx(c.R.Context()); ok {
		return cl.UserID
	}
	return ""
}

// ─── Binding / Validation ─────────────────────────────────────────────────────

// BindJSON decodes the JSON body into dest and runs validation.
// Malformed JSON and failed validation both answer 400 and return false.
//
//	var input RegisterInput
//	if !c.BindJSON(&input) {
//	    return // response already sent
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.validationError(errs)
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

func (c *Context) SetHeader(key, value string) {
	c.W.Header().Set(key, value)
}

// Status writes a bare status line.
func (c *Context) Status(code int) {
	c.status = code
	c.W.WriteHeader(code)
}

func (c *Context) JSON(code int, v any) {
	c.W.Header().Set("Content-Type", "application/json")
	c.W.WriteHeader(code)
	c.status = code
	json.NewEncoder(c.W).Encode(v) //nolint:errcheck
}

// Success sends a 200 JSON envelope: {"status":200,"data":...}
func (c *Context) Success(data any) {
	c.JSON(http.StatusOK, response.Envelope{Status: http.StatusOK, Data: data})
}

// Message sends a 200 envelope with a message and optional data.
func (c *Context) Message(message string, data any) {
	c.JSON(http.StatusOK, response.Envelope{Status: http.StatusOK, Message: message, Data: data})
}

// Created sends a 201 JSON envelope.
func (c *Context) Created(data any) {
	c.JSON(http.StatusCreated, response.Envelope{Status: http.StatusCreated, Data: data})
}

// CreatedMessage sends a 201 envelope with a message.
func (c *Context) CreatedMessage(message string, data any) {
	c.JSON(http.StatusCreated, response.Envelope{Status: http.StatusCreated, Message: message, Data: data})
}

// NoContent sends a bare 204.
func (c *Context) NoContent() {
	c.Status(http.StatusNoContent)
}

// Error sends a JSON error envelope with the given status and message.
func (c *Context) Error(code int, message string) {
	c.JSON(code, response.Envelope{Status: code, Message: message})
}

func (c *Context) validationError(errs map[string]string) {
	c.JSON(http.StatusBadRequest, response.Envelope{
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Fail translates a service error into its status and envelope. Internal
// and storage failures are logged with their cause and answered with a
// generic message.
func (c *Context) Fail(err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		logger.WithCtx(c.Context()).Error("unhandled error", "error", err, "path", c.R.URL.Path)
		c.Error(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	status := ae.Kind.Status()
	if status >= http.StatusInternalServerError {
		logger.WithCtx(c.Context()).Error(ae.Message, "error", ae.Err, "kind", ae.Kind.String(), "path", c.R.URL.Path)
		c.Error(status, ae.Message)
		return
	}

	if len(ae.Fields) > 0 {
		c.JSON(status, response.Envelope{Status: status, Message: ae.Message, Errors: ae.Fields})
		return
	}
	c.Error(status, ae.Message)
}

// WrittenStatus returns the HTTP status code that was written to the response,
// or 0 if no response has been written yet.
func (c *Context) WrittenStatus() int { return c.status }
