// Package bind decodes a JSON request body and validates the result.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shashiranjanraj/planty/config"
	"github.com/shashiranjanraj/planty/pkg/validate"
)

// ErrEmptyBody is returned when the request carries no body at all.
var ErrEmptyBody = errors.New("request body is empty")

// JSON decodes r.Body into dest, capped at MAX_BODY_BYTES (4 MB by default),
// then validates dest. A decode failure comes back as err; rule failures
// come back as errs, keyed by JSON field name.
func JSON(r *http.Request, dest any) (errs map[string]string, err error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, ErrEmptyBody
	}
	limit := int64(config.Int("MAX_BODY_BYTES", 4<<20))
	if limit <= 0 {
		limit = 4 << 20
	}
	r.Body = http.MaxBytesReader(nil, r.Body, limit)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", tooLarge.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return validate.Struct(dest), nil
}
