// Package validate provides struct-tag validation for request payloads.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required        field must not be zero/empty
//	nullable        if empty (or a nil pointer), skip all remaining rules
//	email           valid email address
//	url             valid http/https URL
//	objectid        24-char hex document id
//	password        8+ chars from [A-Za-z0-9@$!%*?&] with lower, upper, digit and symbol
//	min=N / max=N   string: char length | number: value
//	gt=N / gte=N    number bounds
//	lt=N / lte=N    number bounds
//	decimals=N      number has at most N fractional digits
//	in=a,b,c        value must be one of the listed items
//	regex=pattern   value must match (avoid commas in pattern)
//	same=field      value must equal the sibling field with that json name
//
// Pointer fields are dereferenced, which makes them a natural fit for
// partial-update payloads:
//
//	type PlantPatch struct {
//	    Price    *float64 `json:"price"    validate:"nullable,gt=0"`
//	    Category *string  `json:"category" validate:"nullable,in=indoor,outdoor,succulents"`
//	}
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of fieldName → error message; empty map means no errors.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		name := jsonFieldName(field)
		rules := splitRules(tag)
		value := rv.Field(i)

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}
		value = deref(value)

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, name, value, rv); msg != "" {
				errs[name] = msg
				break // first failing rule per field
			}
		}
	}

	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// Password reports whether s satisfies the password strength rule.
func Password(s string) bool {
	if len(s) < 8 || !passwordCharsRE.MatchString(s) {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, c):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// Email reports whether s looks like an email address.
func Email(s string) bool { return emailRE.MatchString(s) }

// ObjectID reports whether s is a 24-char hex document id.
func ObjectID(s string) bool { return objectIDRE.MatchString(s) }

type ruleFunc func(field, param string, v reflect.Value, parent reflect.Value) string

var rules map[string]ruleFunc

func init() {
	rules = map[string]ruleFunc{
		"required": func(field, _ string, v, _ reflect.Value) string {
			if isEmpty(v) {
				return fmt.Sprintf("The %s field is required.", field)
			}
			return ""
		},
		"email": func(field, _ string, v, _ reflect.Value) string {
			if !Email(raw(v)) {
				return fmt.Sprintf("The %s must be a valid email address.", field)
			}
			return ""
		},
		"url": func(field, _ string, v, _ reflect.Value) string {
			u, err := url.ParseRequestURI(raw(v))
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				return fmt.Sprintf("The %s must be a valid URL.", field)
			}
			return ""
		},
		"objectid": func(field, _ string, v, _ reflect.Value) string {
			if !ObjectID(raw(v)) {
				return fmt.Sprintf("The %s must be a valid id.", field)
			}
			return ""
		},
		"password": func(field, _ string, v, _ reflect.Value) string {
			if !Password(raw(v)) {
				return fmt.Sprintf("The %s must be at least 8 characters and include an uppercase letter, a lowercase letter, a number and one of %s.", field, passwordSymbols)
			}
			return ""
		},
		"min": func(field, param string, v, _ reflect.Value) string {
			n := parseFloat(param)
			if isNumericKind(v) {
				if toFloat(v) < n {
					return fmt.Sprintf("The %s must be at least %s.", field, param)
				}
			} else if float64(len([]rune(raw(v)))) < n {
				return fmt.Sprintf("The %s must be at least %s characters.", field, param)
			}
			return ""
		},
		"max": func(field, param string, v, _ reflect.Value) string {
			n := parseFloat(param)
			if isNumericKind(v) {
				if toFloat(v) > n {
					return fmt.Sprintf("The %s must not be greater than %s.", field, param)
				}
			} else if float64(len([]rune(raw(v)))) > n {
				return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
			}
			return ""
		},
		"gt":  compare(func(a, b float64) bool { return a > b }, "greater than"),
		"gte": compare(func(a, b float64) bool { return a >= b }, "greater than or equal to"),
		"lt":  compare(func(a, b float64) bool { return a < b }, "less than"),
		"lte": compare(func(a, b float64) bool { return a <= b }, "less than or equal to"),
		"decimals": func(field, param string, v, _ reflect.Value) string {
			places, err := strconv.Atoi(param)
			if err != nil || !isNumericKind(v) {
				return ""
			}
			d := decimal.NewFromFloat(toFloat(v))
			if !d.Equal(d.Round(int32(places))) {
				return fmt.Sprintf("The %s must have at most %d decimal places.", field, places)
			}
			return ""
		},
		"in": func(field, param string, v, _ reflect.Value) string {
			s := raw(v)
			for _, a := range strings.Split(param, ",") {
				if s == strings.TrimSpace(a) {
					return ""
				}
			}
			return fmt.Sprintf("The selected %s is invalid.", field)
		},
		"regex": func(field, param string, v, _ reflect.Value) string {
			re, err := regexp.Compile(param)
			if err != nil {
				return fmt.Sprintf("The %s has an invalid validation pattern.", field)
			}
			if !re.MatchString(raw(v)) {
				return fmt.Sprintf("The %s format is invalid.", field)
			}
			return ""
		},
		"same": func(field, param string, v, parent reflect.Value) string {
			other, ok := siblingByJSONName(parent, param)
			if !ok || raw(deref(other)) != raw(v) {
				return fmt.Sprintf("The %s and %s must match.", field, param)
			}
			return ""
		},
	}
}

func compare(ok func(a, b float64) bool, words string) ruleFunc {
	return func(field, param string, v, _ reflect.Value) string {
		if !ok(toFloat(v), parseFloat(param)) {
			return fmt.Sprintf("The %s must be %s %s.", field, words, param)
		}
		return ""
	}
}

func applyRule(rule, field string, v reflect.Value, parent reflect.Value) string {
	key, param, _ := strings.Cut(strings.TrimSpace(rule), "=")
	fn, ok := rules[key]
	if !ok {
		return ""
	}
	return fn(field, param, v, parent)
}

const passwordSymbols = "@$!%*?&"

var (
	emailRE         = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	objectIDRE      = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
	passwordCharsRE = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]+$`)
)

func raw(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	return fmt.Sprintf("%v", v.Interface())
}

func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v
		}
		v = v.Elem()
	}
	return v
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Invalid:
		return true
	}
	return false
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return parseFloat(raw(v))
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}

// splitRules splits the tag on commas, keeping the values of in= together:
// "required,in=a,b,c,max=10" → ["required", "in=a,b,c", "max=10"]
func splitRules(tag string) []string {
	var out []string
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if len(out) > 0 && strings.HasPrefix(out[len(out)-1], "in=") && !isRule(part) {
			out[len(out)-1] += "," + part
			continue
		}
		out = append(out, part)
	}
	return out
}

func isRule(token string) bool {
	key, _, _ := strings.Cut(token, "=")
	if key == "nullable" {
		return true
	}
	_, ok := rules[key]
	return ok
}

func hasRule(rs []string, target string) bool {
	for _, r := range rs {
		if r == target {
			return true
		}
	}
	return false
}

func siblingByJSONName(parent reflect.Value, name string) (reflect.Value, bool) {
	rt := parent.Type()
	for i := 0; i < rt.NumField(); i++ {
		if jsonFieldName(rt.Field(i)) == name {
			return parent.Field(i), true
		}
	}
	return reflect.Value{}, false
}
