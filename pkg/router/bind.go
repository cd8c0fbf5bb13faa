package router

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

// bindQuery fills a request struct from URL query parameters, matching
// fields by their json tag. Only the flat types used by our API models are
// supported.
func bindQuery(r *http.Request, req any) error {
	value := reflect.ValueOf(req).Elem()
	if value.Kind() != reflect.Struct {
		return fmt.Errorf("request must be a struct, got %s", value.Kind())
	}

	query := r.URL.Query()
	structType := value.Type()
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		name := field.Tag.Get("json")
		if comma := strings.Index(name, ","); comma >= 0 {
			name = name[:comma]
		}
		if name == "" || name == "-" {
			continue
		}

		raw := query.Get(name)
		if raw == "" {
			continue
		}

		target := value.Field(i)
		switch target.Kind() {
		case reflect.String:
			target.SetString(raw)
		case reflect.Bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("invalid boolean for %s: %w", name, err)
			}
			target.SetBool(b)
		case reflect.Int, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer for %s: %w", name, err)
			}
			target.SetInt(n)
		case reflect.Uint, reflect.Uint32, reflect.Uint64:
			n, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer for %s: %w", name, err)
			}
			target.SetUint(n)
		default:
			return fmt.Errorf("unsupported query field %s of kind %s", name, target.Kind())
		}
	}

	return nil
}
