package binder

import (
	"fmt"
	"net/http"
	"reflect"
)

// Path binds route parameters using `path:"name"` tags and the router's
// extractor, e.g. chi.URLParam:
//
//	type GetVideoRequest struct {
//		ID uuid.UUID `path:"id"`
//	}
//
//	r.Get("/videos/{id}", handler.Wrap(h, handler.WithBinders[handler.Context, GetVideoRequest](
//		binder.Path(chi.URLParam),
//	)))
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor function is nil", ErrFailedToParsePath)
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("%w: target must be a pointer to struct", ErrFailedToParsePath)
		}

		values := make(map[string][]string)
		rt := rv.Elem().Type()
		for i := range rt.NumField() {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			name, skip := parseFieldTag(f, "path")
			if skip {
				continue
			}
			if value := extractor(r, name); value != "" {
				values[name] = []string{value}
			}
		}
		return bindToStruct(v, "path", values, ErrFailedToParsePath)
	}
}
