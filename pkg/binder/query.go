package binder

import "net/http"

// Query binds URL query parameters using `query:"name"` tags. Fields without
// a tag use their lowercased name; `query:"-"` skips a field.
//
//	type ListVideosRequest struct {
//		Status string `query:"status"`
//		Page   int    `query:"page"`
//	}
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrFailedToParseQuery)
	}
}
