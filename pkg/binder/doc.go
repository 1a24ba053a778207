// Package binder fills request structs from JSON bodies, query strings and
// route parameters.
//
// Each binder is a func(*http.Request, any) error meant to be passed to
// handler.WithBinders. Binders only touch fields carrying their own tag
// (`json`, `query`, `path`), so several can populate one struct:
//
//	type UpdateVideoRequest struct {
//		ID    uuid.UUID `path:"id" json:"-"`
//		Title string    `json:"title"`
//	}
//
// Types implementing encoding.TextUnmarshaler, such as uuid.UUID, are parsed
// through UnmarshalText. Failures wrap one of the package sentinel errors,
// which the handler package maps to 400 responses.
package binder
