// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a Context (the request's context.Context plus the
// request and response writer) and a request value filled by binders from
// pkg/binder. It returns a Response:
//
//	type UploadRequest struct {
//		Title string `json:"title"`
//	}
//
//	func upload(ctx handler.Context, req UploadRequest) handler.Response {
//		v, err := videos.Upload(ctx, req.Title)
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.Created(v)
//	}
//
//	r.Post("/videos", handler.Wrap(upload,
//		handler.WithBinders[handler.Context, UploadRequest](binder.JSON()),
//	))
//
// Because Context is the request context, the tenant resolved by
// tenant.Middleware reaches every scoped repository call made with it.
//
// # Errors
//
// Classify turns domain errors into a status code and a stable code string:
// tenant.ErrNotFound becomes 404, tenant.ErrCrossTenantViolation 403, slug and
// domain conflicts 409, validation errors 422 with per-field details. A missing
// tenant context is a wiring defect and is reported as 500 and logged at error
// level. Messages of unclassified errors are never written to the client.
//
// NewErrorHandler and ErrorWriter share that classification: the first plugs
// into Wrap, the second into middleware that takes a plain
// func(http.ResponseWriter, *http.Request, error).
package handler
