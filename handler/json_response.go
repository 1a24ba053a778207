package handler

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the envelope of every JSON body written by this package.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

type JSONOption func(*jsonResponse)

func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) {
		r.body.Meta = meta
	}
}

// JSON responds 200 with v under "data". An error value is rendered the same
// way JSONError renders it.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK}

	switch val := v.(type) {
	case JSONResponse:
		r.body = val
	case error:
		info := Classify(val)
		r.status = info.StatusCode
		r.body.Error = info.Detail()
	default:
		r.body.Data = v
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Created responds 201 with v under "data".
func Created(v any) Response {
	return JSON(v, WithJSONStatus(http.StatusCreated))
}

// JSONError renders err through Classify. Messages of unclassified errors are
// never exposed.
func JSONError(err error, opts ...JSONOption) Response {
	info := Classify(err)
	r := &jsonResponse{
		status: info.StatusCode,
		body:   JSONResponse{Error: info.Detail()},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type failure struct {
	err error
}

func (f failure) Render(http.ResponseWriter, *http.Request) error { return f.err }

// Fail hands err to the error handler configured on Wrap, which classifies,
// logs and writes it. Use it instead of JSONError when server-side failures
// must reach the logs.
func Fail(err error) Response {
	return failure{err: err}
}
