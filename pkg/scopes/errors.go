package scopes

import "errors"

var ErrInsufficientScope = errors.New("scopes: insufficient scope")
