package video

import "errors"

var ErrInvalidTransition = errors.New("video: invalid status transition")
