package playlist

import "errors"

var ErrDefaultPlaylist = errors.New("playlist: default playlist cannot be deleted")
