package sqlite

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/streamkit/platform/pkg/store"
)

// Dialect configures store.DB for go-sqlite3.
var Dialect = store.Dialect{
	Name:        "sqlite3",
	Driver:      "sqlite3",
	Placeholder: sq.Question,
	Conflict:    conflictKey,
}
