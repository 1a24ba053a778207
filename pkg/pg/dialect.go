package pg

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/streamkit/platform/pkg/store"
)

// Dialect configures store.DB for pgx through database/sql.
var Dialect = store.Dialect{
	Name:        "postgres",
	Driver:      "pgx",
	Placeholder: sq.Dollar,
	Conflict:    conflictKey,
}
