// Package pg connects the platform to PostgreSQL through pgx/v5.
//
// Connect opens a *pgxpool.Pool with linear retry. Open bridges that pool to
// database/sql for the store engine and for goose. Migrate applies the embedded
// goose migrations. Dialect tells store.DB how to format bind variables and how
// to recognise unique violations (SQLSTATE 23505), whose constraint name becomes
// the key of the resulting *store.ConflictError.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	sqlDB := pg.Open(pool)
//	if err := pg.Migrate(ctx, sqlDB, migrations.FS, log); err != nil {
//		return err
//	}
//	db := store.New(sqlDB, pg.Dialect, store.WithFilter(filters))
package pg
