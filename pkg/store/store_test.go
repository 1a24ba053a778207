package store_test

import (
	"context"
	"errors"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/platform/pkg/sqlite"
	"github.com/streamkit/platform/pkg/sqlite/sqlitetest"
	"github.com/streamkit/platform/pkg/store"
)

type ownerKey struct{}

var errNoOwner = errors.New("no owner in context")

// ownerFilter guards the playlists table by an owner id carried in the context.
type ownerFilter struct{}

func (ownerFilter) Predicate(ctx context.Context, table string) (sq.Sqlizer, bool, error) {
	if table != "playlists" {
		return nil, false, nil
	}
	id, ok := ctx.Value(ownerKey{}).(uuid.UUID)
	if !ok {
		return nil, true, errNoOwner
	}
	return sq.Eq{"playlists.tenant_id": id.String()}, true, nil
}

func (ownerFilter) Column(table string) (string, bool) {
	if table == "playlists" {
		return "tenant_id", true
	}
	return "", false
}

func withOwner(id uuid.UUID) context.Context {
	return context.WithValue(context.Background(), ownerKey{}, id)
}

type playlist struct {
	store.Model
	TenantID  uuid.UUID `db:"tenant_id"`
	Name      string    `db:"name"`
	IsDefault bool      `db:"is_default"`
}

func (p *playlist) TableName() string { return "playlists" }

func (p *playlist) Fields() map[string]any {
	return p.Columns(map[string]any{
		"tenant_id":  p.TenantID.String(),
		"name":       p.Name,
		"is_default": p.IsDefault,
	})
}

type tenantRow struct {
	store.Model
	Slug         string  `db:"slug"`
	CustomDomain *string `db:"custom_domain"`
	Name         string  `db:"name"`
	Status       string  `db:"status"`
	Settings     string  `db:"settings"`
}

func (t *tenantRow) TableName() string { return "tenants" }

func (t *tenantRow) Fields() map[string]any {
	return t.Columns(map[string]any{
		"slug":          t.Slug,
		"custom_domain": t.CustomDomain,
		"name":          t.Name,
		"status":        t.Status,
		"settings":      t.Settings,
	})
}

func newDB(t *testing.T, opts ...store.Option) *store.DB {
	t.Helper()
	opts = append([]store.Option{store.WithFilter(ownerFilter{})}, opts...)
	return store.New(sqlitetest.Open(t), sqlite.Dialect, opts...)
}

func seed(t *testing.T, db *store.DB, owner uuid.UUID, names ...string) []*playlist {
	t.Helper()
	out := make([]*playlist, 0, len(names))
	b := db.Batch()
	for _, n := range names {
		p := &playlist{TenantID: owner, Name: n}
		b.Insert(p)
		out = append(out, p)
	}
	require.NoError(t, b.Commit(withOwner(owner)))
	return out
}

func TestBatchCommit(t *testing.T) {
	t.Parallel()

	t.Run("prepares generated columns on insert", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		owner := uuid.New()
		p := seed(t, db, owner, "favorites")[0]

		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.False(t, p.CreatedAt.IsZero())
		assert.Equal(t, p.CreatedAt, p.UpdatedAt)

		var got playlist
		require.NoError(t, db.Get(withOwner(owner), &got, store.From("playlists").Where(sq.Eq{"id": p.ID.String()})))
		assert.Equal(t, "favorites", got.Name)
		assert.Equal(t, owner, got.TenantID)
	})

	t.Run("rejects a second commit", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		owner := uuid.New()
		b := db.Batch().Insert(&playlist{TenantID: owner, Name: "once"})
		require.NoError(t, b.Commit(withOwner(owner)))
		assert.ErrorIs(t, b.Commit(withOwner(owner)), store.ErrBatchDone)
	})

	t.Run("rejects an empty batch", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		assert.ErrorIs(t, db.Batch().Commit(context.Background()), store.ErrEmptyBatch)
	})

	t.Run("applies nothing when a later change fails", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		owner := uuid.New()
		existing := seed(t, db, owner, "existing")[0]

		fresh := &playlist{TenantID: owner, Name: "fresh"}
		duplicate := &playlist{Model: store.Model{ID: existing.ID}, TenantID: owner, Name: "duplicate"}
		err := db.Batch().Insert(fresh).Insert(duplicate).Commit(withOwner(owner))
		require.Error(t, err)

		n, err := db.Count(withOwner(owner), store.From("playlists"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("runs hooks over the full change set before applying it", func(t *testing.T) {
		t.Parallel()

		var seen []store.Change
		hook := store.HookFunc(func(_ context.Context, b *store.Batch) error {
			seen = b.Changes()
			return nil
		})
		db := newDB(t, store.WithHooks(hook))
		owner := uuid.New()

		tr := &tenantRow{Slug: "acme", Name: "Acme", Status: "active", Settings: "{}"}
		p := &playlist{TenantID: owner, Name: "mixed"}
		require.NoError(t, db.Batch().Insert(tr).Insert(p).Commit(withOwner(owner)))

		require.Len(t, seen, 2)
		assert.Equal(t, store.OpInsert, seen[0].Op)
		assert.Same(t, tr, seen[0].Record)
		assert.Same(t, p, seen[1].Record)
	})

	t.Run("hook error aborts the batch and runs rollback callbacks in reverse", func(t *testing.T) {
		t.Parallel()

		errHook := errors.New("rejected")
		var order []string
		hook := store.HookFunc(func(_ context.Context, b *store.Batch) error {
			b.OnRollback(func() { order = append(order, "first") })
			b.OnRollback(func() { order = append(order, "second") })
			return errHook
		})
		db := newDB(t, store.WithHooks(hook))
		owner := uuid.New()

		err := db.Batch().Insert(&playlist{TenantID: owner, Name: "never"}).Commit(withOwner(owner))
		assert.ErrorIs(t, err, errHook)
		assert.Equal(t, []string{"second", "first"}, order)

		n, err := db.Count(withOwner(owner), store.From("playlists"))
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("failed commit restores generated columns", func(t *testing.T) {
		t.Parallel()

		errHook := errors.New("rejected")
		reject := false
		hook := store.HookFunc(func(context.Context, *store.Batch) error {
			if reject {
				return errHook
			}
			return nil
		})
		db := newDB(t, store.WithHooks(hook))
		owner := uuid.New()

		kept := &playlist{TenantID: owner, Name: "kept"}
		require.NoError(t, db.Batch().Insert(kept).Commit(withOwner(owner)))
		saved := kept.Model

		reject = true
		fresh := &playlist{TenantID: owner, Name: "fresh"}
		err := db.Batch().Insert(fresh).Update(kept).Commit(withOwner(owner))
		require.ErrorIs(t, err, errHook)

		assert.Equal(t, uuid.Nil, fresh.ID)
		assert.True(t, fresh.CreatedAt.IsZero())
		assert.True(t, fresh.UpdatedAt.IsZero())
		assert.Equal(t, saved, kept.Model)
	})

	t.Run("cancelled context rolls back", func(t *testing.T) {
		t.Parallel()

		rolledBack := false
		hook := store.HookFunc(func(_ context.Context, b *store.Batch) error {
			b.OnRollback(func() { rolledBack = true })
			return nil
		})
		db := newDB(t, store.WithHooks(hook))
		owner := uuid.New()

		ctx, cancel := context.WithCancel(withOwner(owner))
		cancel()

		err := db.Batch().Insert(&playlist{TenantID: owner, Name: "late"}).Commit(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, rolledBack, "hooks never ran, nothing to undo")

		n, err := db.Count(withOwner(owner), store.From("playlists"))
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("reports unique violations as conflicts", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		first := &tenantRow{Slug: "acme", Name: "Acme", Status: "active", Settings: "{}"}
		require.NoError(t, db.Batch().Insert(first).Commit(context.Background()))

		second := &tenantRow{Slug: "acme", Name: "Other", Status: "active", Settings: "{}"}
		err := db.Batch().Insert(second).Commit(context.Background())
		require.ErrorIs(t, err, store.ErrConflict)

		var conflict *store.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "tenants.slug", conflict.Key)
	})
}

func TestFilter(t *testing.T) {
	t.Parallel()

	t.Run("restricts reads to the context owner", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		a, b := uuid.New(), uuid.New()
		seed(t, db, a, "a1", "a2")
		foreign := seed(t, db, b, "b1")[0]

		var got []*playlist
		require.NoError(t, db.Select(withOwner(a), &got, store.From("playlists").OrderBy("name")))
		require.Len(t, got, 2)
		assert.Equal(t, "a1", got[0].Name)
		assert.Equal(t, "a2", got[1].Name)

		var one playlist
		err := db.Get(withOwner(a), &one, store.From("playlists").Where(sq.Eq{"id": foreign.ID.String()}))
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("caller predicates cannot widen the result", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		a, b := uuid.New(), uuid.New()
		seed(t, db, a, "mine")
		seed(t, db, b, "theirs")

		preds := []sq.Sqlizer{
			sq.Expr("1=1 OR 1=1"),
			sq.Or{sq.Eq{"name": "theirs"}, sq.Eq{"name": "mine"}},
			sq.Expr("tenant_id = ? OR tenant_id <> ?", b.String(), b.String()),
		}
		for _, pred := range preds {
			var got []*playlist
			require.NoError(t, db.Select(withOwner(a), &got, store.From("playlists").Where(pred)))
			require.Len(t, got, 1)
			assert.Equal(t, a, got[0].TenantID)
		}
	})

	t.Run("filter error aborts the query", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		var got []*playlist
		err := db.Select(context.Background(), &got, store.From("playlists"))
		assert.ErrorIs(t, err, errNoOwner)

		_, err = db.Count(context.Background(), store.From("playlists"))
		assert.ErrorIs(t, err, errNoOwner)
	})

	t.Run("unguarded tables are not filtered", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		require.NoError(t, db.Batch().Insert(&tenantRow{Slug: "open", Name: "Open", Status: "active", Settings: "{}"}).Commit(context.Background()))

		n, err := db.Count(context.Background(), store.From("tenants"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.False(t, db.Guarded("tenants"))
		assert.True(t, db.Guarded("playlists"))
	})

	t.Run("update never rewrites the guarded column", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		a, b := uuid.New(), uuid.New()
		p := seed(t, db, a, "before")[0]

		p.Name = "after"
		p.TenantID = b
		require.NoError(t, db.Batch().Update(p).Commit(withOwner(a)))

		var got playlist
		require.NoError(t, db.Get(withOwner(a), &got, store.From("playlists").Where(sq.Eq{"id": p.ID.String()})))
		assert.Equal(t, "after", got.Name)
		assert.Equal(t, a, got.TenantID)
	})

	t.Run("update and delete outside the owner match nothing", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		a, b := uuid.New(), uuid.New()
		p := seed(t, db, a, "keep")[0]

		p.Name = "hijacked"
		assert.ErrorIs(t, db.Batch().Update(p).Commit(withOwner(b)), store.ErrNotFound)
		assert.ErrorIs(t, db.Batch().Delete(p).Commit(withOwner(b)), store.ErrNotFound)

		var got playlist
		require.NoError(t, db.Get(withOwner(a), &got, store.From("playlists").Where(sq.Eq{"id": p.ID.String()})))
		assert.Equal(t, "keep", got.Name)
	})
}

func TestQuery(t *testing.T) {
	t.Parallel()

	db := newDB(t)
	owner := uuid.New()
	seed(t, db, owner, "a", "b", "c", "d")
	ctx := withOwner(owner)

	base := store.From("playlists").OrderBy("name")
	onlyA := base.Where(sq.Eq{"name": "a"})
	notA := base.Where(sq.NotEq{"name": "a"})

	var all, as, rest []*playlist
	require.NoError(t, db.Select(ctx, &all, base))
	require.NoError(t, db.Select(ctx, &as, onlyA))
	require.NoError(t, db.Select(ctx, &rest, notA))
	assert.Len(t, all, 4)
	assert.Len(t, as, 1)
	assert.Len(t, rest, 3)

	var page []*playlist
	require.NoError(t, db.Select(ctx, &page, base.Limit(2).Offset(1)))
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].Name)
	assert.Equal(t, "c", page[1].Name)

	n, err := db.Count(ctx, base.Limit(1))
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	assert.Equal(t, "playlists", base.Table())
}
