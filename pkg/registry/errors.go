package registry

import (
	"errors"
	"strings"

	"github.com/streamkit/platform/pkg/store"
	"github.com/streamkit/platform/pkg/tenant"
)

var ErrCacheDecode = errors.New("registry: failed to decode cached tenant")

// MapConflict translates a unique violation on the tenants table into
// tenant.ErrSlugConflict or tenant.ErrDomainConflict. Other errors are
// returned unchanged. Use it on commits of batches that carry staged tenants.
func MapConflict(err error) error {
	var ce *store.ConflictError
	if !errors.As(err, &ce) {
		return err
	}
	switch {
	case strings.Contains(ce.Key, "custom_domain"):
		return errors.Join(tenant.ErrDomainConflict, err)
	case strings.Contains(ce.Key, "slug"):
		return errors.Join(tenant.ErrSlugConflict, err)
	}
	return err
}
