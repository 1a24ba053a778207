package registry

import (
	"strings"

	"github.com/google/uuid"

	"github.com/streamkit/platform/pkg/slug"
	"github.com/streamkit/platform/pkg/tenant"
	"github.com/streamkit/platform/pkg/validator"
)

const maxNameLength = 200

// DefaultReservedSlugs are host labels the platform serves itself.
var DefaultReservedSlugs = []string{"www", "api", "admin", "app", "static", "cdn"}

// normalize fills derived fields and canonicalises identifiers in place.
func normalize(t *tenant.Tenant) {
	t.Name = strings.TrimSpace(t.Name)
	t.Slug = strings.ToLower(strings.TrimSpace(t.Slug))
	if t.Slug == "" {
		t.Slug = slug.Make(t.Name, slug.MaxLength(tenant.MaxLabelLength))
	}
	if t.CustomDomain != nil {
		d := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(*t.CustomDomain)), ".")
		if d == "" {
			t.CustomDomain = nil
		} else {
			t.CustomDomain = &d
		}
	}
	if t.Status == "" {
		t.Status = tenant.StatusActive
	}
	if t.Settings == nil {
		t.Settings = tenant.Settings{}
	}
}

func (r *Registry) validate(t *tenant.Tenant) error {
	_, reserved := r.reserved[t.Slug]
	_, uuidErr := uuid.Parse(t.Slug)

	rules := []validator.Rule{
		validator.Required("name", t.Name),
		validator.MaxLen("name", t.Name, maxNameLength),
		validator.Satisfies("slug", tenant.ValidLabel, t.Slug,
			"validation.slug", "must be a lowercase DNS label"),
		validator.Satisfies("slug", func(string) bool { return !reserved && uuidErr != nil }, t.Slug,
			"validation.slug_reserved", "is reserved"),
		validator.OneOf("status", t.Status, tenant.StatusActive, tenant.StatusSuspended, tenant.StatusDeleted),
	}
	if t.CustomDomain != nil {
		rules = append(rules, validator.Satisfies("custom_domain", tenant.ValidDomain, *t.CustomDomain,
			"validation.domain", "must be a valid domain name"))
	}
	return validator.Apply(rules...)
}
