package scopes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/streamkit/platform/pkg/scopes"
)

func TestParseJoin(t *testing.T) {
	t.Parallel()

	assert.Nil(t, scopes.Parse("   "))
	got := scopes.Parse(" platform.tenants.read  videos.write ")
	assert.Equal(t, []string{"platform.tenants.read", "videos.write"}, got)
	assert.Equal(t, "platform.tenants.read videos.write", scopes.Join(got))
}

func TestMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scope, pattern string
		want           bool
	}{
		{"platform.tenants.read", "platform.tenants.read", true},
		{"platform.tenants.read", "*", true},
		{"platform.tenants.read", "platform.*", true},
		{"platform.tenants.read", "platform.tenants.*", true},
		{"platform", "platform.*", false},
		{"platformx.read", "platform.*", false},
		{"platform.tenants.write", "platform.tenants.read", false},
	}
	for _, tt := range tests {
		t.Run(tt.scope+"~"+tt.pattern, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, scopes.Matches(tt.scope, tt.pattern))
		})
	}
}

func TestHas(t *testing.T) {
	t.Parallel()

	granted := []string{"platform.tenants.*", "videos.read"}
	assert.True(t, scopes.Has(granted, "platform.tenants.write"))
	assert.False(t, scopes.Has(granted, "videos.write"))
	assert.True(t, scopes.HasAll(granted, []string{"videos.read", "platform.tenants.read"}))
	assert.False(t, scopes.HasAll(granted, []string{"videos.read", "videos.write"}))
	assert.True(t, scopes.HasAll(nil, nil))
	assert.True(t, scopes.HasAny(granted, []string{"videos.write", "videos.read"}))
	assert.False(t, scopes.HasAny(nil, []string{"videos.read"}))
	assert.True(t, scopes.HasAny(nil, nil))
}
