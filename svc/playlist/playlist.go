package playlist

import (
	"github.com/google/uuid"

	"github.com/streamkit/platform/pkg/store"
	"github.com/streamkit/platform/pkg/tenant"
)

// DefaultName is the name of the playlist every tenant is provisioned with.
const DefaultName = "Uploads"

type Playlist struct {
	store.Model
	tenant.Ownership
	Name      string `db:"name" json:"name"`
	IsDefault bool   `db:"is_default" json:"is_default"`
}

func (p *Playlist) TableName() string { return "playlists" }

func (p *Playlist) Fields() map[string]any {
	return p.Columns(map[string]any{
		"tenant_id":  p.TenantID.String(),
		"name":       p.Name,
		"is_default": p.IsDefault,
	})
}

// Item places a video at a position in a playlist. Positions start at zero.
type Item struct {
	store.Model
	tenant.Ownership
	PlaylistID uuid.UUID `db:"playlist_id" json:"playlist_id"`
	VideoID    uuid.UUID `db:"video_id" json:"video_id"`
	Position   int64     `db:"position" json:"position"`
}

func (i *Item) TableName() string { return "playlist_items" }

func (i *Item) Fields() map[string]any {
	return i.Columns(map[string]any{
		"tenant_id":   i.TenantID.String(),
		"playlist_id": i.PlaylistID.String(),
		"video_id":    i.VideoID.String(),
		"position":    i.Position,
	})
}

// NewDefault returns an unsaved default playlist. Its owner is left unset so
// that the stamping hook assigns the tenant of the batch.
func NewDefault() *Playlist {
	return &Playlist{Name: DefaultName, IsDefault: true}
}
