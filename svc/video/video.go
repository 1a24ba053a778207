package video

import (
	"github.com/google/uuid"

	"github.com/streamkit/platform/pkg/store"
	"github.com/streamkit/platform/pkg/tenant"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Video is a tenant-owned upload. Only metadata lives here; media storage is
// handled elsewhere.
type Video struct {
	store.Model
	tenant.Ownership
	Title           string `db:"title" json:"title"`
	Description     string `db:"description" json:"description"`
	Status          Status `db:"status" json:"status"`
	DurationSeconds int64  `db:"duration_seconds" json:"duration_seconds"`
}

func (v *Video) TableName() string { return "videos" }

func (v *Video) Fields() map[string]any {
	return v.Columns(map[string]any{
		"tenant_id":        v.TenantID.String(),
		"title":            v.Title,
		"description":      v.Description,
		"status":           string(v.Status),
		"duration_seconds": v.DurationSeconds,
	})
}

type Comment struct {
	store.Model
	tenant.Ownership
	VideoID uuid.UUID `db:"video_id" json:"video_id"`
	Author  string    `db:"author" json:"author"`
	Body    string    `db:"body" json:"body"`
}

func (c *Comment) TableName() string { return "comments" }

func (c *Comment) Fields() map[string]any {
	return c.Columns(map[string]any{
		"tenant_id": c.TenantID.String(),
		"video_id":  c.VideoID.String(),
		"author":    c.Author,
		"body":      c.Body,
	})
}
