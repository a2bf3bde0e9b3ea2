package domain

import "time"

type EventAction string

const (
	ActionCreated         EventAction = "created"
	ActionUpdated         EventAction = "updated"
	ActionStatusChanged   EventAction = "status_changed"
	ActionFeaturedToggled EventAction = "featured_toggled"
	ActionArchived        EventAction = "archived"
	ActionDeleted         EventAction = "deleted"
	ActionMerged          EventAction = "merged"
	ActionReordered       EventAction = "reordered"
)

// CatalogEvent describes a committed change to the catalog.
type CatalogEvent struct {
	Entity    Entity      `json:"entity"`
	Action    EventAction `json:"action"`
	EntityID  int64       `json:"entityId"`
	Slug      string      `json:"slug,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
