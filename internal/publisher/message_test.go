package publisher

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editorial_catalog/internal/domain"
)

func TestMessageType(t *testing.T) {
	tests := []struct {
		entity domain.Entity
		action domain.EventAction
		want   string
	}{
		{domain.EntityArticle, domain.ActionCreated, "article.created"},
		{domain.EntityArticle, domain.ActionFeaturedToggled, "article." + string(domain.ActionFeaturedToggled)},
		{domain.EntityTag, domain.ActionMerged, "tag.merged"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := MessageType(domain.CatalogEvent{Entity: tt.entity, Action: tt.action})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoutingKey(t *testing.T) {
	event := domain.CatalogEvent{Entity: domain.EntityCategory, Action: domain.ActionReordered}
	assert.Equal(t, "catalog.category.reordered", RoutingKey("catalog", event))
}

func TestCatalogMessage_FlatJSON(t *testing.T) {
	msg := CatalogMessage{
		ID: "0b6f1c8e-3a52-4c1e-9d4f-5b8f0c2a7e11",
		CatalogEvent: domain.CatalogEvent{
			Entity:    domain.EntityCategory,
			Action:    domain.ActionDeleted,
			EntityID:  4,
			Slug:      "sprache",
			Timestamp: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		},
	}

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.Equal(t, msg.ID, raw["id"])
	assert.Equal(t, "category", raw["entity"])
	assert.Equal(t, "sprache", raw["slug"])
	assert.EqualValues(t, 4, raw["entityId"])
	assert.NotContains(t, raw, "CatalogEvent")
}
