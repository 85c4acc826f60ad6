package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewItem(t *testing.T) {
	it := NewItem("Widget", 42, "a widget")

	assert.NotEqual(t, uuid.Nil, it.ID)
	assert.Equal(t, "Widget", it.Name)
	assert.Equal(t, int64(42), it.Value)
	assert.Equal(t, "a widget", it.Description)
	assert.Equal(t, time.UTC, it.CreatedAt.Location())
	assert.True(t, it.CreatedAt.Equal(it.UpdatedAt))
}

func TestItemTouch(t *testing.T) {
	it := NewItem("Widget", 1, "x")
	created := it.CreatedAt

	later := time.Now().UTC().Add(time.Minute)
	it.Touch(later)

	assert.True(t, it.CreatedAt.Equal(created))
	assert.True(t, it.UpdatedAt.Equal(later))
}

func TestItemSchema(t *testing.T) {
	s := Schema()

	assert.Equal(t, "Item", s.Entity)
	assert.Equal(t, "items", s.Table)
	assert.Equal(t, "value", s.NumericField)
	assert.True(t, s.CanSort("created_at"))
	assert.True(t, s.CanSearch("description"))
	assert.False(t, s.CanSort("description"))
	assert.False(t, s.CanSearch("value"))
}
