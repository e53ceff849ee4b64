package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrange_PlacesLargestFirst(t *testing.T) {
	e := New(testSettings(20, 20))

	result, err := e.Arrange([]ArrangeItem{
		{Request: PlaceRequest{SpriteRef: "rock", Footprint: 3}, Quantity: 4},
		{Request: PlaceRequest{SpriteRef: "castle", Footprint: 8}, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Unplaced)
	require.Len(t, result.Placed, 6)

	assert.Equal(t, "castle", result.Placed[0].SpriteRef)
	assert.Equal(t, "castle", result.Placed[1].SpriteRef)
	for _, obj := range result.Placed[2:] {
		assert.Equal(t, "rock", obj.SpriteRef)
	}
	assert.Equal(t, 6, e.Len())
	assertConsistent(t, e)
}

func TestArrange_ReportsOverflow(t *testing.T) {
	e := New(testSettings(12, 12))

	result, err := e.Arrange([]ArrangeItem{{Request: PlaceRequest{SpriteRef: "coral"}, Quantity: 10}})
	require.NoError(t, err)
	assert.Len(t, result.Placed, 4)
	assert.Len(t, result.Unplaced, 6)
	for _, req := range result.Unplaced {
		assert.Equal(t, 6, req.Footprint, "default footprint is recorded on the request")
	}
	assertConsistent(t, e)
}

func TestArrange_ExplicitIDUsedOnce(t *testing.T) {
	e := New(testSettings(20, 20))

	result, err := e.Arrange([]ArrangeItem{{Request: PlaceRequest{ID: "kelp", Footprint: 2}, Quantity: 3}})
	require.NoError(t, err)
	require.Len(t, result.Placed, 3)
	assert.Equal(t, "kelp", result.Placed[0].ID)
	assert.NotEqual(t, "kelp", result.Placed[1].ID)
	assert.NotEqual(t, result.Placed[1].ID, result.Placed[2].ID)
}

func TestArrange_DuplicateIDIsAnError(t *testing.T) {
	e := New(testSettings(20, 20))
	_, err := e.Place(PlaceRequest{ID: "taken"})
	require.NoError(t, err)

	_, err = e.Arrange([]ArrangeItem{{Request: PlaceRequest{ID: "taken"}}})
	assert.ErrorIs(t, err, ErrPreconditionViolation)
}

func TestArrange_RepeatedIDLeavesEngineUntouched(t *testing.T) {
	e := New(testSettings(20, 20))
	_, err := e.Place(PlaceRequest{ID: "anchor", Footprint: 2})
	require.NoError(t, err)

	_, err = e.Arrange([]ArrangeItem{
		{Request: PlaceRequest{SpriteRef: "rock", Footprint: 3}, Quantity: 2},
		{Request: PlaceRequest{ID: "dup", Footprint: 4}},
		{Request: PlaceRequest{ID: "dup", Footprint: 2}},
	})
	assert.ErrorIs(t, err, ErrPreconditionViolation)
	assert.Equal(t, 1, e.Len(), "nothing from the failed call stays placed")
	_, ok := e.Get("dup")
	assert.False(t, ok)
	assert.Equal(t, 4, e.Stats().OccupiedTiles)
	assertConsistent(t, e)
}
