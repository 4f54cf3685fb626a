package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identity "wishlist/internal/identity/models"
)

func TestItemViewForViewer(t *testing.T) {
	const ownerID = 7
	item := priced("100")
	require.NoError(t, item.ApplyContribution(identity.UserActor(1, "Ann", "ann"), dec("100"), item.UpdatedAt))

	t.Run("owner never sees reservation state", func(t *testing.T) {
		v := ViewFor(item, ownerID, ownerID)
		assert.False(t, v.IsReserved)
		assert.True(t, v.CollectedAmount.IsZero())
		assert.Nil(t, v.ReservedByName)
		assert.Empty(t, v.Contributors)
	})

	t.Run("other viewers and anonymous callers see everything", func(t *testing.T) {
		for _, viewer := range []int64{0, 1, 2} {
			v := ViewFor(item, viewer, ownerID)
			assert.True(t, v.IsReserved)
			assert.True(t, v.CollectedAmount.Equal(dec("100")))
			assert.Len(t, v.Contributors, 1)
		}
	})

	t.Run("filtering leaves the stored item untouched", func(t *testing.T) {
		_ = ViewFor(item, ownerID, ownerID)
		assert.True(t, item.IsReserved)
		assert.Len(t, item.Contributors, 1)
	})

	t.Run("owner view serializes zeroed ledger fields", func(t *testing.T) {
		out, err := json.Marshal(ViewFor(item, ownerID, ownerID))
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(out, &body))
		assert.Equal(t, false, body["is_reserved"])
		assert.Equal(t, float64(0), body["collected_amount"])
		assert.Nil(t, body["reserved_by_name"])
		assert.Equal(t, []any{}, body["contributors"])
		assert.Equal(t, float64(100), body["price"])
	})
}
