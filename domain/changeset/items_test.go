package changeset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(quality string, quantity any, description string, images ...string) Record {
	imgs := make([]any, len(images))
	for i, u := range images {
		imgs[i] = u
	}
	return Record{
		"quality":     map[string]any{"id": "q-" + quality, "name": quality},
		"quantity":    quantity,
		"description": description,
		"images":      imgs,
	}
}

func TestReconcileItems_Addition(t *testing.T) {
	a := item("Cotton", 10.0, "Blue")
	b := item("Silk", 4.0, "Red")
	c := item("Linen", 2.0, "White")

	changes := ReconcileItems([]Record{a, b}, []Record{a, b, c})

	require.Len(t, changes, 1)
	assert.Equal(t, ItemAdded, changes[0].Kind)
	assert.Equal(t, 2, changes[0].Index)
	assert.Equal(t, c, changes[0].Item)
}

func TestReconcileItems_Removal(t *testing.T) {
	a := item("Cotton", 10.0, "Blue")
	b := item("Silk", 4.0, "Red")

	changes := ReconcileItems([]Record{a, b}, []Record{a})

	require.Len(t, changes, 1)
	assert.Equal(t, ItemRemoved, changes[0].Kind)
	assert.Equal(t, 1, changes[0].Index)
	assert.Equal(t, b, changes[0].Item)
}

func TestReconcileItems_Modification(t *testing.T) {
	before := item("Cotton", 10.0, "Blue", "u/a.jpg")
	after := item("Silk", "10", " Blue ", "u/a.jpg", "u/b.jpg")

	changes := ReconcileItems([]Record{before}, []Record{after})

	require.Len(t, changes, 1)
	change := changes[0]
	assert.Equal(t, ItemModified, change.Kind)
	require.Len(t, change.Fields, 2)
	assert.Equal(t, "quality", change.Fields[0].Field)
	assert.Equal(t, "images", change.Fields[1].Field)
	require.NotNil(t, change.Fields[1].Images)
	assert.Equal(t, []string{"u/b.jpg"}, change.Fields[1].Images.Added)

	assert.Equal(t, []string{
		"Item 1: Quality: Cotton → Silk",
		"Item 1: Added 1 image(s) (1 → 2 images)",
		"    + b.jpg",
	}, Summarize(nil, changes, nil, nil))
}

func TestReconcileItems_NoOpPatch(t *testing.T) {
	before := item("Cotton", 0.0, "Blue")
	after := item("Cotton", nil, "Blue")
	delete(after, "images")

	assert.Empty(t, ReconcileItems([]Record{before}, []Record{after}),
		"zero quantity and missing images are both unset")
}

func TestNormalizeItemChanges(t *testing.T) {
	var patch Record
	require.NoError(t, json.Unmarshal([]byte(`{
		"itemChanges": [
			{"type": "added", "index": 2, "item": {"quality": {"name": "Linen"}, "quantity": 3}},
			{"type": "updated", "index": 1, "changes": {"quantity": {"from": 5, "to": 8}, "description": {"old": "Red", "new": "Red"}}},
			{"type": "removed", "index": 0},
			{"type": "updated", "index": 3, "changes": {"quantity": {"from": 1, "to": "1"}}}
		]
	}`), &patch))

	descriptors, ok := ParseItemChangeDescriptors(patch[ItemChangesKey])
	require.True(t, ok)

	old := []Record{item("Cotton", 10.0, "Blue")}
	changes := NormalizeItemChanges(old, descriptors)

	require.Len(t, changes, 3)
	assert.Equal(t, ItemRemoved, changes[0].Kind)
	assert.Equal(t, old[0], changes[0].Item, "removed item is filled from the old list")
	assert.Equal(t, ItemModified, changes[1].Kind)
	require.Len(t, changes[1].Fields, 1)
	assert.Equal(t, "quantity", changes[1].Fields[0].Field)
	assert.Equal(t, ItemAdded, changes[2].Kind)

	assert.Equal(t, []string{
		"Item 1: Removed item",
		"  • Quality: Cotton",
		"  • Quantity: 10",
		"  • Description: Blue",
		"Item 2: Quantity: 5 → 8",
		"Item 3: Added new item",
		"  • Quality: Linen",
		"  • Quantity: 3",
	}, Summarize(nil, changes, nil, nil))
}

func TestNormalizeItemChanges_UpdatedWithWholeItem(t *testing.T) {
	old := []Record{item("Cotton", 10.0, "Blue", "x/1.png")}
	descriptors := []ItemChangeDescriptor{
		{Type: "updated", Index: 0, Item: item("Cotton", 10.0, "Navy", "x/2.png")},
	}

	changes := NormalizeItemChanges(old, descriptors)

	require.Len(t, changes, 1)
	assert.Equal(t, []string{
		"Item 1: Description: Blue → Navy",
		"Item 1: Updated images (+1, -1)",
		"    + 2.png",
		"    - 1.png",
	}, Summarize(nil, changes, nil, nil))
}
