package changeset

import (
	"sort"
	"strconv"
	"strings"
)

// ItemChangeKind tags an ItemChange variant
type ItemChangeKind string

const (
	ItemAdded    ItemChangeKind = "added"
	ItemRemoved  ItemChangeKind = "removed"
	ItemModified ItemChangeKind = "modified"
)

// FieldDiff is one changed field, either top-level or inside an item.
// Images is set only for the images sub-field of an item.
type FieldDiff struct {
	Field  string     `json:"field"`
	Label  string     `json:"label"`
	From   any        `json:"from"`
	To     any        `json:"to"`
	Images *ImageDiff `json:"images,omitempty"`
	Kind   FieldKind  `json:"-"`
}

// ItemChange is an added, removed or modified line item.
// Item is set for added and removed items, Fields for modified ones.
type ItemChange struct {
	Kind   ItemChangeKind `json:"type"`
	Index  int            `json:"index"`
	Item   Record         `json:"item,omitempty"`
	Fields []FieldDiff    `json:"changes,omitempty"`
}

// ValueChange is a caller-supplied before/after pair for one item sub-field
type ValueChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// ItemChangeDescriptor is an explicit item change built by the caller
type ItemChangeDescriptor struct {
	Type    string                 `json:"type"`
	Index   int                    `json:"index"`
	Item    Record                 `json:"item,omitempty"`
	Changes map[string]ValueChange `json:"changes,omitempty"`
}

// ItemFields lists the tracked item sub-fields in summary order
var ItemFields = []FieldDescriptor{
	{Key: "quality", DisplayName: "Quality", Kind: FieldReference},
	{Key: "quantity", DisplayName: "Quantity", Kind: FieldQuantity},
	{Key: "description", DisplayName: "Description", Kind: FieldText},
	{Key: "images", DisplayName: "Images", Kind: FieldItems},
}

// ReconcileItems aligns two item lists by position.
func ReconcileItems(oldItems, newItems []Record) []ItemChange {
	n := len(oldItems)
	if len(newItems) > n {
		n = len(newItems)
	}

	var changes []ItemChange
	for i := 0; i < n; i++ {
		switch {
		case i >= len(oldItems):
			changes = append(changes, ItemChange{Kind: ItemAdded, Index: i, Item: newItems[i]})
		case i >= len(newItems):
			changes = append(changes, ItemChange{Kind: ItemRemoved, Index: i, Item: oldItems[i]})
		default:
			if fields := diffItem(oldItems[i], newItems[i]); len(fields) > 0 {
				changes = append(changes, ItemChange{Kind: ItemModified, Index: i, Fields: fields})
			}
		}
	}
	return changes
}

// NormalizeItemChanges converts explicit descriptors into ItemChanges
// ordered by index. oldItems is only consulted to fill gaps the caller
// left in a descriptor.
func NormalizeItemChanges(oldItems []Record, descriptors []ItemChangeDescriptor) []ItemChange {
	var changes []ItemChange
	for _, d := range descriptors {
		switch strings.ToLower(strings.TrimSpace(d.Type)) {
		case "added", "add":
			item := d.Item
			if item == nil {
				item = Record{}
			}
			changes = append(changes, ItemChange{Kind: ItemAdded, Index: d.Index, Item: item})
		case "removed", "remove", "deleted":
			item := d.Item
			if item == nil && d.Index >= 0 && d.Index < len(oldItems) {
				item = oldItems[d.Index]
			}
			changes = append(changes, ItemChange{Kind: ItemRemoved, Index: d.Index, Item: item})
		case "updated", "update", "modified":
			var fields []FieldDiff
			if len(d.Changes) > 0 {
				fields = diffDescribed(d.Changes)
			} else if d.Item != nil && d.Index >= 0 && d.Index < len(oldItems) {
				fields = diffItem(oldItems[d.Index], d.Item)
			}
			if len(fields) > 0 {
				changes = append(changes, ItemChange{Kind: ItemModified, Index: d.Index, Fields: fields})
			}
		}
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Index < changes[j].Index
	})
	return changes
}

func diffItem(oldItem, newItem Record) []FieldDiff {
	var fields []FieldDiff
	for _, f := range ItemFields {
		if diff, ok := diffSubField(f, oldItem[f.Key], newItem[f.Key]); ok {
			fields = append(fields, diff)
		}
	}
	return fields
}

func diffDescribed(changes map[string]ValueChange) []FieldDiff {
	var fields []FieldDiff
	for _, f := range ItemFields {
		c, ok := changes[f.Key]
		if !ok {
			continue
		}
		if diff, ok := diffSubField(f, c.From, c.To); ok {
			fields = append(fields, diff)
		}
	}
	return fields
}

func diffSubField(f FieldDescriptor, from, to any) (FieldDiff, bool) {
	diff := FieldDiff{Field: f.Key, Label: f.DisplayName, From: from, To: to, Kind: f.Kind}
	if f.Kind == FieldItems {
		images := DiffImages(imageURLs(from), imageURLs(to))
		if !images.Changed() {
			return FieldDiff{}, false
		}
		diff.Images = &images
		return diff, true
	}
	if EqualRaw(from, to, f.Kind) {
		return FieldDiff{}, false
	}
	return diff, true
}

// asRecords converts a raw items value into records. ok is false when the
// value is not a list or contains entries that are not objects.
func asRecords(raw any) (records []Record, count int, ok bool) {
	switch v := raw.(type) {
	case nil:
		return nil, 0, true
	case []Record:
		return v, len(v), true
	case []any:
		records = make([]Record, 0, len(v))
		ok = true
		for _, item := range v {
			m, isMap := item.(map[string]any)
			if !isMap {
				ok = false
				continue
			}
			records = append(records, m)
		}
		return records, len(v), ok
	}
	return nil, 0, false
}

// ParseItemChangeDescriptors reads explicit descriptors from a raw patch value
func ParseItemChangeDescriptors(raw any) ([]ItemChangeDescriptor, bool) {
	switch v := raw.(type) {
	case []ItemChangeDescriptor:
		return v, true
	case []any:
		out := make([]ItemChangeDescriptor, 0, len(v))
		for _, entry := range v {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, parseDescriptor(m))
		}
		return out, true
	}
	return nil, false
}

func parseDescriptor(m map[string]any) ItemChangeDescriptor {
	d := ItemChangeDescriptor{Type: stringAttr(m, "type"), Index: -1}
	if idx, ok := toFloat(m["index"]); ok {
		d.Index = int(idx)
	} else if s, ok := m["index"].(string); ok {
		if idx, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			d.Index = idx
		}
	}
	if item, ok := m["item"].(map[string]any); ok {
		d.Item = item
	}
	if changes, ok := m["changes"].(map[string]any); ok {
		d.Changes = make(map[string]ValueChange, len(changes))
		for key, c := range changes {
			pair, ok := c.(map[string]any)
			if !ok {
				d.Changes[key] = ValueChange{To: c}
				continue
			}
			vc := ValueChange{From: pair["from"], To: pair["to"]}
			if _, has := pair["from"]; !has {
				vc.From = pair["old"]
			}
			if _, has := pair["to"]; !has {
				vc.To = pair["new"]
			}
			d.Changes[key] = vc
		}
	}
	return d
}
