package changeset

import (
	"sort"
)

// ChangeSet is the structured result of diffing a record against a patch
type ChangeSet struct {
	Changed   map[string]FieldDiff `json:"changed"`
	Old       map[string]any       `json:"old"`
	New       map[string]any       `json:"new"`
	Items     []ItemChange         `json:"items,omitempty"`
	ItemCount *ItemCountDelta      `json:"item_count,omitempty"`
	Summary   []string             `json:"summary"`
}

// Empty returns a change set with nothing changed
func Empty() ChangeSet {
	return ChangeSet{
		Changed: map[string]FieldDiff{},
		Old:     map[string]any{},
		New:     map[string]any{},
		Summary: []string{},
	}
}

// HasChanges reports whether anything changed
func (cs ChangeSet) HasChanges() bool {
	return len(cs.Changed) > 0 || len(cs.Summary) > 0
}

// Build diffs a sparse patch against the current record. Keys absent
// from the patch are never reported. Neither input is modified.
func Build(old, patch Record) ChangeSet {
	cs := Empty()

	var fields []FieldDiff
	for _, f := range TrackedFields {
		if f.Key == ItemsKey {
			continue
		}
		newRaw, ok := patch[f.Key]
		if !ok {
			continue
		}
		oldRaw := old[f.Key]
		if EqualRaw(oldRaw, newRaw, f.Kind) {
			continue
		}
		diff := FieldDiff{Field: f.Key, Label: f.DisplayName, From: oldRaw, To: newRaw, Kind: f.Kind}
		fields = append(fields, diff)
		cs.record(diff)
	}

	items, delta, key := buildItems(old, patch)
	if len(items) > 0 || delta != nil {
		cs.record(FieldDiff{Field: key, Label: "Items", From: old[ItemsKey], To: patch[key], Kind: FieldItems})
	}
	cs.Items = items
	cs.ItemCount = delta

	generic := genericDiffs(old, patch)
	for _, diff := range generic {
		cs.record(diff)
	}

	cs.Summary = Summarize(fields, items, delta, generic)
	return cs
}

func (cs *ChangeSet) record(diff FieldDiff) {
	cs.Changed[diff.Field] = diff
	cs.Old[diff.Field] = diff.From
	cs.New[diff.Field] = diff.To
}

// buildItems picks explicit mode when the patch carries itemChanges and
// positional mode when it carries a full items list.
func buildItems(old, patch Record) ([]ItemChange, *ItemCountDelta, string) {
	oldRecords, oldCount, oldOK := asRecords(old[ItemsKey])

	if raw, ok := patch[ItemChangesKey]; ok {
		if descriptors, ok := ParseItemChangeDescriptors(raw); ok {
			return NormalizeItemChanges(oldRecords, descriptors), nil, ItemChangesKey
		}
	}

	newRaw, ok := patch[ItemsKey]
	if !ok {
		return nil, nil, ItemsKey
	}
	newRecords, newCount, newOK := asRecords(newRaw)
	if !oldOK || !newOK {
		if oldCount != newCount {
			return nil, &ItemCountDelta{Before: oldCount, After: newCount}, ItemsKey
		}
		return nil, nil, ItemsKey
	}
	return ReconcileItems(oldRecords, newRecords), nil, ItemsKey
}

// genericDiffs compares untracked keys present in both the record and the
// patch, in key order.
func genericDiffs(old, patch Record) []FieldDiff {
	keys := make([]string, 0, len(patch))
	for key := range patch {
		if !isGenericKey(key) {
			continue
		}
		if _, ok := old[key]; !ok {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var diffs []FieldDiff
	for _, key := range keys {
		if EqualRaw(old[key], patch[key], FieldAuto) {
			continue
		}
		diffs = append(diffs, FieldDiff{
			Field: key,
			Label: labelFromKey(key),
			From:  old[key],
			To:    patch[key],
			Kind:  FieldAuto,
		})
	}
	return diffs
}
