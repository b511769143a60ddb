package changeset

import (
	"fmt"
)

// ItemCountDelta reports an item count change when per-item diffs
// could not be computed
type ItemCountDelta struct {
	Before int `json:"before"`
	After  int `json:"after"`
}

// Summarize renders the ordered human-readable summary: tracked fields,
// then item changes by index, then the item count fallback, then
// untracked fields.
func Summarize(fields []FieldDiff, items []ItemChange, delta *ItemCountDelta, generic []FieldDiff) []string {
	lines := []string{}
	for _, f := range fields {
		lines = append(lines, fieldLine(f))
	}
	for _, c := range items {
		lines = append(lines, itemLines(c)...)
	}
	if delta != nil && delta.Before != delta.After {
		lines = append(lines, countLine(*delta))
	}
	for _, f := range generic {
		lines = append(lines, fieldLine(f))
	}
	return lines
}

func fieldLine(f FieldDiff) string {
	return fmt.Sprintf("%s: %s → %s", f.Label, render(f.From, f.Kind), render(f.To, f.Kind))
}

func itemLines(c ItemChange) []string {
	n := c.Index + 1
	switch c.Kind {
	case ItemAdded:
		return append([]string{fmt.Sprintf("Item %d: Added new item", n)}, itemDetails(c.Item)...)
	case ItemRemoved:
		return append([]string{fmt.Sprintf("Item %d: Removed item", n)}, itemDetails(c.Item)...)
	}

	var lines []string
	for _, f := range c.Fields {
		if f.Images == nil {
			lines = append(lines, fmt.Sprintf("Item %d: %s", n, fieldLine(f)))
			continue
		}
		lines = append(lines, fmt.Sprintf("Item %d: %s", n, f.Images.Headline()))
		for _, u := range f.Images.Added {
			lines = append(lines, "    + "+ImageName(u))
		}
		for _, u := range f.Images.Removed {
			lines = append(lines, "    - "+ImageName(u))
		}
	}
	return lines
}

// itemDetails lists the populated sub-fields of a whole item
func itemDetails(item Record) []string {
	var lines []string
	for _, f := range ItemFields {
		raw, ok := item[f.Key]
		if !ok {
			continue
		}
		if f.Kind == FieldItems {
			if urls := imageURLs(raw); len(urls) > 0 {
				lines = append(lines, fmt.Sprintf("  • %s: %d image(s)", f.DisplayName, len(urls)))
			}
			continue
		}
		if ParseValue(raw, f.Kind).IsEmpty() {
			continue
		}
		lines = append(lines, fmt.Sprintf("  • %s: %s", f.DisplayName, render(raw, f.Kind)))
	}
	return lines
}

func countLine(d ItemCountDelta) string {
	if d.After > d.Before {
		return fmt.Sprintf("Items: Added %d new item(s) (Total: %d → %d)", d.After-d.Before, d.Before, d.After)
	}
	return fmt.Sprintf("Items: Removed %d item(s) (Total: %d → %d)", d.Before-d.After, d.Before, d.After)
}

// render formats a raw value and falls back to its generic string form
// if formatting panics
func render(raw any, kind FieldKind) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprint(raw)
		}
	}()
	return FormatField(ParseValue(raw, kind), kind)
}
