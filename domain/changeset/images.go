package changeset

import (
	"fmt"
	"strings"
)

// ImageChange classifies an image list diff
type ImageChange string

const (
	ImagesUnchanged ImageChange = "unchanged"
	ImagesAdded     ImageChange = "added"
	ImagesRemoved   ImageChange = "removed"
	ImagesMixed     ImageChange = "mixed"
)

// ImageDiff describes how an ordered list of image references changed
type ImageDiff struct {
	CountBefore    int         `json:"count_before"`
	CountAfter     int         `json:"count_after"`
	Added          []string    `json:"added_urls"`
	Removed        []string    `json:"removed_urls"`
	Classification ImageChange `json:"classification"`
}

// DiffImages compares two image reference lists as sets. Relative order
// within the added and removed lists follows the input lists.
func DiffImages(oldURLs, newURLs []string) ImageDiff {
	oldSet := make(map[string]struct{}, len(oldURLs))
	for _, u := range oldURLs {
		oldSet[u] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(newURLs))
	for _, u := range newURLs {
		newSet[u] = struct{}{}
	}

	diff := ImageDiff{
		CountBefore: len(oldURLs),
		CountAfter:  len(newURLs),
		Added:       []string{},
		Removed:     []string{},
	}
	for _, u := range oldURLs {
		if _, ok := newSet[u]; !ok {
			diff.Removed = append(diff.Removed, u)
		}
	}
	for _, u := range newURLs {
		if _, ok := oldSet[u]; !ok {
			diff.Added = append(diff.Added, u)
		}
	}

	switch {
	case len(diff.Added) > 0 && len(diff.Removed) > 0:
		diff.Classification = ImagesMixed
	case len(diff.Added) > 0:
		diff.Classification = ImagesAdded
	case len(diff.Removed) > 0:
		diff.Classification = ImagesRemoved
	default:
		diff.Classification = ImagesUnchanged
	}
	return diff
}

// Changed reports whether any reference was added or removed
func (d ImageDiff) Changed() bool {
	return d.Classification != ImagesUnchanged
}

// Headline renders the one-line description of the diff, without item prefix.
func (d ImageDiff) Headline() string {
	var line string
	switch d.Classification {
	case ImagesAdded:
		line = fmt.Sprintf("Added %d image(s)", len(d.Added))
	case ImagesRemoved:
		line = fmt.Sprintf("Removed %d image(s)", len(d.Removed))
	case ImagesMixed:
		line = fmt.Sprintf("Updated images (+%d, -%d)", len(d.Added), len(d.Removed))
	default:
		return "Images unchanged"
	}
	if d.CountBefore != d.CountAfter {
		line += fmt.Sprintf(" (%d → %d images)", d.CountBefore, d.CountAfter)
	}
	return line
}

// ImageName extracts the last path segment of a reference for display
func ImageName(ref string) string {
	name := ref
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimRight(name, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return ref
	}
	return name
}

// imageURLs pulls string references out of a raw images value
func imageURLs(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		urls := make([]string, 0, len(v))
		for _, item := range v {
			switch u := item.(type) {
			case string:
				urls = append(urls, u)
			case map[string]any:
				if s := stringAttr(u, "url"); s != "" {
					urls = append(urls, s)
				}
			}
		}
		return urls
	}
	return nil
}
