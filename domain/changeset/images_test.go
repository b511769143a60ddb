package changeset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffImages(t *testing.T) {
	tests := []struct {
		name           string
		old, new       []string
		added, removed []string
		class          ImageChange
		headline       string
	}{
		{
			name:     "mixed",
			old:      []string{"a", "b"},
			new:      []string{"b", "c"},
			added:    []string{"c"},
			removed:  []string{"a"},
			class:    ImagesMixed,
			headline: "Updated images (+1, -1)",
		},
		{
			name:     "added only",
			old:      []string{"a"},
			new:      []string{"a", "b", "c"},
			added:    []string{"b", "c"},
			removed:  []string{},
			class:    ImagesAdded,
			headline: "Added 2 image(s) (1 → 3 images)",
		},
		{
			name:     "removed only",
			old:      []string{"a", "b"},
			new:      nil,
			added:    []string{},
			removed:  []string{"a", "b"},
			class:    ImagesRemoved,
			headline: "Removed 2 image(s) (2 → 0 images)",
		},
		{
			name:     "reordered is unchanged",
			old:      []string{"a", "b"},
			new:      []string{"b", "a"},
			added:    []string{},
			removed:  []string{},
			class:    ImagesUnchanged,
			headline: "Images unchanged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := DiffImages(tt.old, tt.new)
			assert.Equal(t, tt.added, diff.Added)
			assert.Equal(t, tt.removed, diff.Removed)
			assert.Equal(t, len(tt.old), diff.CountBefore)
			assert.Equal(t, len(tt.new), diff.CountAfter)
			assert.Equal(t, tt.class, diff.Classification)
			assert.Equal(t, tt.headline, diff.Headline())
		})
	}
}

func TestImageName(t *testing.T) {
	assert.Equal(t, "photo.jpg", ImageName("https://cdn.example.com/uploads/po/17/photo.jpg?v=3"))
	assert.Equal(t, "swatch.png", ImageName("/uploads/swatch.png"))
	assert.Equal(t, "plain", ImageName("plain"))
	assert.Equal(t, "dir", ImageName("https://x/dir/"))
}

func TestImageURLs(t *testing.T) {
	raw := []any{"a.jpg", map[string]any{"url": "b.jpg"}, 3.0}
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, imageURLs(raw))
	assert.Nil(t, imageURLs("not a list"))
}
