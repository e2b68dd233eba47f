package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected int
	}{
		{"", "", 0},
		{"name", "name", 0},
		{"", "ref", 3},
		{"ref", "", 3},
		{"a", "b", 1},
		{"nam", "name", 1},
		{"kitten", "sitting", 3},
		{"parent_id", "partner_id", 3},
		{"child_ids", "chlid_ids", 2},
		{"Name", "name", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.expected, Levenshtein(tt.b, tt.a), "distance must be symmetric")
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("ref", "ref"), 1e-9)
	assert.InDelta(t, 0.75, Similarity("nam", "name"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
}

func TestScore(t *testing.T) {
	assert.InDelta(t, 1.0, Score("PartnerID", "partner_id"), 1e-9)
	assert.InDelta(t, 1.0, Score("partner", "partner_id"), 1e-9)
	assert.InDelta(t, 1.0, Score("tags", "tags_ids"), 1e-9)
	assert.Less(t, Score("name", "write_date"), DefaultThreshold)
}
