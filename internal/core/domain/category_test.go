package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_PathString(t *testing.T) {
	c := Category{
		ID:   "179788",
		Name: "Wiper Blades",
		Path: []string{"Vehicle Parts & Accessories", "Car Parts", "Wiper Blades"},
	}

	assert.Equal(t, "Vehicle Parts & Accessories > Car Parts > Wiper Blades", c.PathString())
	assert.Equal(t, "Vehicle Parts & Accessories", c.Root())
}

func TestCategory_CorpusText(t *testing.T) {
	c := Category{
		ID:   "11700",
		Name: "Baby Nail Care",
		Path: []string{"Baby", "Baby Safety & Health", "Baby Nail Care"},
	}

	assert.Equal(t, "Baby Nail Care - Baby > Baby Safety & Health > Baby Nail Care", c.CorpusText())
}

func TestCategory_Validate(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		wantErr  bool
	}{
		{
			name: "valid leaf",
			category: Category{
				ID: "1", Name: "Wiper Blades",
				Path:  []string{"Automotive", "Wiper Blades"},
				Depth: 2, Leaf: true,
			},
			wantErr: false,
		},
		{
			name: "leaf without path",
			category: Category{
				ID: "2", Name: "Orphan", Leaf: true,
			},
			wantErr: true,
		},
		{
			name: "depth path mismatch",
			category: Category{
				ID: "3", Name: "Bad",
				Path:  []string{"Root", "Bad"},
				Depth: 3, Leaf: true,
			},
			wantErr: true,
		},
		{
			name:     "missing id",
			category: Category{Name: "No ID"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.category.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCorpusInfo_IsStale(t *testing.T) {
	fresh := CorpusInfo{BuiltAt: time.Now().Add(-24 * time.Hour)}
	old := CorpusInfo{BuiltAt: time.Now().Add(-100 * 24 * time.Hour)}
	never := CorpusInfo{}

	assert.False(t, fresh.IsStale(DefaultCorpusMaxAge))
	assert.True(t, old.IsStale(DefaultCorpusMaxAge))
	assert.True(t, never.IsStale(DefaultCorpusMaxAge))
}

func TestCandidateSet_Lookup(t *testing.T) {
	set := CandidateSet{
		{CategoryID: "100", Name: "Wiper Blades", Similarity: 0.81},
		{CategoryID: "200", Name: "Headlight Bulbs", Similarity: 0.55},
	}

	assert.False(t, set.IsEmpty())
	assert.Equal(t, "100", set.Top().CategoryID)
	assert.True(t, set.Contains("200"))
	assert.False(t, set.Contains("999"))

	c, ok := set.Find("200")
	require.True(t, ok)
	assert.Equal(t, "Headlight Bulbs", c.Name)

	_, ok = set.Find("999")
	assert.False(t, ok)
}

func TestCandidateSet_Empty(t *testing.T) {
	var set CandidateSet
	assert.True(t, set.IsEmpty())
}
