package domain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWordCloud(t *testing.T) {
	ds := mustParse(t, sampleCSV)

	wc, err := BuildWordCloud(Filter(ds, DefaultCriteria(ds)))

	require.NoError(t, err)
	require.NotEmpty(t, wc.Words)
	assert.Equal(t, WordWeight{Word: "heavy", Count: 2, Weight: 1}, wc.Words[0])
	assert.Equal(t, WordWeight{Word: "rain", Count: 2, Weight: 1}, wc.Words[1])
	assert.Equal(t, 0.5, wc.Words[2].Weight)

	for _, w := range wc.Words {
		assert.NotContains(t, []string{"the", "after"}, w.Word, "stopwords removed")
	}
}

func TestBuildWordCloud_Tokens(t *testing.T) {
	tests := []struct {
		name    string
		details string
		want    map[string]int
	}{
		{
			name:    "plural folded into singular",
			details: "flood floods Flood",
			want:    map[string]int{"flood": 3},
		},
		{
			name:    "plural kept without singular",
			details: "rivers rivers",
			want:    map[string]int{"rivers": 2},
		},
		{
			name:    "possessive stripped and numbers dropped",
			details: "Assam's 2012 embankment's breach",
			want:    map[string]int{"assam": 1, "embankment": 1, "breach": 1},
		},
		{
			name:    "single letters dropped",
			details: "a b c levee",
			want:    map[string]int{"levee": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wc, err := BuildWordCloud(viewOf(FloodRecord{Details: tt.details}))
			require.NoError(t, err)

			got := make(map[string]int, len(wc.Words))
			for _, w := range wc.Words {
				got[w.Word] = w.Count
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildWordCloud_MaxWords(t *testing.T) {
	words := make([]string, 0, 250)
	for i := 0; i < 250; i++ {
		words = append(words, fmt.Sprintf("term%c%c", 'a'+i/26, 'a'+i%26))
	}
	wc, err := BuildWordCloud(viewOf(FloodRecord{Details: strings.Join(words, " ")}))

	require.NoError(t, err)
	assert.Len(t, wc.Words, MaxCloudWords)
}

func TestBuildWordCloud_MissingDetails(t *testing.T) {
	view := &FilteredView{Records: []FloodRecord{{Year: 2010, MainCause: "Rain"}}, HasDetails: false}

	wc, err := BuildWordCloud(view)

	require.Error(t, err)
	assert.True(t, IsMissingColumn(err, ColDetails))
	assert.Empty(t, wc.Words)

	// The remaining blocks are unaffected by the absent column.
	assert.Len(t, BuildMap(view).Markers, 1)
	assert.Equal(t, []YearCount{{Year: 2010, Count: 1}}, BuildTimeSeries(view))
}

func TestBuildWordCloud_NoWords(t *testing.T) {
	tests := map[string]*FilteredView{
		"all details empty": viewOf(FloodRecord{}, FloodRecord{}),
		"only stopwords":    viewOf(FloodRecord{Details: "the and of it's"}),
	}
	for name, view := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := BuildWordCloud(view)
			assert.ErrorIs(t, err, ErrNoWords)
		})
	}
}
