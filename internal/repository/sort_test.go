package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStoreSort(t *testing.T) {
	cases := []struct {
		field, dir string
		want       Sort
		wantErr    bool
	}{
		{"", "", DefaultStoreSort, false},
		{"name", "asc", Sort{Field: "name"}, false},
		{"averageRating", "DESC", Sort{Field: "averageRating", Desc: true}, false},
		{"ratingCount", "", Sort{Field: "ratingCount", Desc: true}, false},
		{"created_at", "asc", Sort{Field: "created_at"}, false},
		{"\"; DROP TABLE stores; --", "asc", Sort{}, true},
		{"s.name", "asc", Sort{}, true},
		{"name", "sideways", Sort{}, true},
		{"name", "asc; DELETE FROM ratings", Sort{}, true},
		{"AverageRating", "asc", Sort{}, true},
	}
	for _, tc := range cases {
		got, err := ParseStoreSort(tc.field, tc.dir)
		if tc.wantErr {
			require.ErrorIs(t, err, ErrInvalidSort, "%q %q", tc.field, tc.dir)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseUserSort(t *testing.T) {
	s, err := ParseUserSort("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultUserSort, s)

	_, err = ParseUserSort("password_hash", "asc")
	require.ErrorIs(t, err, ErrInvalidSort)
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%cafe%`, likePattern("Cafe"))
	assert.Equal(t, `%100\%\_off%`, likePattern("100%_off"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}
