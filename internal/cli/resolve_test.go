package cli

import (
	"testing"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchID(t *testing.T) {
	ids := []string{"ab12cd34", "ab98ef56", "ff00aa11"}

	tests := []struct {
		name    string
		arg     string
		want    string
		found   bool
		wantErr error
	}{
		{name: "exact", arg: "ab12cd34", want: "ab12cd34", found: true},
		{name: "prefix", arg: "ab1", want: "ab12cd34", found: true},
		{name: "suffix", arg: "ef56", want: "ab98ef56", found: true},
		{name: "case insensitive", arg: "FF00", want: "ff00aa11", found: true},
		{name: "ambiguous", arg: "ab", wantErr: domain.ErrAmbiguousID},
		{name: "no match", arg: "zz", found: false},
		{name: "empty", arg: "  ", wantErr: domain.ErrMissingID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, err := matchID(ids, tt.arg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveCategoryID_ByName(t *testing.T) {
	d, _ := newTestDeps(t)

	id, err := resolveCategoryID(d.c.State, "personal")
	require.NoError(t, err)
	assert.Equal(t, "Personal", categoryName(d.c.State, id))

	_, err = resolveCategoryID(d.c.State, "garden")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}
