package hydrogen

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLowerLevel(t *testing.T) {
	assert.Equal(t, 1, LowerLevel("Lyman"))
	assert.Equal(t, 2, LowerLevel("BALMER"))
	assert.Equal(t, 3, LowerLevel("Paschen"))
	assert.Equal(t, 3, LowerLevel(""))
}

func TestWavelength(t *testing.T) {
	cases := []struct {
		series string
		n      int
		want   float64
	}{
		{"Lyman", 2, 121.502273},
		{"Balmer", 3, 656.112276},
		{"Paschen", 4, 1874.606504},
	}
	for _, tc := range cases {
		got, err := Wavelength(tc.series, tc.n, DefaultRydberg)
		require.NoError(t, err)
		assert.InDelta(t, tc.want, got, 1e-5, "%s n=%d", tc.series, tc.n)
	}
}

func TestWavelength_SeriesLimit(t *testing.T) {
	for _, n := range []int{1, 2, 0} {
		_, err := Wavelength("Balmer", n, DefaultRydberg)
		assert.ErrorIs(t, err, ErrSeriesLimit, "n=%d", n)
	}
}

func TestCompare(t *testing.T) {
	lines := []Line{
		{Series: "Lyman", N: 2, LambdaNM: 121.567},
		{Series: "Balmer", N: 3, LambdaNM: 656.28},
		{Series: "Balmer", N: 2, LambdaNM: 500},
	}

	rep := Compare(lines, DefaultRydberg)
	assert.Equal(t, StatusOK, rep.Status)
	require.Len(t, rep.Lines, 3)

	require.NotNil(t, rep.Lines[0].RelError)
	assert.InDelta(t, 5.324355e-4, *rep.Lines[0].RelError, 1e-9)
	assert.NotEmpty(t, rep.Lines[2].Error)
	assert.Nil(t, rep.Lines[2].AWUTNM)

	require.NotNil(t, rep.Summary)
	assert.Equal(t, 2, rep.Summary.NLines)
	assert.InDelta(t, (5.324355e-4+2.555671e-4)/2, rep.Summary.MeanRelError, 1e-9)
	assert.InDelta(t, 5.324355e-4, rep.Summary.MaxRelError, 1e-9)
}

func TestCompare_NoUsableLines(t *testing.T) {
	rep := Compare([]Line{{Series: "Lyman", N: 1, LambdaNM: 100}}, DefaultRydberg)
	assert.Nil(t, rep.Summary)
}

func TestParse(t *testing.T) {
	lines, err := Parse(strings.NewReader("series,n,lambda_nm\nLyman,2,121.567\nBalmer, 3, 656.28\n"))
	require.NoError(t, err)
	assert.Equal(t, []Line{
		{Series: "Lyman", N: 2, LambdaNM: 121.567},
		{Series: "Balmer", N: 3, LambdaNM: 656.28},
	}, lines)
}

func TestParse_BadLevel(t *testing.T) {
	_, err := Parse(strings.NewReader("series,n,lambda_nm\nLyman,two,121.5\n"))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hydrogen_lines_ref.csv")
	require.NoError(t, os.WriteFile(path, []byte("series,n,lambda_nm\nBalmer,3,656.28\n"), 0o644))

	rep, err := Run(path, DefaultRydberg)
	require.NoError(t, err)
	assert.Equal(t, DefaultRydberg, rep.Rydberg)
	require.NotNil(t, rep.Summary)
	assert.InDelta(t, 2.555671e-4, rep.Summary.MaxRelError, 1e-9)

	_, err = Run(filepath.Join(t.TempDir(), "missing.csv"), DefaultRydberg)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
