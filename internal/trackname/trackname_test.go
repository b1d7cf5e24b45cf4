package trackname_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgmimport/internal/trackname"
)

func TestClassifyTracks(t *testing.T) {
	c := trackname.New("")

	cases := []struct {
		path    string
		ordinal string
		name    string
	}{
		{"042 Title Theme.vgz", "042", "Title Theme"},
		{"01 Green Hill Zone.vgz", "01", "Green Hill Zone"},
		{"Sonic/02 Marble Zone (Act 1).vgz", "02", "Marble Zone (Act 1)"},
		{"100 Boss_Fight - Final, Part-2.vgz", "100", "Boss_Fight - Final, Part-2"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			m, ok, err := c.Classify(tc.path, "Sonic")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tc.ordinal, m.Ordinal)
			assert.Equal(t, tc.name, m.Name)
		})
	}
}

func TestClassifySkipsNonTracks(t *testing.T) {
	c := trackname.New(".vgz")

	for _, p := range []string{"readme.txt", "cover.png", "Sonic/", "01 Intro.VGZ", "01 Intro.vgm", "", ".vgz", "Sonic/.vgz"} {
		_, ok, err := c.Classify(p, "Sonic")
		assert.NoError(t, err, p)
		assert.False(t, ok, p)
	}
}

func TestClassifyPatternErrors(t *testing.T) {
	c := trackname.New(".vgz")

	for _, p := range []string{"abc.vgz", "42title.vgz", "Track One.vgz", "1 Intro.vgz", "1234 Intro.vgz", "01 Bad!Name.vgz", "01  .vgz"} {
		t.Run(p, func(t *testing.T) {
			_, ok, err := c.Classify(p, "Sonic")
			assert.True(t, ok)
			var patternErr *trackname.PatternError
			require.True(t, errors.As(err, &patternErr), "expected PatternError, got %v", err)
			assert.Equal(t, p, patternErr.Path)
			assert.Equal(t, "Sonic", patternErr.Game)
			assert.Equal(t, "entry_name_pattern", patternErr.ErrorKind())
		})
	}
}

func TestClassifierQuotesExtension(t *testing.T) {
	c := trackname.New(".v+z")
	m, ok, err := c.Classify("07 Ending.v+z", "Game")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ending", m.Name)
	assert.Equal(t, ".v+z", c.Extension())

	_, ok, _ = c.Classify("07 Ending.vvz", "Game")
	assert.False(t, ok)
}
