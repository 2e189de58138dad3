package values

import (
	"testing"
	"time"

	"github.com/ptool-dev/ptool/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	s := Project("widget", time.Date(2031, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, OriginProject, s.Origin())
	assert.Equal(t, []string{"copyright_year", "project_name"}, s.Keys())

	v, ok := s.Get(KeyCopyrightYear)
	require.True(t, ok)
	assert.Equal(t, "2031", v.Str())
}

func TestCommandLine_LastPairWins(t *testing.T) {
	s := CommandLine([]Pair{{"a", "1"}, {"b", "2"}, {"a", "3"}})
	assert.Equal(t, OriginCommandLine, s.Origin())
	assert.Equal(t, 2, s.Len())
	v, _ := s.Get("a")
	assert.Equal(t, "3", v.Str())
}

func TestNewSource_IsolatedFromInput(t *testing.T) {
	in := map[string]Value{"a": String("1")}
	s := NewSource("x", in)
	in["a"] = String("changed")
	in["b"] = String("added")

	v, _ := s.Get("a")
	assert.Equal(t, "1", v.Str())
	assert.Equal(t, 1, s.Len())
}

func TestSource_EntriesBackReference(t *testing.T) {
	s := NewSource("origin", map[string]Value{"a": String("1")})
	entries := s.Entries()
	require.Contains(t, entries, "a")
	assert.Same(t, s, entries["a"].Source)

	delete(entries, "a")
	assert.Equal(t, 1, s.Len())
}

func TestFromMap(t *testing.T) {
	s, err := FromMap("config.yaml", map[string]interface{}{
		"author": "Some Author",
		"year":   2024,
		"flag":   true,
		"tags":   []interface{}{"a", 1},
		"git_server": map[string]interface{}{
			"protocol": "https",
			"port":     443,
		},
	})
	require.NoError(t, err)

	year, _ := s.Get("year")
	assert.Equal(t, "2024", year.Str())
	flag, _ := s.Get("flag")
	assert.Equal(t, "true", flag.Str())
	tags, _ := s.Get("tags")
	assert.Equal(t, []string{"a", "1"}, tags.Items())
	gs, _ := s.Get("git_server")
	assert.Equal(t, map[string]string{"protocol": "https", "port": "443"}, gs.Entries())
}

func TestFromMap_RejectsDeepNesting(t *testing.T) {
	_, err := FromMap("config.yaml", map[string]interface{}{
		"deep": map[string]interface{}{"inner": map[string]interface{}{"x": "y"}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnsupportedValue))
}

func TestFromMap_RejectsNull(t *testing.T) {
	_, err := FromMap("config.yaml", map[string]interface{}{"empty": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"empty"`)
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		in      string
		want    Pair
		wantErr bool
	}{
		{"a=b", Pair{"a", "b"}, false},
		{"a=", Pair{"a", ""}, false},
		{"url=https://x?y=z", Pair{"url", "https://x?y=z"}, false},
		{"noequals", Pair{}, true},
		{"=value", Pair{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePair(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePairs_StopsAtFirstError(t *testing.T) {
	_, err := ParsePairs([]string{"a=1", "bad"})
	assert.Error(t, err)

	pairs, err := ParsePairs([]string{"a=1", "b=2"})
	require.NoError(t, err)
	assert.Len(t, pairs, 2)
}
