package gitx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBranches(t *testing.T) {
	out := "main\torigin/main\n" +
		"feature-x\torigin/feature-x\n" +
		"spike\t\n"

	branches := parseBranches(out)
	require.Len(t, branches, 3)
	assert.Equal(t, Branch{Name: "main", Upstream: "origin/main"}, branches[0])
	assert.Equal(t, Branch{Name: "feature-x", Upstream: "origin/feature-x"}, branches[1])
	assert.Equal(t, Branch{Name: "spike", Upstream: ""}, branches[2])
}

func TestParseBranches_Empty(t *testing.T) {
	assert.Empty(t, parseBranches(""))
	assert.Empty(t, parseBranches("\n\n"))
}

func TestParseAheadBehind(t *testing.T) {
	ahead, behind, err := parseAheadBehind("3\t0\n")
	require.NoError(t, err)
	assert.Equal(t, 3, ahead)
	assert.Equal(t, 0, behind)

	ahead, behind, err = parseAheadBehind("0\t12\n")
	require.NoError(t, err)
	assert.Equal(t, 0, ahead)
	assert.Equal(t, 12, behind)
}

func TestParseAheadBehind_Malformed(t *testing.T) {
	for _, out := range []string{"", "3", "3\t0\t1", "x\ty"} {
		_, _, err := parseAheadBehind(out)
		assert.Error(t, err, "input %q", out)
	}
}
