package solver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeResultFile(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "res.dat")
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func TestParseFlowFile(t *testing.T) {
	file := writeResultFile(t, "objective=42;\nflow=[(0,1,2)(1,0,3.5)];\n")
	flows, err := ParseFlowFile(file)
	require.NoError(t, err)

	assert.Len(t, flows, 2)
	assert.Equal(t, 2.0, flows[Edge{0, 1}])
	assert.Equal(t, 3.5, flows[Edge{1, 0}])
}

func TestParseFlowFileNormalizesExponentArtifacts(t *testing.T) {
	// the engine sometimes prints a trailing exponent marker before the
	// closing parenthesis
	file := writeResultFile(t, "flow=[(0,1,2e)(1,0,1.5e)];\n")
	flows, err := ParseFlowFile(file)
	require.NoError(t, err)

	assert.Equal(t, 2.0, flows[Edge{0, 1}])
	assert.Equal(t, 1.5, flows[Edge{1, 0}])
}

func TestParseFlowFileEmpty(t *testing.T) {
	file := writeResultFile(t, "flow=[];\n")
	flows, err := ParseFlowFile(file)
	require.NoError(t, err)
	assert.Empty(t, flows)
}

func TestParseFlowFileErrors(t *testing.T) {
	_, err := ParseFlowFile(filepath.Join(t.TempDir(), "missing.dat"))
	assert.Error(t, err)

	_, err = ParseFlowFile(writeResultFile(t, "flow=[(0,1)];\n"))
	assert.Error(t, err)

	_, err = ParseFlowFile(writeResultFile(t, "flow=[(a,1,2)];\n"))
	assert.Error(t, err)
}

func TestOPLSolverDataFileFormat(t *testing.T) {
	dir := t.TempDir()
	s := NewOPLSolver(dir, "matching.mod", "rebalancing.mod", dir)

	// the binary is absent; we only care about the data file it wrote
	_, err := s.MatchingFlows(&MatchingProblem{
		Demand: []DemandEntry{{Origin: 0, Destination: 1, Demand: 2, Price: 4.5}},
		Acc:    []AccEntry{{Region: 0, Count: 3}, {Region: 1, Count: 1}},
	})
	require.Error(t, err)

	bs, err := os.ReadFile(filepath.Join(dir, "data_matching_1.dat"))
	require.NoError(t, err)
	content := string(bs)
	assert.Contains(t, content, "demandAttr=[(0,1,2,4.5)];")
	assert.Contains(t, content, "accInitTuple=[(0,3)(1,1)];")
	assert.Contains(t, content, "path=")
}
