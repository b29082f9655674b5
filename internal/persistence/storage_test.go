package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
colours: [RED, BLUE]
tiles:
  - {col: 0, row: 0, height: 0}
  - {col: 1, row: 0, height: 0}
pawns:
  - {col: 0, row: 0, colour: RED}
`

func writeScenario(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(sampleYAML), 0644))
}

func TestLoadScenarioRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "duel")

	sc, err := LoadScenario(dir, "duel", 7)
	require.NoError(t, err)
	require.NotNil(t, sc.State)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadScenario(dir, "missing", 1)
	require.Error(t, err)
}

func TestListScenariosFiltersNonYAML(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "duel")
	writeScenario(t, dir, "arena")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi"), 0644))

	names, err := ListScenarios(dir)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"duel", "arena"}, names)
}
