package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passiveCorpus = "# text = The cake was eaten by John\n" +
	"1\tThe\tthe\t_\tDT\t_\t2\tdet\t_\t_\n" +
	"2\tcake\tcake\t_\tNN\t_\t4\tnsubjpass\t_\t_\n" +
	"3\twas\tbe\t_\tVBD\t_\t4\tauxpass\t_\t_\n" +
	"4\teaten\teat\t_\tVBN\t_\t0\troot\t_\t_\n" +
	"5\tby\tby\t_\tIN\t_\t6\tcase\t_\t_\n" +
	"6\tJohn\tJohn\t_\tNNP\t_\t4\tnmod\t_\t_\n" +
	"\n"

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.conllu")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConvert_WritesEnhancedCorpus(t *testing.T) {
	in := writeCorpus(t, passiveCorpus)
	out := filepath.Join(t.TempDir(), "out.conllu")

	_, err := runCLI(t, "convert", in, "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "4:nmod:agent(eud)")
	assert.NotContains(t, string(data), "# text", "comments dropped by default")
}

func TestConvert_PreserveComments(t *testing.T) {
	in := writeCorpus(t, passiveCorpus)

	stdout, err := runCLI(t, "convert", "--preserve-comments", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "# text = The cake was eaten by John")
}

func TestConvert_DisableFlag(t *testing.T) {
	in := writeCorpus(t, passiveCorpus)

	stdout, err := runCLI(t, "convert", "--disable", "eud_passive_agent", in)
	require.NoError(t, err)
	assert.NotContains(t, stdout, "nmod:agent")
	assert.Contains(t, stdout, "nmod:by")
}

func TestConvert_UnknownDisabledRule(t *testing.T) {
	in := writeCorpus(t, passiveCorpus)

	_, err := runCLI(t, "convert", "--disable", "bogus_rule", in)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConvert_BadIterationsFlag(t *testing.T) {
	in := writeCorpus(t, passiveCorpus)

	_, err := runCLI(t, "convert", "--iterations", "many", in)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConvert_StrictBudget(t *testing.T) {
	in := writeCorpus(t, passiveCorpus)

	// One pass is productive, so convergence is never confirmed.
	_, err := runCLI(t, "convert", "--iterations", "1", "--strict", in)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = runCLI(t, "convert", "--iterations", "1", in)
	assert.NoError(t, err, "without --strict an exhausted budget is only a warning")
}

func TestConvert_ConfigFile(t *testing.T) {
	in := writeCorpus(t, passiveCorpus)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("enhanced_extra: false\n"), 0o644))

	stdout, err := runCLI(t, "convert", "--config", cfgPath, in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "nmod:agent")
	assert.NotContains(t, stdout, "dobj", "extra category disabled via config")
}

func TestConvert_MissingFile(t *testing.T) {
	_, err := runCLI(t, "convert", filepath.Join(t.TempDir(), "absent.conllu"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConvert_UnknownInputFormat(t *testing.T) {
	in := writeCorpus(t, passiveCorpus)
	_, err := runCLI(t, "convert", "--input-format", "xml", in)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConvert_OdinDocument(t *testing.T) {
	doc := `{
  "text": "dogs bark",
  "sentences": [
    {
      "words": ["dogs", "bark"],
      "lemmas": ["dog", "bark"],
      "tags": ["NNS", "VBP"],
      "graphs": {
        "universal-basic": {
          "edges": [{"source": 1, "destination": 0, "relation": "nsubj"}],
          "roots": [1]
        }
      }
    }
  ]
}`
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	stdout, err := runCLI(t, "convert", "--input-format", "odin", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "universal-enhanced")
}

func TestConvert_TacredRecords(t *testing.T) {
	records := `[
  {
    "id": "r1",
    "token": ["dogs", "bark"],
    "stanford_pos": ["NNS", "VBP"],
    "stanford_head": [2, 0],
    "stanford_deprel": ["nsubj", "ROOT"]
  }
]`
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(records), 0o644))

	stdout, err := runCLI(t, "convert", "--input-format", "tacred", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "# sent_id = r1")
	assert.Contains(t, stdout, "1\tdogs\tdogs")
}

func TestRulesCommand(t *testing.T) {
	stdout, err := runCLI(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, stdout, "eud_passive_agent")
	assert.Contains(t, stdout, "extra_copula_reconstruction")
	assert.Contains(t, stdout, "[node-adding]")

	v2, err := runCLI(t, "rules", "--ud-version", "2")
	require.NoError(t, err)
	assert.NotContains(t, v2, "extra_of_prep_alteration")
}

func TestRulesCommand_JSON(t *testing.T) {
	stdout, err := runCLI(t, "--format", "json", "rules")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"status":"ok"`)
	assert.Contains(t, stdout, `"eud_conj_info"`)
}

func TestQueryCommand(t *testing.T) {
	in := writeCorpus(t, passiveCorpus)

	stdout, err := runCLI(t, "query", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 sentence(s)")
	assert.Contains(t, stdout, "eud_passive_agent")
}

func TestQueryCommand_StatsDB(t *testing.T) {
	in := writeCorpus(t, passiveCorpus)
	db := filepath.Join(t.TempDir(), "stats.db")

	_, err := runCLI(t, "query", "--stats-db", db, in)
	require.NoError(t, err)

	info, err := os.Stat(db)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
