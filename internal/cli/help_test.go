package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/farmvibes/internal/commands/shared"
)

func newHelpTestRoot() *cobra.Command {
	rootCmd := NewRootCommand()
	sample := &cobra.Command{
		Use:     "sample",
		Short:   "Sample subcommand",
		Long:    "This is a sample subcommand for testing",
		Aliases: []string{"smp"},
		RunE:    func(*cobra.Command, []string) error { return nil },
	}
	sample.Flags().String("flag", "", "A sample flag")
	sample.AddCommand(&cobra.Command{Use: "child", Short: "Child", RunE: func(*cobra.Command, []string) error { return nil }})
	rootCmd.AddCommand(sample)
	rootCmd.AddCommand(&cobra.Command{Use: "secret", Hidden: true, RunE: func(*cobra.Command, []string) error { return nil }})
	rootCmd.SetHelpCommand(NewHelpCommand(rootCmd))
	return rootCmd
}

func runHelp(t *testing.T, args ...string) []byte {
	t.Helper()
	defer shared.SetFlagsForTest(shared.GlobalFlags{})()

	rootCmd := newHelpTestRoot()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"help"}, args...))
	require.NoError(t, rootCmd.Execute())
	return buf.Bytes()
}

func TestHelpCommandJSONListsCommands(t *testing.T) {
	var resp HelpResponse
	require.NoError(t, json.Unmarshal(runHelp(t, "--json"), &resp))

	names := make([]string, 0, len(resp.Commands))
	for _, c := range resp.Commands {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "sample")
	assert.NotContains(t, names, "secret")
	assert.Equal(t, docsURL, resp.DocsURL)

	var flags []string
	for _, f := range resp.GlobalFlags {
		flags = append(flags, f.Name)
	}
	assert.Contains(t, flags, "url")
	assert.Contains(t, flags, "jq")
}

func TestHelpCommandJSONSingleCommand(t *testing.T) {
	var resp HelpResponse
	require.NoError(t, json.Unmarshal(runHelp(t, "sample", "--json"), &resp))

	require.NotNil(t, resp.Command)
	assert.Equal(t, "sample", resp.Command.Name)
	assert.Equal(t, []string{"smp"}, resp.Command.Aliases)
	assert.Equal(t, []string{"child"}, resp.Command.Subcommands)
	require.Len(t, resp.Command.Flags, 1)
	assert.Equal(t, "flag", resp.Command.Flags[0].Name)
	assert.Empty(t, resp.Commands)
}

func TestHelpCommandText(t *testing.T) {
	out := runHelp(t, "sample")
	assert.Contains(t, string(out), "This is a sample subcommand for testing")
}

func TestHelpCommandUnknown(t *testing.T) {
	defer shared.SetFlagsForTest(shared.GlobalFlags{})()

	rootCmd := newHelpTestRoot()
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"help", "nope", "--json"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidInput, shared.ExitCode(err))
}
