package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelworks/siteassess/internal/model"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"assess", "template", "fields", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "siteassess", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestAssessCommand_Flags(t *testing.T) {
	flag := assessCmd.Flags().Lookup("template")
	require.NotNil(t, flag, "assess command should have --template flag")

	outFlag := assessCmd.Flags().Lookup("output")
	require.NotNil(t, outFlag, "assess command should have --output flag")
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestTemplateCommand_Flags(t *testing.T) {
	flag := templateCmd.Flags().Lookup("output")
	require.NotNil(t, flag, "template command should have --output flag")
	assert.Equal(t, "模板.xlsx", flag.DefValue)
}

func TestFormatFieldList(t *testing.T) {
	var buf bytes.Buffer
	formatFieldList(&buf, model.DefaultFieldTable().Specs())

	out := buf.String()
	assert.Contains(t, out, "INDEX")
	assert.Contains(t, out, model.FieldRailDistance)
	assert.Contains(t, out, "required")
	assert.Equal(t, 21, strings.Count(out, "\n"), "header, rule, and one line per field")
}
