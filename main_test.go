package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"generate", "analyze", "complexity", "suggest", "features", "serve", "mcp", "version"}, names)

	for _, flag := range []string{"config", "provider", "model", "db", "verbose"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GHERKIN_AI_DB", dir+"/features.db")
	t.Chdir(dir)
}

func TestGenerate_RequiresAPIKey(t *testing.T) {
	isolate(t)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"generate", "--title", "Login", "--story", "As a user I want to log in"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY environment variable not set")
}

func TestGenerate_RejectsUnknownProvider(t *testing.T) {
	isolate(t)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--provider", "llama", "generate", "--title", "Login", "--story", "As a user I want to log in"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider: llama")
}

func TestGenerate_InvalidScenarioCount(t *testing.T) {
	isolate(t)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"generate", "--title", "Login", "--story", "As a user I want to log in", "--scenarios", "0"})

	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, "Failed to generate feature: invalid input: scenario count must be at least 1", err.Error())
}

func TestFeaturesList_EmptyStore(t *testing.T) {
	isolate(t)

	root := newRootCmd()
	root.SetArgs([]string{"features", "list", "-o", "json"})
	require.NoError(t, root.Execute())
}
