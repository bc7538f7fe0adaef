package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tinyDef = "../../testdata/tiny.yaml"

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"version"}, &out))
	assert.Equal(t, "convnet "+version+"\n", out.String())
}

func TestRun_Summary(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"summary", tinyDef}, &out))
	assert.Contains(t, out.String(), "conv1")
	assert.Contains(t, out.String(), "Total parameters:")
}

func TestRun_Forward(t *testing.T) {
	var det, again, train bytes.Buffer
	require.NoError(t, run([]string{"forward", "-workers", "1", tinyDef}, &det))
	require.NoError(t, run([]string{"forward", tinyDef}, &again))
	require.NoError(t, run([]string{"forward", "-train", tinyDef}, &train))

	assert.Contains(t, det.String(), "output:   (2, 3)")
	assert.Equal(t, det.String(), again.String(), "deterministic runs match regardless of workers")
	assert.True(t, strings.HasPrefix(train.String(), "mode:     training"))
}

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorIs(t, run(nil, &out), errUsage)
	assert.ErrorIs(t, run([]string{"train"}, &out), errUsage)
	assert.ErrorIs(t, run([]string{"summary"}, &out), errUsage)
	assert.ErrorIs(t, run([]string{"forward", "-bogus", tinyDef}, &out), errUsage)
}

func TestRun_MissingFile(t *testing.T) {
	err := run([]string{"summary", "does-not-exist.yaml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
