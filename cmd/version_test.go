package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	cmd := newVersionCmd()
	output := &bytes.Buffer{}
	cmd.SetOut(output)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, output.String(), "version")
}
