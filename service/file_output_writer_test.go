package service

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/hunkscope/domain"
)

func TestFileOutputWriter_ToWriter(t *testing.T) {
	var status, out bytes.Buffer
	w := NewFileOutputWriter(&status)

	err := w.Write(&out, "", domain.OutputFormatText, func(wr io.Writer) error {
		_, err := io.WriteString(wr, "hello")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", out.String())
	assert.Empty(t, status.String())
}

func TestFileOutputWriter_ToFile(t *testing.T) {
	var status bytes.Buffer
	path := filepath.Join(t.TempDir(), "reports", "run.json")

	err := NewFileOutputWriter(&status).Write(nil, path, domain.OutputFormatJSON, func(wr io.Writer) error {
		_, err := io.WriteString(wr, "{}")
		return err
	})
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(content))
	assert.Contains(t, status.String(), "JSON report generated: ")
}

func TestFileOutputWriter_WriteFuncError(t *testing.T) {
	err := NewFileOutputWriter(io.Discard).Write(io.Discard, "", domain.OutputFormatCSV, func(io.Writer) error {
		return errors.New("boom")
	})
	assert.True(t, domain.HasCode(err, domain.ErrCodeOutputError))
}
