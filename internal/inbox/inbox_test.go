package inbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *Dir {
	t.Helper()
	root := t.TempDir()
	d := New(filepath.Join(root, "inbox"), filepath.Join(root, "inbox", "processed"))
	require.NoError(t, os.MkdirAll(d.Path, 0o755))
	return d
}

func TestScan(t *testing.T) {
	d := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(d.Path, "sbi-b-feb.pdf"), []byte("bb"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(d.Path, "axis-a-jan.PDF"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(d.Path, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(d.Path, "sub.pdf"), 0o755))

	files, err := d.Scan()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "axis-a-jan.PDF", files[0].Name)
	assert.Equal(t, int64(1), files[0].Size)
	assert.Equal(t, "sbi-b-feb.pdf", files[1].Name)
	assert.Equal(t, filepath.Join(d.Path, "sbi-b-feb.pdf"), files[1].Path)
}

func TestScan_MissingDir(t *testing.T) {
	files, err := New(filepath.Join(t.TempDir(), "nope"), "").Scan()
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestReadAndMarkProcessed(t *testing.T) {
	d := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(d.Path, "rbl-p-mar.pdf"), []byte("content"), 0o644))

	b, err := d.Read("rbl-p-mar.pdf")
	require.NoError(t, err)
	assert.Equal(t, "content", string(b))

	require.NoError(t, d.MarkProcessed("rbl-p-mar.pdf"))
	assert.NoFileExists(t, filepath.Join(d.Path, "rbl-p-mar.pdf"))
	assert.FileExists(t, filepath.Join(d.ProcessedDir, "rbl-p-mar.pdf"))

	files, err := d.Scan()
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = d.Read("rbl-p-mar.pdf")
	assert.Error(t, err)
	assert.Error(t, d.MarkProcessed("rbl-p-mar.pdf"))
}
