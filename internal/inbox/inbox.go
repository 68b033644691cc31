package inbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File describes a statement waiting in the inbox.
type File struct {
	Name string
	Path string
	Size int64
}

// Dir is a local inbox of statement PDFs. Processed files are moved to
// ProcessedDir so they are not picked up again.
type Dir struct {
	Path         string
	ProcessedDir string
}

func New(path, processedDir string) *Dir {
	return &Dir{Path: path, ProcessedDir: processedDir}
}

// Scan returns the .pdf files in the inbox, sorted by name.
func (d *Dir) Scan() ([]File, error) {
	entries, err := os.ReadDir(d.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading inbox dir: %w", err)
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, File{
			Name: e.Name(),
			Path: filepath.Join(d.Path, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// Read returns the content of an inbox file.
func (d *Dir) Read(name string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(d.Path, name))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return b, nil
}

// MarkProcessed moves a file from the inbox to the processed dir.
func (d *Dir) MarkProcessed(name string) error {
	if err := os.MkdirAll(d.ProcessedDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	src := filepath.Join(d.Path, name)
	dst := filepath.Join(d.ProcessedDir, name)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", name, err)
	}
	return nil
}
