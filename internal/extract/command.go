package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// PasswordEnv carries the document password to the extractor process so it
// never appears in the process list.
const PasswordEnv = "CARDLEDGER_PDF_PASSWORD"

// CommandReader runs an external extractor that reads the encrypted document
// on stdin and writes a YAML extraction dump on stdout.
type CommandReader struct {
	Path string
	Args []string
}

func (c CommandReader) Read(ctx context.Context, content []byte, password string) (Document, error) {
	if c.Path == "" {
		return Document{}, fmt.Errorf("%w: no extractor command configured", ErrExtraction)
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdin = bytes.NewReader(content)
	cmd.Env = append(os.Environ(), PasswordEnv+"="+password)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return Document{}, fmt.Errorf("%w: %s: %s", ErrExtraction, c.Path, msg)
	}

	doc, err := DecodeDump(&stdout)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return doc, nil
}
