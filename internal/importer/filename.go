package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cardledger/cardledger/internal/model"
)

// ErrInvalidFilename is returned when a statement file name does not follow
// the <tag>-<password>-<identifier>.pdf convention.
var ErrInvalidFilename = errors.New("invalid statement filename")

// StatementFile is what a statement's file name says about it.
type StatementFile struct {
	Name        string
	Institution model.Institution
	Password    string
	Identifier  string
}

// ParseFilename splits a name like "hdfc-s3cret-2024-01.pdf". The password
// is the second dash-separated field; everything after it is the identifier.
func ParseFilename(name string) (StatementFile, error) {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if !strings.EqualFold(ext, ".pdf") {
		return StatementFile{}, fmt.Errorf("%w: %s: not a .pdf", ErrInvalidFilename, base)
	}

	parts := strings.SplitN(strings.TrimSuffix(base, ext), "-", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return StatementFile{}, fmt.Errorf("%w: %s: want <institution>-<password>-<identifier>.pdf", ErrInvalidFilename, base)
	}

	inst, ok := model.ParseInstitution(parts[0])
	if !ok {
		return StatementFile{}, fmt.Errorf("%w: %q in %s", ErrUnsupportedInstitution, parts[0], base)
	}
	return StatementFile{
		Name:        base,
		Institution: inst,
		Password:    parts[1],
		Identifier:  parts[2],
	}, nil
}
