package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DecodeDump reads a YAML extraction dump:
//
//	tables:
//	  - - [Date, Transaction Details, Amount]
//	    - [15/01/2024, AMAZON, 1.00 Dr]
//	lines:
//	  - 15/01/2024 AMAZON 1.00 Dr
func DecodeDump(r io.Reader) (Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return Document{}, nil
		}
		return Document{}, fmt.Errorf("decoding extraction dump: %w", err)
	}
	return doc, nil
}

// EncodeDump writes doc as a YAML extraction dump.
func EncodeDump(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding extraction dump: %w", err)
	}
	return enc.Close()
}

// DumpReader treats the document content itself as a YAML dump. It is used
// for replaying previously extracted statements and in tests; the password
// is ignored.
type DumpReader struct{}

func (DumpReader) Read(_ context.Context, content []byte, _ string) (Document, error) {
	doc, err := DecodeDump(bytes.NewReader(content))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return doc, nil
}
