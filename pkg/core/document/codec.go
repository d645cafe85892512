package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// Marshal converts a document to indented JSON bytes.
// Map keys are sorted by encoding/json, so output is deterministic.
func Marshal(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a document as JSON to an io.Writer.
func Write(d *Document, w io.Writer) error {
	return writeTo(d, w)
}

// WriteFile writes a document to a JSON file.
func WriteFile(d *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(d, f)
}

// Unmarshal decodes a JSON document and checks its version.
func Unmarshal(data []byte) (*Document, error) {
	return readFrom(bytes.NewReader(data))
}

// Read decodes a JSON document from an io.Reader.
func Read(r io.Reader) (*Document, error) {
	return readFrom(r)
}

// ReadFile reads a JSON document from disk.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f)
}

// CheckVersion returns an UNSUPPORTED_VERSION error unless v is [Version].
func CheckVersion(v int) error {
	if v != Version {
		return errors.New(errors.ErrCodeUnsupportedVersion, "document version %d is not supported (want %d)", v, Version)
	}
	return nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(d *Document, w io.Writer) error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidDocument, "nil document")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalized(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode document")
	}
	if err := CheckVersion(d.Version); err != nil {
		return nil, err
	}
	return normalized(&d), nil
}

// normalized fills nil collections so encoded output always carries
// "pages", "nodes" and "children" as arrays/objects rather than null.
func normalized(d *Document) *Document {
	if d.Pages == nil {
		d.Pages = []Page{}
	}
	if d.Nodes == nil {
		d.Nodes = make(map[string]Node)
	}
	for i := range d.Pages {
		if d.Pages[i].Children == nil {
			d.Pages[i].Children = []string{}
		}
	}
	for id, n := range d.Nodes {
		if n.Children == nil {
			n.Children = []string{}
			d.Nodes[id] = n
		}
	}
	return d
}
