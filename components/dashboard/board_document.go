package dashboard

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	boardDocumentVersionV1 = "1"
	// BoardDocumentVersion exposes the current export format version for tooling.
	BoardDocumentVersion = boardDocumentVersionV1
)

// BoardDocument is the YAML export of a board.
type BoardDocument struct {
	Version string        `json:"version" yaml:"version"`
	Name    string        `json:"name,omitempty" yaml:"name,omitempty"`
	Widgets []Widget      `json:"widgets" yaml:"widgets"`
	Layout  []LayoutEntry `json:"layout,omitempty" yaml:"layout,omitempty"`
	Source  string        `json:"-" yaml:"-"`
}

// NewBoardDocument wraps a board snapshot for export.
func NewBoardDocument(name string, board Board) *BoardDocument {
	return &BoardDocument{
		Version: boardDocumentVersionV1,
		Name:    name,
		Widgets: cloneWidgets(board.Widgets),
		Layout:  cloneLayout(board.Layout),
	}
}

// Board returns the document contents as a board.
func (doc *BoardDocument) Board() Board {
	return Board{
		Widgets: cloneWidgets(doc.Widgets),
		Layout:  cloneLayout(doc.Layout),
	}
}

// ReadBoardFile loads a board document from disk.
func ReadBoardFile(path string) (*BoardDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open board %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeBoardDocument(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode board %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// WriteBoardFile writes the document to path.
func WriteBoardFile(path string, doc *BoardDocument) error {
	f, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("dashboard: create board %s: %w", path, err)
	}
	if err := EncodeBoardDocument(f, doc); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// EncodeBoardDocument writes the document as YAML.
func EncodeBoardDocument(w io.Writer, doc *BoardDocument) error {
	if doc == nil {
		return fmt.Errorf("dashboard: board document is nil")
	}
	doc.applyDefaults()
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("dashboard: encode board: %w", err)
	}
	return enc.Close()
}

// DecodeBoardDocument reads a board document from any reader. Unknown fields
// are rejected.
func DecodeBoardDocument(r io.Reader) (*BoardDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc BoardDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: board document is empty")
		}
		return nil, fmt.Errorf("dashboard: parse board: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures widgets are charts with unique ids.
func (doc *BoardDocument) Validate() error {
	if doc.Version != boardDocumentVersionV1 {
		return fmt.Errorf("dashboard: unsupported board version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Widgets))
	for idx, widget := range doc.Widgets {
		if widget.ID == "" {
			return fmt.Errorf("dashboard: board widget at index %d is missing id", idx)
		}
		if widget.Type != WidgetTypeChart {
			return fmt.Errorf("dashboard: board widget %s has unsupported type %q", widget.ID, widget.Type)
		}
		if _, exists := seen[widget.ID]; exists {
			return fmt.Errorf("dashboard: board duplicates widget id %s", widget.ID)
		}
		seen[widget.ID] = struct{}{}
	}
	return nil
}

func (doc *BoardDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = boardDocumentVersionV1
	}
	for i := range doc.Widgets {
		if doc.Widgets[i].Type == "" {
			doc.Widgets[i].Type = WidgetTypeChart
		}
	}
}
