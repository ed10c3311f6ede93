package store

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/student-model/internal/model"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Export writes doc to w in the given format.
func Export(w io.Writer, doc *model.Document, format string) error {
	switch format {
	case "", FormatJSON:
		data, err := Encode(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q (valid: json, yaml)", format)
	}
}

// Import replaces the stored document with one produced by Export in JSON
// form. The data is validated first; the replaced model becomes the backup.
func (s *Store) Import(data []byte) (*model.Document, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := s.Save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}
