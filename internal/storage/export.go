package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/biosim/internal/dynamo"
)

// WriteJSON encodes a result as the (time, values, num_species) triple.
func WriteJSON(w io.Writer, result *dynamo.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// ExportJSON writes a result to path, or to stdout when path is "-".
func ExportJSON(path string, result *dynamo.Result) error {
	if path == "-" {
		return WriteJSON(os.Stdout, result)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, result)
}
