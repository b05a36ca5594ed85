// Package exporter serializes the working set for download.
package exporter

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/nikbrunner/sift/internal/model"
)

// ErrNoData is returned when there is nothing to export.
var ErrNoData = errors.New("no data to export")

// WriteJSON writes items as an indented JSON array. The document carries
// no schema version.
func WriteJSON(w io.Writer, items []model.Item) error {
	if len(items) == 0 {
		return ErrNoData
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
