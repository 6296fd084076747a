package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteJSON writes v as pretty-printed JSON to w.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteString writes a rendered text report to w.
func WriteString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

// Destination opens the output destination: the named file, or stdout when
// path is empty. The returned closer is a no-op for stdout.
func Destination(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, f.Close, nil
}
