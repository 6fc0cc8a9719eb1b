package fileutil

import (
	"encoding/json"
	"io"
)

// PrintJSON writes value to w as indented JSON followed by a newline.
func PrintJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}
