package fileutil

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSONL streams records to w, one compact object per line. HTML
// characters are left unescaped.
func WriteJSONL[T any](w io.Writer, records []T) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range records {
		if err := enc.Encode(records[i]); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
