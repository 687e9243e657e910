package dataset

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Record pairs a transcript with its generated summary.
type Record struct {
	Text    string `json:"text"`
	Summary string `json:"summary"`
}

// Append writes rec as one JSON line at the end of the file at path. The file
// is opened for this write only and closed before returning. Records are never
// deduplicated.
func Append(path string, rec Record) error {
	line, err := encode(rec)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return errors.Wrap(err, "error creating output directory")
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "error opening %s", path)
	}

	if _, err := f.Write(line); err != nil {
		f.Close()
		return errors.Wrapf(err, "error appending to %s", path)
	}
	return errors.Wrapf(f.Close(), "error closing %s", path)
}

// encode renders rec on a single line with non-ASCII and HTML characters left
// unescaped. encoding/json always escapes U+2028 and U+2029, so those are
// restored to their raw form afterwards.
func encode(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return nil, errors.Wrap(err, "error encoding record")
	}
	return unescapeSeparators(buf.Bytes()), nil
}

var separatorEscapes = map[string]string{
	`\u2028`: "\u2028",
	`\u2029`: "\u2029",
}

// unescapeSeparators walks escape sequences pairwise so that an escaped
// backslash followed by the text "u2028" is left alone.
func unescapeSeparators(line []byte) []byte {
	if !bytes.Contains(line, []byte(`\u202`)) {
		return line
	}

	out := make([]byte, 0, len(line))
	for i := 0; i < len(line); i++ {
		if line[i] != '\\' || i+1 >= len(line) {
			out = append(out, line[i])
			continue
		}
		if i+6 <= len(line) {
			if raw, ok := separatorEscapes[string(line[i:i+6])]; ok {
				out = append(out, raw...)
				i += 5
				continue
			}
		}
		out = append(out, line[i], line[i+1])
		i++
	}
	return out
}
