package cli

import (
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// fallbackEncodings are tried in order when a corpus file is not valid UTF-8.
// Windows-1252 is a superset of Latin-1 on the printable range and covers the
// curly quotes common in scraped corpora.
var fallbackEncodings = []encoding.Encoding{
	unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM),
	charmap.Windows1252,
	charmap.ISO8859_1,
}

// ReadTextFile reads a corpus file, decoding it to UTF-8. Valid UTF-8 (with
// or without BOM) is returned as-is; otherwise fallback encodings are tried
// in order.
func ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	// Strip a UTF-8 BOM if present.
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	if utf8.Valid(data) {
		return string(data), nil
	}

	for _, enc := range fallbackEncodings {
		decoded, decErr := enc.NewDecoder().Bytes(data)
		if decErr == nil && utf8.Valid(decoded) {
			return string(decoded), nil
		}
	}
	return "", fmt.Errorf("decoding %s: not valid UTF-8 and no fallback encoding applies", path)
}

// WriteTextFile writes converted output, creating or truncating the target.
func WriteTextFile(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
