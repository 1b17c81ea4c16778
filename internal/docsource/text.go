package docsource

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeText honours a UTF-8 or UTF-16 BOM (spreadsheet exports often carry
// one) and replaces invalid sequences.
func decodeText(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), dec))
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(out), "�"), nil
}
