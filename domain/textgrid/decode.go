package textgrid

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw file bytes to text. Praat writes UTF-16 with a byte
// order mark when labels contain non-ASCII characters, so a BOM selects
// UTF-16LE, UTF-16BE or UTF-8; input without a BOM is read as UTF-8.
// UTF-8 input must be valid, otherwise the error matches ErrEncoding.
// Line endings are normalised to "\n".
func Decode(data []byte) (string, error) {
	utf16 := bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE)
	if !utf16 && !utf8.Valid(bytes.TrimPrefix(data, bomUTF8)) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrEncoding)
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return strings.ReplaceAll(string(out), "\r\n", "\n"), nil
}
