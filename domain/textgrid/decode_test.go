package textgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func TestDecode(t *testing.T) {
	source := sampleTextGrid()

	tests := []struct {
		name   string
		encode func(string) ([]byte, error)
	}{
		{"utf8", func(s string) ([]byte, error) { return []byte(s), nil }},
		{"utf8 with bom", func(s string) ([]byte, error) {
			return append([]byte{0xEF, 0xBB, 0xBF}, s...), nil
		}},
		{"utf16le with bom", func(s string) ([]byte, error) {
			return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(s))
		}},
		{"utf16be with bom", func(s string) ([]byte, error) {
			return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(s))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.encode(source)
			require.NoError(t, err)

			text, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, source, text)

			result, err := Parse(text, "phones", "words")
			require.NoError(t, err)
			assert.Equal(t, 2, result.Tiers().Len())
		})
	}
}

func TestDecode_NormalisesLineEndings(t *testing.T) {
	text, err := Decode([]byte("a\r\nb\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", text)
}

func TestDecode_NonASCIILabel(t *testing.T) {
	source := writeTextGrid(
		intervalTier("words", rec("0", "1", "größe")),
		intervalTier("phones", rec("0", "1", "ɡ")),
	)
	data, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(source))
	require.NoError(t, err)

	text, err := Decode(data)
	require.NoError(t, err)

	result, err := Parse(text, "words", "phones")
	require.NoError(t, err)
	words, _ := result.Tiers().Get("words")
	assert.Equal(t, "größe", words.Intervals()[0].Label())
}

func TestDecode_InvalidUTF8(t *testing.T) {
	body := append([]byte("File type = \"ooTextFile\"\nlabel = \""), 0xC3, 0x28, 0xFF, '"', '\n')

	for name, data := range map[string][]byte{
		"plain":    body,
		"with bom": append([]byte{0xEF, 0xBB, 0xBF}, body...),
	} {
		t.Run(name, func(t *testing.T) {
			text, err := Decode(data)
			require.ErrorIs(t, err, ErrEncoding)
			assert.Empty(t, text)
			assert.Equal(t, MessageWrongFileType, Message(err))
		})
	}
}
