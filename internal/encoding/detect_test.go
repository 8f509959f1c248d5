package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/refassist/internal/encoding"
)

func TestNewUTF8Reader(t *testing.T) {
	const text = "Date;Home;Away\n2024-05-01;Atlético;Müller FC\n"

	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	tests := []struct {
		name        string
		input       []byte
		wantCharset string
	}{
		{"UTF8Passthrough", []byte(text), encoding.UTF8},
		{"UTF8BOMStripped", append([]byte{0xEF, 0xBB, 0xBF}, text...), encoding.UTF8},
		{"Windows1252", latin1, ""},
		{"UTF16WithBOM", utf16, encoding.UTF16LE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, charset, err := encoding.NewUTF8Reader(bytes.NewReader(tt.input))
			require.NoError(t, err)

			if tt.wantCharset != "" {
				assert.Equal(t, tt.wantCharset, charset)
			}

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, text, string(got))
		})
	}
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	r, charset, err := encoding.NewUTF8Reader(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, encoding.UTF8, charset)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDetect(t *testing.T) {
	assert.Equal(t, encoding.UTF16BE, encoding.Detect([]byte{0xFE, 0xFF, 0, 'a'}))
	assert.Equal(t, encoding.UTF8, encoding.Detect([]byte("plain ascii")))
	assert.NotEqual(t, encoding.UTF8, encoding.Detect([]byte{'c', 'a', 'f', 0xE9, '\n'}))
}
