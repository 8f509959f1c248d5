// Package encoding turns uploaded text of unknown charset into UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	UTF8    = "UTF-8"
	UTF16LE = "UTF-16LE"
	UTF16BE = "UTF-16BE"
	CP1252  = "windows-1252"
)

const sniffLen = 4096

var boms = []struct {
	prefix  []byte
	charset string
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8},
	{[]byte{0xFF, 0xFE}, UTF16LE},
	{[]byte{0xFE, 0xFF}, UTF16BE},
}

// decoders maps chardet charset names to decoders. Anything chardet reports
// outside this table is read as windows-1252, the usual charset of
// spreadsheet exports.
var decoders = map[string]encoding.Encoding{
	UTF16LE:       unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	UTF16BE:       unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	"ISO-8859-1":  charmap.Windows1252,
	CP1252:        charmap.Windows1252,
	"ISO-8859-9":  charmap.ISO8859_9,
	"ISO-8859-15": charmap.ISO8859_15,
	"ISO-8859-2":  charmap.ISO8859_2,
}

// NewUTF8Reader returns a reader yielding r as UTF-8 and the charset it was
// read as. A UTF-8 byte order mark is dropped.
func NewUTF8Reader(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	charset := Detect(head)

	if bytes.HasPrefix(head, boms[0].prefix) {
		_, _ = br.Discard(len(boms[0].prefix))
	}

	if charset == UTF8 {
		return br, charset, nil
	}

	return transform.NewReader(br, decoders[charset].NewDecoder()), charset, nil
}

// Detect names the charset of a sample: a byte order mark wins, then valid
// UTF-8, then chardet's best guess.
func Detect(sample []byte) string {
	for _, b := range boms {
		if bytes.HasPrefix(sample, b.prefix) {
			return b.charset
		}
	}

	if utf8.Valid(sample) {
		return UTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return CP1252
	}

	if result.Charset == UTF8 {
		return UTF8
	}

	if _, ok := decoders[result.Charset]; ok {
		return result.Charset
	}

	return CP1252
}
