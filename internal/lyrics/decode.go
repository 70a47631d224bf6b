package lyrics

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// EncodingAuto selects UTF-8 when the input is valid UTF-8 (with or without
// a byte order mark) and falls back to GBK otherwise.
const EncodingAuto = "auto"

// Decode converts raw sidecar bytes into text using the named encoding.
// Names are the WHATWG labels understood by browsers ("utf-8", "gbk",
// "gb18030", "big5", "shift_jis", "latin1", ...) plus EncodingAuto.
func Decode(raw []byte, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == EncodingAuto {
		return decodeAuto(raw)
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", fmt.Errorf("unsupported lyric encoding %q: %w", name, err)
	}

	if enc == unicode.UTF8 {
		return stripBOM(raw)
	}

	return decodeWith(enc, raw)
}

func decodeAuto(raw []byte) (string, error) {
	text, err := stripBOM(raw)
	if err == nil && utf8.ValidString(text) {
		return text, nil
	}
	return decodeWith(simplifiedchinese.GBK, raw)
}

// stripBOM removes a UTF-8 or UTF-16 byte order mark, transcoding UTF-16
// input to UTF-8. Input without a BOM is returned unchanged.
func stripBOM(raw []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode byte order mark: %w", err)
	}
	return string(out), nil
}

func decodeWith(enc encoding.Encoding, raw []byte) (string, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode lyrics: %w", err)
	}
	return string(out), nil
}
