package lyrics

import (
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

func mustEncode(t *testing.T, s string, encode func(string) (string, error)) []byte {
	t.Helper()
	out, err := encode(s)
	if err != nil {
		t.Fatalf("failed to encode test input: %v", err)
	}
	return []byte(out)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	const text = "[00:01.00]月亮代表我的心"
	gbk := mustEncode(t, text, simplifiedchinese.GBK.NewEncoder().String)
	big5 := mustEncode(t, text, traditionalchinese.Big5.NewEncoder().String)

	tests := []struct {
		name     string
		raw      []byte
		encoding string
		expected string
	}{
		{"Auto plain UTF-8", []byte(text), EncodingAuto, text},
		{"Empty name means auto", []byte(text), "", text},
		{"Auto strips UTF-8 BOM", append([]byte{0xEF, 0xBB, 0xBF}, []byte(text)...), EncodingAuto, text},
		{"Auto falls back to GBK", gbk, EncodingAuto, text},
		{"Explicit GBK", gbk, "gbk", text},
		{"Explicit GB18030", gbk, "GB18030", text},
		{"Explicit Big5", big5, "big5", text},
		{"Explicit UTF-8", []byte(text), "utf-8", text},
		{"Latin1", []byte{'[', '0', '0', ':', '0', '1', '.', '0', '0', ']', 'c', 'a', 'f', 0xE9}, "latin1", "[00:01.00]café"},
		{"UTF-16 with BOM", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, EncodingAuto, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode(tt.raw, tt.encoding)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Decode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDecodeUnknownEncoding(t *testing.T) {
	t.Parallel()

	if _, err := Decode([]byte("x"), "klingon-8"); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestDecodedGBKParses(t *testing.T) {
	t.Parallel()

	gbk := mustEncode(t, "[00:02.00]你好\n[00:04.00]世界", simplifiedchinese.GBK.NewEncoder().String)

	text, err := Decode(gbk, EncodingAuto)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if got := Render(Parse(text)); got != "你好\n世界\n" {
		t.Errorf("Render() = %q", got)
	}
}
