package lyrics

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// tagLen is the length of one timestamp tag, e.g. "[01:23.45]".
const tagLen = 10

// idTagRegex matches ID tag lines such as "[ar:Artist]" or "[offset:+250]".
var idTagRegex = regexp.MustCompile(`^\[([A-Za-z]+):(.*)\]$`)

// Line is a single timed lyric line.
type Line struct {
	Second int    `json:"second"`
	Text   string `json:"text"`
}

// Index maps whole-second offsets to lyric text. An Index is never
// modified after Parse returns it, so it can be shared between goroutines.
// A nil *Index behaves like an empty one.
type Index struct {
	keys    []int
	text    map[int]string
	tags    map[string]string
	dropped int
}

// Parse builds an Index from the contents of a lyric document.
//
// Each non-blank line must start with one or more "[MM:SS.CC]" tags followed
// by the lyric text. Every tag on a line receives the same text. Timestamps
// are rounded to the nearest second (halves away from zero) and a later line
// replaces an earlier one with the same key. Lines that do not follow this
// shape are dropped; Parse never fails.
func Parse(text string) *Index {
	idx := &Index{
		text: make(map[int]string),
		tags: make(map[string]string),
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		keys, lyric, ok := parseLine(line)
		if !ok {
			if name, value, isTag := parseIDTag(line); isTag {
				idx.tags[name] = value
			} else {
				idx.dropped++
			}
			continue
		}

		for _, k := range keys {
			idx.text[k] = lyric
		}
	}

	idx.keys = make([]int, 0, len(idx.text))
	for k := range idx.text {
		idx.keys = append(idx.keys, k)
	}
	sort.Ints(idx.keys)

	return idx
}

// parseLine splits a line into its timestamp keys and the shared text.
func parseLine(line string) ([]int, string, bool) {
	var keys []int
	rest := line

	for len(rest) >= tagLen && rest[0] == '[' {
		key, ok := parseTimestamp(rest[:tagLen])
		if !ok {
			break
		}
		keys = append(keys, key)
		rest = rest[tagLen:]
	}

	if len(keys) == 0 {
		return nil, "", false
	}

	text := strings.TrimSpace(rest)
	if text == "" {
		return nil, "", false
	}

	return keys, text, true
}

// parseTimestamp converts "[MM:SS.CC]" into a whole number of seconds.
func parseTimestamp(tag string) (int, bool) {
	if tag[0] != '[' || tag[3] != ':' || tag[6] != '.' || tag[9] != ']' {
		return 0, false
	}
	for _, i := range []int{1, 2, 4, 5, 7, 8} {
		if tag[i] < '0' || tag[i] > '9' {
			return 0, false
		}
	}

	minutes, err := strconv.Atoi(tag[1:3])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(tag[4:9], 64)
	if err != nil {
		return 0, false
	}

	return int(math.Round(float64(minutes)*60 + seconds)), true
}

// parseIDTag recognises metadata lines like "[ti:Title]".
func parseIDTag(line string) (string, string, bool) {
	m := idTagRegex.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return strings.ToLower(m[1]), strings.TrimSpace(m[2]), true
}

// Len returns the number of distinct keys.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.keys)
}

// Text returns the lyric stored at exactly second.
func (idx *Index) Text(second int) (string, bool) {
	if idx == nil {
		return "", false
	}
	t, ok := idx.text[second]
	return t, ok
}

// Lines returns all lines in ascending key order.
func (idx *Index) Lines() []Line {
	if idx == nil {
		return []Line{}
	}
	lines := make([]Line, len(idx.keys))
	for i, k := range idx.keys {
		lines[i] = Line{Second: k, Text: idx.text[k]}
	}
	return lines
}

// Tag returns an ID tag value such as "ar" or "ti".
func (idx *Index) Tag(name string) (string, bool) {
	if idx == nil {
		return "", false
	}
	v, ok := idx.tags[strings.ToLower(name)]
	return v, ok
}

// Tags returns a copy of all ID tags found in the document.
func (idx *Index) Tags() map[string]string {
	out := make(map[string]string)
	if idx == nil {
		return out
	}
	for k, v := range idx.tags {
		out[k] = v
	}
	return out
}

// Dropped reports how many non-blank lines were ignored while parsing.
func (idx *Index) Dropped() int {
	if idx == nil {
		return 0
	}
	return idx.dropped
}

// Equal reports whether both indexes hold the same key/text mapping.
func (idx *Index) Equal(other *Index) bool {
	if idx.Len() != other.Len() {
		return false
	}
	for i := 0; i < idx.Len(); i++ {
		k := idx.keys[i]
		if other.keys[i] != k || other.text[k] != idx.text[k] {
			return false
		}
	}
	return true
}

// Render returns every lyric line in ascending key order, each followed by
// a newline.
func Render(idx *Index) string {
	var b strings.Builder
	for _, line := range idx.Lines() {
		b.WriteString(line.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// Active returns the lyric showing at positionMs: the text of the greatest
// key not after positionMs/1000.
func Active(idx *Index, positionMs int64) (string, bool) {
	line, _, ok := ActiveLine(idx, positionMs)
	return line.Text, ok
}

// ActiveLine is like Active but also returns the line's position in Lines.
func ActiveLine(idx *Index, positionMs int64) (Line, int, bool) {
	if idx.Len() == 0 || positionMs < 0 {
		return Line{}, -1, false
	}

	second := int(positionMs / 1000)
	i := sort.SearchInts(idx.keys, second+1)
	if i == 0 {
		return Line{}, -1, false
	}

	k := idx.keys[i-1]
	return Line{Second: k, Text: idx.text[k]}, i - 1, true
}
