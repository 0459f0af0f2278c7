package draft

import (
	"math"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Apply returns the draft that results from applying op to current.
func Apply(current string, op Op) string {
	switch op := op.(type) {
	case FullReplace:
		return op.Text
	case Insert:
		return splice(current, op.Index, op.Index, op.Text)
	case Delete:
		return splice(current, op.Index, addSat(op.Index, op.Count), "")
	case Replace:
		return splice(current, op.Index, addSat(op.Index, Len16(op.Text)+1), op.Text)
	default:
		return current
	}
}

// ApplyAll applies ops to current in order.
func ApplyAll(current string, ops ...Op) string {
	for _, op := range ops {
		current = Apply(current, op)
	}
	return current
}

// Len16 returns the length of s in UTF-16 code units.
func Len16(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// splice keeps current[:index] and current[suffixStart:], measured in UTF-16
// units, and puts text between them. index is clamped to the draft and
// suffixStart to [index, len].
func splice(current string, index, suffixStart int, text string) string {
	if isASCII(current) {
		start := clamp(index, 0, len(current))
		end := clamp(suffixStart, start, len(current))
		return concat(current[:start], text, current[end:])
	}

	units := utf16.Encode([]rune(current))
	start := clamp(index, 0, len(units))
	end := clamp(suffixStart, start, len(units))
	// A split surrogate pair decodes to U+FFFD, which is still one unit wide,
	// so later offsets stay aligned.
	return concat(string(utf16.Decode(units[:start])), text, string(utf16.Decode(units[end:])))
}

func concat(prefix, middle, suffix string) string {
	var b strings.Builder
	b.Grow(len(prefix) + len(middle) + len(suffix))
	b.WriteString(prefix)
	b.WriteString(middle)
	b.WriteString(suffix)
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func addSat(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	if b < 0 && a < math.MinInt-b {
		return math.MinInt
	}
	return a + b
}
