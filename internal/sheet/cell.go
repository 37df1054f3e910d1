package sheet

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Kind identifies what a cell holds.
type Kind uint8

const (
	// KindEmpty is a missing or blank cell.
	KindEmpty Kind = iota
	// KindText is a string cell.
	KindText
	// KindNumber is a numeric cell.
	KindNumber
)

// Cell is a single spreadsheet value. Cells are comparable, so they can be
// used directly as map keys: two cells are equal only when both kind and
// value match, which means Number(1) and Text("1") are distinct.
type Cell struct {
	kind Kind
	text string
	num  float64
}

// Empty returns a blank cell.
func Empty() Cell { return Cell{} }

// Text returns a string cell. An empty string yields a blank cell.
func Text(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{kind: KindText, text: s}
}

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{kind: KindNumber, num: f} }

// FromString builds a cell from a raw spreadsheet value. Values that are
// entirely numeric become Number cells, everything else is Text.
func FromString(s string) Cell {
	if s == "" {
		return Cell{}
	}
	if looksNumeric(s) {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return Number(f)
		}
	}
	return Text(s)
}

func looksNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	digits := false
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits = true
		case c == '+' || c == '-' || c == '.' || c == 'e' || c == 'E':
		default:
			return false
		}
	}
	return digits
}

// Kind reports what the cell holds.
func (c Cell) Kind() Kind { return c.kind }

// IsEmpty reports whether the cell is blank.
func (c Cell) IsEmpty() bool { return c.kind == KindEmpty }

// String coerces the cell to text the way a browser would print it:
// integers without a fraction, shortest round-trip digits otherwise, and
// blank cells as the empty string.
func (c Cell) String() string {
	switch c.kind {
	case KindText:
		return c.text
	case KindNumber:
		return FormatNumber(c.num)
	default:
		return ""
	}
}

// Float parses the cell as a floating point number. Number cells return
// their value; text cells are parsed from their leading numeric prefix, so
// "12kg" yields 12. ok is false for blank cells and text without a numeric
// prefix.
func (c Cell) Float() (float64, bool) {
	switch c.kind {
	case KindNumber:
		if math.IsNaN(c.num) {
			return 0, false
		}
		return c.num, true
	case KindText:
		return ParseFloatPrefix(c.text)
	default:
		return 0, false
	}
}

// MarshalJSON encodes numbers as JSON numbers, text as strings and blank
// cells as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindText:
		return json.Marshal(c.text)
	case KindNumber:
		if math.IsNaN(c.num) || math.IsInf(c.num, 0) {
			return json.Marshal(FormatNumber(c.num))
		}
		return json.Marshal(c.num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts numbers, strings and null.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*c = Empty()
	case float64:
		*c = Number(t)
	case string:
		*c = Text(t)
	case bool:
		*c = Text(strconv.FormatBool(t))
	default:
		*c = Text(string(data))
	}
	return nil
}

// FormatNumber prints f the way JavaScript's String(n) does.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		s = strings.Replace(s, "e-0", "e-", 1)
		s = strings.Replace(s, "e+0", "e+", 1)
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseFloatPrefix parses the longest numeric prefix of s after leading
// whitespace, mirroring JavaScript's parseFloat. It returns false when no
// digits are found.
func ParseFloatPrefix(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if s == "" {
		return 0, false
	}

	rest := s
	sign := ""
	if rest[0] == '+' || rest[0] == '-' {
		sign = rest[:1]
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, "Infinity") {
		if sign == "-" {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}

	i := 0
	intDigits := 0
	for i < len(rest) && isDigit(rest[i]) {
		i++
		intDigits++
	}
	fracDigits := 0
	if i < len(rest) && rest[i] == '.' {
		j := i + 1
		for j < len(rest) && isDigit(rest[j]) {
			j++
			fracDigits++
		}
		if intDigits > 0 || fracDigits > 0 {
			i = j
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return 0, false
	}
	if i < len(rest) && (rest[i] == 'e' || rest[i] == 'E') {
		j := i + 1
		if j < len(rest) && (rest[j] == '+' || rest[j] == '-') {
			j++
		}
		expStart := j
		for j < len(rest) && isDigit(rest[j]) {
			j++
		}
		if j > expStart {
			i = j
		}
	}

	f, err := strconv.ParseFloat(sign+rest[:i], 64)
	if err != nil {
		// Out of range exponents still carry a usable value (±Inf or 0).
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
