// Package conv implements the scalar codecs shared by the text and JSON
// forms: number and boolean parsing/formatting and the quoted-string escape
// rules.
package conv

import "strconv"

// FormatFloat32 renders the shortest decimal form that parses back to the
// same float32.
func FormatFloat32(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// ParseFloat32 parses a decimal float into float32 range.
func ParseFloat32(s string) (float32, bool) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, false
	}
	return float32(f), true
}

// ParseBool accepts "true"/"false", or any number (non-zero is true).
func ParseBool(s string) (bool, bool) {
	switch s {
	case "true":
		return true, true
	case "false":
		return false, true
	case "":
		return false, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false, false
	}
	return f != 0, true
}

// FormatBool renders "true" or "false".
func FormatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
