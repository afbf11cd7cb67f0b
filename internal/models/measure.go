package models

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseMeasure splits a spec value such as "3.60 GHz", "1,024 MB" or "up to 4.90GHz"
// into its first number and the unit that follows it.
func ParseMeasure(value string) (decimal.Decimal, string, error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return decimal.Zero, "", nil
	}

	runes := []rune(value)
	m := measure{}

	for i, char := range runes {
		if m.unit != "" && isSpaceOrPlus(char) {
			break
		}
		if !m.processCharacter(runes, i) {
			break
		}
	}

	number := m.number
	d, err := decimal.NewFromString(strings.TrimSuffix(number, "."))

	if err != nil {
		return decimal.Zero, "", err
	}

	return d, m.unit, nil
}

// MeasureInt returns the integral part of the first number in value, or 0.
func MeasureInt(value string) int {
	d, _, err := ParseMeasure(value)
	if err != nil {
		return 0
	}
	return int(d.IntPart())
}

// MeasureDecimal returns the first number in value, or nil when there is none.
func MeasureDecimal(value string) *decimal.Decimal {
	d, _, err := ParseMeasure(value)
	if err != nil {
		return nil
	}
	return &d
}

// measure accumulates the first number of a value and the unit right after it.
type measure struct {
	number string
	unit   string
	// closed is set once something other than digits or a thousands separator follows the number.
	closed bool
}

// processCharacter consumes runes[i] and reports whether parsing should continue.
// A second number after the first one ends parsing, so "8 / 16" reads as 8.
func (m *measure) processCharacter(runes []rune, i int) bool {
	char := runes[i]
	switch {
	case m.number == "":
		if unicode.IsDigit(char) {
			m.number += string(char)
		}
	case m.unit == "":
		switch {
		case !m.closed && (unicode.IsDigit(char) || isDecimalPoint(char)):
			m.number += string(char)
		case !m.closed && isThousandsSeparator(runes, i):
		case unicode.IsLetter(char):
			m.unit += string(char)
		case unicode.IsDigit(char):
			return false
		default:
			m.closed = true
		}
	case unicode.IsLetter(char) || unicode.IsDigit(char) || char == '/':
		m.unit += string(char)
	}
	return true
}

// isThousandsSeparator reports a comma between two digits, as in "1,024".
func isThousandsSeparator(runes []rune, i int) bool {
	return runes[i] == ',' && i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1])
}

func isDecimalPoint(char rune) bool {
	return char == '.'
}

func isSpaceOrPlus(char rune) bool {
	return char == ' ' || char == '+'
}
