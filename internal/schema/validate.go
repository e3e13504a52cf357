package schema

import (
	"regexp"
	"strconv"
	"strings"
)

// NullMarker is the canonical absent-value sentinel. On disk it always
// surfaces as an empty cell, never the literal string "null".
const NullMarker = ""

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// daysInMonth treats February as always having 28 days, regardless of
// year. This is a known simplification, not an oversight: it rejects
// 2024-02-29 along with every other leap-day date.
var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Validate reports whether value is a legal literal for dataType. The null
// marker is always valid; callers enforce NOT_NULL separately.
func Validate(value string, dataType DataType) bool {
	if value == NullMarker {
		return true
	}
	switch dataType {
	case Int:
		return validIntWidth(value, 32)
	case BigInt:
		return validIntWidth(value, 64)
	case Double, BigDouble:
		_, err := strconv.ParseFloat(value, 64)
		return err == nil
	case Char:
		return len([]rune(value)) == 1
	case VarChar, StringT:
		return value != ""
	case Date:
		return validDate(value)
	case Bool:
		lower := strings.ToLower(value)
		return lower == "true" || lower == "false" || lower == "1" || lower == "0"
	default:
		return false
	}
}

func validIntWidth(value string, bits int) bool {
	_, err := strconv.ParseInt(value, 10, bits)
	return err == nil
}

func validDate(value string) bool {
	if !dateRe.MatchString(value) {
		return false
	}
	year, err := strconv.Atoi(value[0:4])
	if err != nil {
		return false
	}
	month, err := strconv.Atoi(value[5:7])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	day, err := strconv.Atoi(value[8:10])
	if err != nil {
		return false
	}
	_ = year
	if day < 1 || day > daysInMonth[month-1] {
		return false
	}
	return true
}
