package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	cols  map[string]int
	types map[int]string // "int" or "string", used to pick a validator
}

func (f fakeLookup) Index(name string) (int, bool) {
	idx, ok := f.cols[name]
	return idx, ok
}

func (f fakeLookup) Validate(idx int, value string) bool {
	if f.types[idx] == "int" {
		for _, r := range value {
			if r < '0' || r > '9' {
				return false
			}
		}
		return value != ""
	}
	return true
}

func newLookup() fakeLookup {
	return fakeLookup{
		cols:  map[string]int{"id": 0, "name": 1},
		types: map[int]string{0: "int", 1: "string"},
	}
}

func TestParseSingleAtom(t *testing.T) {
	expr, err := Parse([]string{"id", "=", "5"}, newLookup())
	require.NoError(t, err)
	require.Len(t, expr, 1)
	require.Len(t, expr[0], 1)
	assert.Equal(t, "id", expr[0][0].Column)
	assert.Equal(t, "5", expr[0][0].Value)
}

func TestParseAndGroup(t *testing.T) {
	expr, err := Parse([]string{"id", ">", "1", "and", "name", "=", "bob"}, newLookup())
	require.NoError(t, err)
	require.Len(t, expr, 1)
	require.Len(t, expr[0], 2)
}

func TestParseOrSplitsGroups(t *testing.T) {
	expr, err := Parse([]string{"id", "=", "1", "or", "id", "=", "2"}, newLookup())
	require.NoError(t, err)
	require.Len(t, expr, 2)
}

func TestParseStripsQuotes(t *testing.T) {
	expr, err := Parse([]string{"name", "=", `"bob smith"`}, newLookup())
	require.NoError(t, err)
	assert.Equal(t, "bob smith", expr[0][0].Value)
}

func TestParseUnknownColumnIsLogicError(t *testing.T) {
	_, err := Parse([]string{"ghost", "=", "1"}, newLookup())
	require.Error(t, err)
}

func TestParseBadOperatorIsSyntaxError(t *testing.T) {
	_, err := Parse([]string{"id", "~", "1"}, newLookup())
	require.Error(t, err)
}

func TestParseTypeMismatchIsMismatchError(t *testing.T) {
	_, err := Parse([]string{"id", "=", "not-a-number"}, newLookup())
	require.Error(t, err)
}

func TestParseIncompleteConditionIsSyntaxError(t *testing.T) {
	_, err := Parse([]string{"id", "="}, newLookup())
	require.Error(t, err)
}

func TestEvaluateEmptyExpressionMatchesEverything(t *testing.T) {
	assert.True(t, Evaluate(nil, func(int) string { return "anything" }))
}

func TestEvaluateOrAcrossGroups(t *testing.T) {
	expr, err := Parse([]string{"id", "=", "1", "or", "id", "=", "2"}, newLookup())
	require.NoError(t, err)

	row := map[int]string{0: "2"}
	assert.True(t, Evaluate(expr, func(idx int) string { return row[idx] }))

	row[0] = "3"
	assert.False(t, Evaluate(expr, func(idx int) string { return row[idx] }))
}

func TestCompareValuesNumericVsLexicographic(t *testing.T) {
	assert.True(t, CompareValues("10", ">", "9"))  // numeric: 10 > 9
	assert.True(t, CompareValues("abc", "<", "abd"))
}

func TestCompareValuesEqualityIsAlwaysString(t *testing.T) {
	assert.True(t, CompareValues("5", "=", "5"))
	assert.False(t, CompareValues("5", "=", "5.0"))
}
