// Package parser classifies free-text transaction statements.
//
// Parsing never fails: a statement without a recognizable amount resolves to
// a zero amount and a statement without a cue word resolves to an expense.
// Callers decide what to do with a zero amount.
package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/smartspend-dev/smartspend/internal/model"
)

// amountRe matches the first number in a statement, in any script's decimal
// digits, and an optional currency token right after it.
var amountRe = regexp.MustCompile(`(?i)(\p{Nd}+\.?\p{Nd}*)\s*(taka|dollars?|usd|€|£)?`)

var (
	expenseCues = map[string]struct{}{"bought": {}, "paid": {}, "spent": {}, "purchased": {}}
	depositCues = map[string]struct{}{"received": {}, "got": {}, "deposit": {}, "gifted": {}}
)

// currencyCodes maps recognized currency tokens to ISO 4217 codes.
var currencyCodes = map[string]string{
	"taka":    "BDT",
	"dollar":  "USD",
	"dollars": "USD",
	"usd":     "USD",
	"€":       "EUR",
	"£":       "GBP",
}

// Parse returns the kind, category and amount of a statement. The category
// is the statement itself, trimmed.
func Parse(text string) (model.Kind, string, decimal.Decimal) {
	return Classify(text), strings.TrimSpace(text), Amount(text)
}

// Classify returns the kind implied by the cue words of a statement.
// Expense cues win over deposit cues; no cue at all means expense.
func Classify(text string) model.Kind {
	words := strings.Fields(strings.ToLower(text))
	if containsAny(words, expenseCues) {
		return model.KindExpense
	}
	if containsAny(words, depositCues) {
		return model.KindDeposit
	}
	return model.KindExpense
}

// Amount returns the first number found in text, or zero.
func Amount(text string) decimal.Decimal {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(asciiDigits(strings.TrimSuffix(m[1], ".")))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Currency returns the ISO code of the currency token following the first
// amount, or "" when the statement names none.
func Currency(text string) string {
	m := amountRe.FindStringSubmatch(text)
	if m == nil || m[2] == "" {
		return ""
	}
	return currencyCodes[strings.ToLower(m[2])]
}

// asciiDigits rewrites decimal digits of any script as 0-9.
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII || !unicode.IsDigit(r) {
			return r
		}
		return '0' + digitValue(r)
	}, s)
}

// digitValue returns the value of a decimal digit. Unicode lays out every
// decimal digit set as a contiguous 0-9 run, so the offset from the start
// of the run gives the value.
func digitValue(r rune) rune {
	start := r
	for unicode.IsDigit(start - 1) {
		start--
	}
	return (r - start) % 10
}

func containsAny(words []string, cues map[string]struct{}) bool {
	for _, w := range words {
		if _, ok := cues[w]; ok {
			return true
		}
	}
	return false
}
