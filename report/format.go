package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatRule turns a computed amount into its display string.
type FormatRule struct {
	Kind     string `json:"kind"` // "currency", "number", or "percent"
	Decimals int32  `json:"decimals"`
	Symbol   string `json:"symbol,omitempty"` // currency prefix, e.g. "$"
}

// Default display rules, used when a definition's formatting map does not
// name a rule for a row.
var defaultRules = map[string]FormatRule{
	"currency": {Kind: "currency", Decimals: 0},
	"number":   {Kind: "number", Decimals: 0},
	"percent":  {Kind: "percent", Decimals: 1},
}

// ruleFor looks up the named format rule, falling back to the built-in
// defaults. An unknown name formats as a plain number.
func (d *Definition) ruleFor(name string) FormatRule {
	if name == "" {
		name = "currency"
	}
	if rule, ok := d.Formatting[name]; ok {
		return rule
	}
	if rule, ok := defaultRules[name]; ok {
		return rule
	}
	return defaultRules["number"]
}

// Format renders an amount per the rule: thousands-separated, fixed decimals,
// negatives parenthesized for currency, "%" suffix for percent.
func (r FormatRule) Format(d decimal.Decimal) string {
	negative := d.IsNegative()
	fixed := d.Abs().StringFixed(r.Decimals)

	intPart, fracPart, hasFrac := strings.Cut(fixed, ".")
	formatted := groupThousands(intPart)
	if hasFrac {
		formatted += "." + fracPart
	}

	switch r.Kind {
	case "currency":
		formatted = r.Symbol + formatted
		if negative {
			return "(" + formatted + ")"
		}
		return formatted
	case "percent":
		if negative {
			formatted = "-" + formatted
		}
		return formatted + "%"
	default:
		if negative {
			return "-" + formatted
		}
		return formatted
	}
}

// groupThousands inserts comma separators into an unsigned integer string.
func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
