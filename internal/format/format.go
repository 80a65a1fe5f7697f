// Package format renders amounts and labels for display. Nothing here
// affects computed values.
package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var supported = []language.Tag{language.English, language.Spanish}

var matcher = language.NewMatcher(supported)

// symbols maps ISO 4217 codes to the symbol shown next to amounts.
var symbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"JPY": "¥",
	"MXN": "$",
	"ARS": "$",
	"COP": "$",
	"CLP": "$",
	"PEN": "S/",
	"BRL": "R$",
	"CAD": "C$",
	"CHF": "Fr",
	"CNY": "¥",
	"INR": "₹",
}

// MatchLanguage maps a user preference such as "es-AR" to a supported
// language, defaulting to English.
func MatchLanguage(pref string) language.Tag {
	tag, _, _ := matcher.Match(language.Make(strings.TrimSpace(pref)))
	base, _ := tag.Base()
	for _, s := range supported {
		if b, _ := s.Base(); b == base {
			return s
		}
	}
	return language.English
}

// Formatter formats amounts in one currency and language.
type Formatter struct {
	code    string
	symbol  string
	lang    language.Tag
	printer *message.Printer
}

// NewFormatter validates code as an ISO 4217 currency.
func NewFormatter(code, lang string) (*Formatter, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", code, err)
	}
	symbol, ok := symbols[unit.String()]
	if !ok {
		symbol = unit.String()
	}
	tag := MatchLanguage(lang)
	return &Formatter{
		code:    unit.String(),
		symbol:  symbol,
		lang:    tag,
		printer: message.NewPrinter(tag),
	}, nil
}

func (f *Formatter) Code() string   { return f.code }
func (f *Formatter) Symbol() string { return f.symbol }

// FormatAmount renders v with two decimals, locale grouping and the currency
// symbol: "€1,234.50" in English, "1.234,50 €" in Spanish.
func (f *Formatter) FormatAmount(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}
	n := f.printer.Sprint(number.Decimal(v.Round(2).InexactFloat64(), number.Scale(2)))
	if f.lang == language.Spanish {
		return sign + n + " " + f.symbol
	}
	return sign + f.symbol + n
}
