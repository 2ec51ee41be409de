// Package format converts raw form values into the Brazilian display forms
// used by the contract preview and back.
package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/edesteves10/contrat-cond/pkg/mask"
)

const (
	isoDateLayout     = "2006-01-02"
	displayDateLayout = "02/01/2006"
	currencyPrefix    = "R$ "
)

// ErrInvalidAmount is returned when an amount cannot be parsed.
var ErrInvalidAmount = errors.New("format: invalid amount")

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// Date converts an ISO date (YYYY-MM-DD) to DD/MM/YYYY. Empty input yields an
// empty string; values that are not ISO dates are returned trimmed but
// otherwise untouched.
func Date(iso string) string {
	trimmed := strings.TrimSpace(iso)
	if trimmed == "" {
		return ""
	}
	parsed, err := time.Parse(isoDateLayout, trimmed)
	if err != nil {
		return trimmed
	}
	return parsed.Format(displayDateLayout)
}

// LongDate renders "<city>, 5 de março de 2024".
func LongDate(city string, t time.Time) string {
	month := monthNames[int(t.Month())-1]
	if city == "" {
		return fmt.Sprintf("%d de %s de %d", t.Day(), month, t.Year())
	}
	return fmt.Sprintf("%s, %d de %s de %d", city, t.Day(), month, t.Year())
}

// CentsFromRaw interprets the digits of raw as an integer amount of cents.
// Non-digit characters are ignored, so "1.234,56" and "123456" are equal.
func CentsFromRaw(raw string) int64 {
	digits := strings.TrimLeft(mask.Digits(raw), "0")
	if digits == "" {
		return 0
	}
	cents, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return cents
}

// Currency renders an amount of cents as "R$ 1.234,56".
func Currency(cents int64) string {
	if cents < 0 {
		return "-" + currencyPrefix + Decimal(-cents)
	}
	return currencyPrefix + Decimal(cents)
}

// CurrencyFromRaw is Currency(CentsFromRaw(raw)).
func CurrencyFromRaw(raw string) string {
	return Currency(CentsFromRaw(raw))
}

// Decimal renders cents as "1.234,56" without the currency symbol, the shape
// the amount input expects.
func Decimal(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	units := strconv.FormatInt(cents/100, 10)
	return fmt.Sprintf("%s%s,%02d", sign, groupThousands(units), cents%100)
}

// ParseAmount parses a locale formatted amount ("1.234,56") using "." as the
// thousands separator and "," as the decimal separator. Only digits and the
// two separators are accepted after an optional "R$" prefix.
func ParseAmount(text string) (float64, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "R$")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, ErrInvalidAmount
	}
	if strings.Trim(cleaned, "0123456789.,") != "" || mask.Digits(cleaned) == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.Replace(cleaned, ",", ".", 1)
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	return value, nil
}

// CentsFromDecimal converts a stored decimal such as "1234.56" or "1234.5"
// into cents. It is used when a persisted record is copied into the form.
func CentsFromDecimal(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	negative := strings.HasPrefix(trimmed, "-")
	trimmed = strings.TrimPrefix(trimmed, "-")

	whole, frac, _ := strings.Cut(trimmed, ".")
	if whole == "" {
		whole = "0"
	}
	if !mask.IsDigits(whole) || (frac != "" && !mask.IsDigits(frac)) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	switch {
	case len(frac) == 0:
		frac = "00"
	case len(frac) == 1:
		frac += "0"
	case len(frac) > 2:
		frac = frac[:2]
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	fraction, _ := strconv.ParseInt(frac, 10, 64)
	cents := units*100 + fraction
	if negative {
		cents = -cents
	}
	return cents, nil
}

// IndexLabel expands a readjustment index code into its display label.
func IndexLabel(code string) string {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	switch normalized {
	case "":
		return "Não Informado"
	case "IPCA":
		return "IPCA (Índice Nacional de Preços ao Consumidor Amplo)"
	case "IGPM", "IGP-M":
		return "IGPM (Índice Geral de Preços do Mercado)"
	case "NENHUM":
		return "Nenhum"
	default:
		return strings.TrimSpace(code) + " (Outro Índice)"
	}
}

func groupThousands(units string) string {
	if len(units) <= 3 {
		return units
	}
	var b strings.Builder
	lead := len(units) % 3
	if lead > 0 {
		b.WriteString(units[:lead])
	}
	for i := lead; i < len(units); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(units[i : i+3])
	}
	return b.String()
}
