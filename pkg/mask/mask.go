// Package mask normalises Brazilian identifiers to their digits and applies
// the positional display masks used by the contract form (CNPJ, CEP, phone).
package mask

import (
	"strings"
	"unicode"
)

// Kind identifies an identifier family with a fixed digit length.
type Kind string

const (
	KindCNPJ  Kind = "cnpj"
	KindCEP   Kind = "cep"
	KindPhone Kind = "telefone"
)

const (
	// CNPJLength is the digit count of a complete CNPJ.
	CNPJLength = 14
	// CEPLength is the digit count of a complete CEP.
	CEPLength = 8
)

// segment is a run of digits preceded by a literal separator. The separator is
// only written once at least one digit of the segment is present.
type segment struct {
	size   int
	prefix string
}

var (
	cnpjPattern = []segment{{2, ""}, {3, "."}, {3, "."}, {4, "/"}, {2, "-"}}
	cepPattern  = []segment{{5, ""}, {3, "-"}}
	// landline and mobile numbers differ in the size of the middle group.
	phone10Pattern = []segment{{2, "("}, {4, ") "}, {4, "-"}}
	phone11Pattern = []segment{{2, "("}, {5, ") "}, {4, "-"}}
)

// Digits strips every non-digit rune from raw.
func Digits(raw string) string {
	if raw == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Length reports the digit count a kind must reach before it is considered
// complete. Phone numbers report the mobile length.
func Length(kind Kind) int {
	switch kind {
	case KindCNPJ:
		return CNPJLength
	case KindCEP:
		return CEPLength
	case KindPhone:
		return 11
	default:
		return 0
	}
}

// Apply strips raw down to digits and inserts the separators of kind at their
// fixed offsets. Digits past the pattern are appended unmasked. Unknown kinds
// return the digits untouched.
func Apply(kind Kind, raw string) string {
	digits := Digits(raw)
	switch kind {
	case KindCNPJ:
		return applyPattern(cnpjPattern, digits)
	case KindCEP:
		return applyPattern(cepPattern, digits)
	case KindPhone:
		if len(digits) > 10 {
			return applyPattern(phone11Pattern, digits)
		}
		return applyPattern(phone10Pattern, digits)
	default:
		return digits
	}
}

// CNPJ masks raw as XX.XXX.XXX/XXXX-XX.
func CNPJ(raw string) string { return Apply(KindCNPJ, raw) }

// CEP masks raw as XXXXX-XXX.
func CEP(raw string) string { return Apply(KindCEP, raw) }

// Phone masks raw as (XX) XXXX-XXXX or (XX) XXXXX-XXXX.
func Phone(raw string) string { return Apply(KindPhone, raw) }

// Complete reports whether raw carries exactly the digit count of kind.
func Complete(kind Kind, raw string) bool {
	want := Length(kind)
	return want > 0 && len(Digits(raw)) == want
}

func applyPattern(pattern []segment, digits string) string {
	if digits == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(digits) + 6)
	rest := digits
	for i, seg := range pattern {
		if rest == "" {
			break
		}
		take := seg.size
		if i == len(pattern)-1 || take > len(rest) {
			take = len(rest)
		}
		b.WriteString(seg.prefix)
		b.WriteString(rest[:take])
		rest = rest[take:]
	}
	return b.String()
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
