package format_test

import (
	"errors"
	"testing"
	"time"

	"github.com/edesteves10/contrat-cond/pkg/format"
)

func TestDate(t *testing.T) {
	cases := map[string]string{
		"2024-03-05": "05/03/2024",
		"":           "",
		"  ":         "",
		"05/03/2024": "05/03/2024",
	}
	for in, want := range cases {
		if got := format.Date(in); got != want {
			t.Fatalf("Date(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCurrency(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{150, "R$ 1,50"},
		{0, "R$ 0,00"},
		{5, "R$ 0,05"},
		{123456, "R$ 1.234,56"},
		{100000000, "R$ 1.000.000,00"},
		{-150, "-R$ 1,50"},
	}
	for _, tc := range cases {
		if got := format.Currency(tc.cents); got != tc.want {
			t.Fatalf("Currency(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestCurrencyFromRaw(t *testing.T) {
	if got := format.CurrencyFromRaw("150"); got != "R$ 1,50" {
		t.Fatalf("got %q", got)
	}
	if got := format.CurrencyFromRaw("1.234,56"); got != "R$ 1.234,56" {
		t.Fatalf("got %q", got)
	}
	if got := format.CurrencyFromRaw(""); got != "R$ 0,00" {
		t.Fatalf("got %q", got)
	}
}

func TestParseAmount(t *testing.T) {
	got, err := format.ParseAmount("1.234,56")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != 1234.56 {
		t.Fatalf("ParseAmount = %v, want 1234.56", got)
	}

	zero, err := format.ParseAmount("0,00")
	if err != nil || zero != 0 {
		t.Fatalf("ParseAmount(0,00) = %v, %v", zero, err)
	}

	if _, err := format.ParseAmount("abc"); !errors.Is(err, format.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := format.ParseAmount(""); !errors.Is(err, format.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	for _, in := range []string{"inf", "Infinity", "1e3", "-5,00", "0x10", "NaN", ".,"} {
		if _, err := format.ParseAmount(in); !errors.Is(err, format.ErrInvalidAmount) {
			t.Fatalf("ParseAmount(%q) should be rejected, got %v", in, err)
		}
	}
}

func TestCentsFromDecimal(t *testing.T) {
	cases := map[string]int64{
		"1234.56": 123456,
		"1234.5":  123450,
		"10":      1000,
		"":        0,
		"0.999":   99,
	}
	for in, want := range cases {
		got, err := format.CentsFromDecimal(in)
		if err != nil {
			t.Fatalf("CentsFromDecimal(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("CentsFromDecimal(%q) = %d, want %d", in, got, want)
		}
	}
	if _, err := format.CentsFromDecimal("12,50"); err == nil {
		t.Fatal("expected error for comma decimal")
	}
}

func TestDecimal(t *testing.T) {
	if got := format.Decimal(123456); got != "1.234,56" {
		t.Fatalf("Decimal = %q", got)
	}
}

func TestIndexLabel(t *testing.T) {
	cases := map[string]string{
		"ipca":   "IPCA (Índice Nacional de Preços ao Consumidor Amplo)",
		"IGPM":   "IGPM (Índice Geral de Preços do Mercado)",
		"":       "Não Informado",
		"INPC":   "INPC (Outro Índice)",
		"Nenhum": "Nenhum",
	}
	for in, want := range cases {
		if got := format.IndexLabel(in); got != want {
			t.Fatalf("IndexLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLongDate(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	if got := format.LongDate("São Paulo", ts); got != "São Paulo, 5 de março de 2024" {
		t.Fatalf("LongDate = %q", got)
	}
}
