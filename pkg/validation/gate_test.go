package validation_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/edesteves10/contrat-cond/pkg/model"
	"github.com/edesteves10/contrat-cond/pkg/validation"
)

func validValues() model.Values {
	return model.Values{
		model.FieldCNPJ:     "11.222.333/0001-81",
		model.FieldNome:     "Acme Serviços Ltda",
		model.FieldCEP:      "01310-100",
		model.FieldEndereco: "Avenida Paulista, Bela Vista, São Paulo",
		model.FieldTelefone: "(11) 98765-4321",
		model.FieldEmail:    "contato@acme.com.br",
		model.FieldValor:    "1.234,56",
	}
}

func TestValidate_AllRulesPass(t *testing.T) {
	result := validation.Validate(validValues())
	if !result.Valid {
		t.Fatalf("expected valid form, got issues %+v", result.Issues)
	}
	if result.FieldErrors() != nil {
		t.Fatalf("expected no field errors")
	}
}

func TestRuleCNPJ(t *testing.T) {
	values := model.Values{model.FieldCNPJ: "11222333000181", model.FieldNome: "Acme"}
	if _, _, ok := validation.RuleCNPJ(values); !ok {
		t.Fatal("expected 14 digit cnpj with name to pass")
	}

	values[model.FieldCNPJ] = "1122233300018"
	field, message, ok := validation.RuleCNPJ(values)
	if ok {
		t.Fatal("expected 13 digit cnpj to fail")
	}
	if field != model.FieldCNPJ || message != validation.MessageCNPJ {
		t.Fatalf("unexpected annotation %q: %q", field, message)
	}

	values[model.FieldCNPJ] = "11222333000181"
	values[model.FieldNome] = "   "
	if _, _, ok := validation.RuleCNPJ(values); ok {
		t.Fatal("expected blank name to fail the combined rule")
	}
}

func TestValidate_EveryFailingRuleReported(t *testing.T) {
	values := model.Values{
		model.FieldCNPJ:     "123",
		model.FieldCEP:      "0131",
		model.FieldTelefone: "119",
		model.FieldEmail:    "not-an-email",
		model.FieldValor:    "0,00",
	}

	result := validation.Validate(values)
	if result.Valid {
		t.Fatal("expected invalid result")
	}

	want := map[model.FieldName][]string{
		model.FieldCNPJ:     {validation.MessageCNPJ},
		model.FieldCEP:      {validation.MessageCEP},
		model.FieldTelefone: {validation.MessagePhone},
		model.FieldEmail:    {validation.MessageEmail},
		model.FieldValor:    {validation.MessageAmount},
	}
	if diff := cmp.Diff(want, result.FieldErrors()); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_SingleFailureBlocks(t *testing.T) {
	values := validValues()
	values[model.FieldEmail] = "contato@acme"

	result := validation.Validate(values)
	if result.Valid {
		t.Fatal("expected a single failing rule to block submission")
	}
	if len(result.Issues) != 1 || result.Issues[0].Field != model.FieldEmail {
		t.Fatalf("unexpected issues %+v", result.Issues)
	}
}

func TestRulePhoneBounds(t *testing.T) {
	cases := map[string]bool{
		"(11) 3333-4444":  true,
		"(11) 98765-4321": true,
		"113333444":       false,
		"119876543210":    false,
	}
	for phone, want := range cases {
		_, _, ok := validation.RulePhone(model.Values{model.FieldTelefone: phone})
		if ok != want {
			t.Fatalf("RulePhone(%q) = %v, want %v", phone, ok, want)
		}
	}
}

func TestRuleAmount(t *testing.T) {
	cases := map[string]bool{
		"1.234,56": true,
		"0,01":     true,
		"0,00":     false,
		"":         false,
		"abc":      false,
		"-5,00":    false,
		"inf":      false,
		"Infinity": false,
		"1e3":      false,
	}
	for amount, want := range cases {
		_, _, ok := validation.RuleAmount(model.Values{model.FieldValor: amount})
		if ok != want {
			t.Fatalf("RuleAmount(%q) = %v, want %v", amount, ok, want)
		}
	}
}
