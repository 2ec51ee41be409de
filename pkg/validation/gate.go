package validation

import (
	"regexp"
	"strings"

	"github.com/edesteves10/contrat-cond/pkg/format"
	"github.com/edesteves10/contrat-cond/pkg/mask"
	"github.com/edesteves10/contrat-cond/pkg/model"
)

// Messages shown next to the offending field when a rule fails.
const (
	MessageCNPJ    = "CNPJ deve ter 14 dígitos e o nome da empresa deve ser preenchido."
	MessageCEP     = "CEP deve ter 8 dígitos e o endereço deve ser preenchido."
	MessagePhone   = "Telefone inválido (mín. 10 / máx. 11 dígitos)."
	MessageEmail   = "Por favor, insira um endereço de e-mail válido."
	MessageAmount  = "O valor do contrato deve ser maior que zero."
	phoneMinDigits = 10
	phoneMaxDigits = 11
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Issue is a failed rule annotated on a field.
type Issue struct {
	Field   model.FieldName `json:"field"`
	Message string          `json:"message"`
}

// Result is the outcome of the submission gate.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// FieldErrors groups issue messages by field, dropping duplicates.
func (r Result) FieldErrors() map[model.FieldName][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[model.FieldName][]string)
	for _, issue := range r.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	for field, messages := range out {
		out[field] = normalizeMessages(messages)
	}
	return out
}

// Rule checks one aspect of the form. It returns the field to annotate and a
// message when the rule fails, or ok=true.
type Rule func(values model.Values) (field model.FieldName, message string, ok bool)

// DefaultRules returns the rules evaluated before submission, in display order.
func DefaultRules() []Rule {
	return []Rule{
		RuleCNPJ,
		RuleCEP,
		RulePhone,
		RuleEmail,
		RuleAmount,
	}
}

// Validate evaluates every default rule. Rules are independent and all failing
// messages are reported.
func Validate(values model.Values) Result {
	return ValidateWith(values, DefaultRules()...)
}

// ValidateWith evaluates the provided rules without short-circuiting.
func ValidateWith(values model.Values, rules ...Rule) Result {
	result := Result{Valid: true}
	for _, rule := range rules {
		if rule == nil {
			continue
		}
		field, message, ok := rule(values)
		if ok {
			continue
		}
		result.Valid = false
		result.Issues = append(result.Issues, Issue{Field: field, Message: message})
	}
	return result
}

// RuleCNPJ requires 14 CNPJ digits and a company name.
func RuleCNPJ(values model.Values) (model.FieldName, string, bool) {
	ok := len(mask.Digits(values.Get(model.FieldCNPJ))) == mask.CNPJLength &&
		strings.TrimSpace(values.Get(model.FieldNome)) != ""
	return model.FieldCNPJ, MessageCNPJ, ok
}

// RuleCEP requires 8 CEP digits and an address.
func RuleCEP(values model.Values) (model.FieldName, string, bool) {
	ok := len(mask.Digits(values.Get(model.FieldCEP))) == mask.CEPLength &&
		strings.TrimSpace(values.Get(model.FieldEndereco)) != ""
	return model.FieldCEP, MessageCEP, ok
}

// RulePhone requires 10 or 11 phone digits.
func RulePhone(values model.Values) (model.FieldName, string, bool) {
	n := len(mask.Digits(values.Get(model.FieldTelefone)))
	return model.FieldTelefone, MessagePhone, n >= phoneMinDigits && n <= phoneMaxDigits
}

// RuleEmail requires a local@domain.tld shape.
func RuleEmail(values model.Values) (model.FieldName, string, bool) {
	return model.FieldEmail, MessageEmail, emailPattern.MatchString(strings.TrimSpace(values.Get(model.FieldEmail)))
}

// RuleAmount requires a strictly positive amount.
func RuleAmount(values model.Values) (model.FieldName, string, bool) {
	amount, err := format.ParseAmount(values.Get(model.FieldValor))
	return model.FieldValor, MessageAmount, err == nil && amount > 0
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
