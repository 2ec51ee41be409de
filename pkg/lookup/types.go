package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound classifies responses where the service answered but has no
	// data for the requested identifier.
	ErrNotFound = errors.New("lookup: not found")
	// ErrUnavailable classifies transport and decoding failures.
	ErrUnavailable = errors.New("lookup: service unavailable")
	// ErrInvalidInput is returned before any request when the digits do not
	// have the expected length.
	ErrInvalidInput = errors.New("lookup: invalid input")
)

// NotFoundError carries the message provided by the service, if any.
type NotFoundError struct {
	Service string
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("lookup: %s not found", e.Service)
	}
	return fmt.Sprintf("lookup: %s not found: %s", e.Service, e.Message)
}

// Unwrap lets errors.Is match ErrNotFound.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ServiceMessage returns the message attached to a not-found error, or "".
func ServiceMessage(err error) string {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return strings.TrimSpace(nf.Message)
	}
	return ""
}

// noNumber stands in for a missing street number.
const noNumber = "S/N"

// Company is the subset of the CNPJ payload the form consumes.
type Company struct {
	CNPJ      string `json:"cnpj"`
	Name      string `json:"razao_social"`
	TradeName string `json:"nome_fantasia"`
	Street    string `json:"logradouro"`
	Number    string `json:"numero"`
	District  string `json:"bairro"`
	City      string `json:"municipio"`
	State     string `json:"uf"`
	CEP       string `json:"cep"`
}

// DisplayName prefers the legal name and falls back to the trade name.
func (c Company) DisplayName() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return strings.TrimSpace(c.TradeName)
}

// Address formats "street, number - district, city". Empty parts stay in
// place and a missing number reads "S/N".
func (c Company) Address() string {
	number := c.Number
	if number == "" {
		number = noNumber
	}
	return c.Street + ", " + number + " - " + c.District + ", " + c.City
}

// Address is the subset of the CEP payload the form consumes.
type Address struct {
	CEP      string `json:"cep"`
	Street   string `json:"logradouro"`
	District string `json:"bairro"`
	City     string `json:"localidade"`
	State    string `json:"uf"`
}

// Line formats "street, district, city". Empty parts stay in place.
func (a Address) Line() string {
	return a.Street + ", " + a.District + ", " + a.City
}

// CNPJService resolves company data by CNPJ digits.
type CNPJService interface {
	LookupCNPJ(ctx context.Context, digits string) (Company, error)
}

// CEPService resolves address data by CEP digits.
type CEPService interface {
	LookupCEP(ctx context.Context, digits string) (Address, error)
}

// cnpjPayload mirrors the BrasilAPI CNPJ response; missing keys decode to "".
type cnpjPayload struct {
	CNPJ      string          `json:"cnpj"`
	Name      string          `json:"razao_social"`
	TradeName string          `json:"nome_fantasia"`
	Street    string          `json:"logradouro"`
	Number    json.RawMessage `json:"numero"`
	District  string          `json:"bairro"`
	City      string          `json:"municipio"`
	State     string          `json:"uf"`
	CEP       json.RawMessage `json:"cep"`
	Message   string          `json:"message"`
}

func (p cnpjPayload) company() Company {
	return Company{
		CNPJ:      strings.TrimSpace(p.CNPJ),
		Name:      strings.TrimSpace(p.Name),
		TradeName: strings.TrimSpace(p.TradeName),
		Street:    strings.TrimSpace(p.Street),
		Number:    rawString(p.Number),
		District:  strings.TrimSpace(p.District),
		City:      strings.TrimSpace(p.City),
		State:     strings.TrimSpace(p.State),
		CEP:       rawString(p.CEP),
	}
}

// cepPayload mirrors the ViaCEP response. The not-found flag has been served
// both as a boolean and as the string "true".
type cepPayload struct {
	CEP      string   `json:"cep"`
	Street   string   `json:"logradouro"`
	District string   `json:"bairro"`
	City     string   `json:"localidade"`
	State    string   `json:"uf"`
	Erro     flexBool `json:"erro"`
}

func (p cepPayload) address() Address {
	return Address{
		CEP:      strings.TrimSpace(p.CEP),
		Street:   strings.TrimSpace(p.Street),
		District: strings.TrimSpace(p.District),
		City:     strings.TrimSpace(p.City),
		State:    strings.TrimSpace(p.State),
	}
}

type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(strings.ToLower(string(data)), `"`) {
	case "true", "1":
		*b = true
	default:
		*b = false
	}
	return nil
}

// rawString accepts a JSON string or number and returns its text.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}
