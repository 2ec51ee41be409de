package model

import "github.com/edesteves10/contrat-cond/pkg/mask"

// FieldName identifies a form control. Values match the input names posted to
// the submission endpoints.
type FieldName = string

const (
	FieldID          FieldName = "id"
	FieldNome        FieldName = "nome"
	FieldCNPJ        FieldName = "cnpj"
	FieldEndereco    FieldName = "endereco"
	FieldCEP         FieldName = "cep"
	FieldEstado      FieldName = "estado"
	FieldTelefone    FieldName = "telefone"
	FieldEmail       FieldName = "email"
	FieldValor       FieldName = "valor_contrato"
	FieldInicio      FieldName = "inicio_contrato"
	FieldTermino     FieldName = "termino_contrato"
	FieldAbrangencia FieldName = "abrangencia_contrato"
	FieldTipoIndice  FieldName = "tipo_indice"
)

// Mode is the persistent state of the form.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// InputType hints how a front end should collect a field.
type InputType string

const (
	InputText   InputType = "text"
	InputEmail  InputType = "email"
	InputDate   InputType = "date"
	InputMoney  InputType = "money"
	InputSelect InputType = "select"
	InputHidden InputType = "hidden"
)

// Field describes a single control of the contract form.
type Field struct {
	Name        FieldName `json:"name"`
	Label       string    `json:"label"`
	Type        InputType `json:"type"`
	Mask        mask.Kind `json:"mask,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Required    bool      `json:"required"`
	Options     []string  `json:"options,omitempty"`
}

// IndexOptions lists the readjustment indexes offered by the form.
var IndexOptions = []string{"IPCA", "IGPM", "Nenhum"}

// ContractFields returns the ordered field list of the contract form. The
// hidden id field is last.
func ContractFields() []Field {
	return []Field{
		{Name: FieldCNPJ, Label: "CNPJ", Type: InputText, Mask: mask.KindCNPJ, Placeholder: "00.000.000/0000-00", Required: true},
		{Name: FieldNome, Label: "Razão Social", Type: InputText, Required: true},
		{Name: FieldCEP, Label: "CEP", Type: InputText, Mask: mask.KindCEP, Placeholder: "00000-000", Required: true},
		{Name: FieldEndereco, Label: "Endereço", Type: InputText, Required: true},
		{Name: FieldEstado, Label: "Estado", Type: InputText, Required: true},
		{Name: FieldTelefone, Label: "Telefone", Type: InputText, Mask: mask.KindPhone, Placeholder: "(00) 00000-0000", Required: true},
		{Name: FieldEmail, Label: "E-mail", Type: InputEmail, Required: true},
		{Name: FieldValor, Label: "Valor do Contrato (R$)", Type: InputMoney, Placeholder: "Ex: 1.234,56", Required: true},
		{Name: FieldInicio, Label: "Início do Contrato", Type: InputDate, Placeholder: "AAAA-MM-DD", Required: true},
		{Name: FieldTermino, Label: "Término do Contrato", Type: InputDate, Placeholder: "AAAA-MM-DD"},
		{Name: FieldAbrangencia, Label: "Abrangência do Contrato", Type: InputText, Required: true},
		{Name: FieldTipoIndice, Label: "Índice de Reajuste", Type: InputSelect, Options: IndexOptions},
		{Name: FieldID, Label: "ID", Type: InputHidden},
	}
}

// FieldNames returns the names of ContractFields in order.
func FieldNames() []FieldName {
	fields := ContractFields()
	out := make([]FieldName, 0, len(fields))
	for _, field := range fields {
		out = append(out, field.Name)
	}
	return out
}

// Values maps field names to their raw string values.
type Values map[FieldName]string

// Get returns the value for name, or "" when absent or the map is nil.
func (v Values) Get(name FieldName) string {
	if v == nil {
		return ""
	}
	return v[name]
}

// Clone returns an independent copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}
