package model

import "strconv"

// Record is a persisted contract row as listed on the page. Amounts are
// decimal strings ("1234.56") and dates are ISO (YYYY-MM-DD).
type Record struct {
	ID              int64  `json:"id" yaml:"id"`
	Nome            string `json:"nome" yaml:"nome"`
	CNPJ            string `json:"cnpj" yaml:"cnpj"`
	Endereco        string `json:"endereco" yaml:"endereco"`
	CEP             string `json:"cep" yaml:"cep"`
	Estado          string `json:"estado" yaml:"estado"`
	Telefone        string `json:"telefone" yaml:"telefone"`
	Email           string `json:"email" yaml:"email"`
	ValorContrato   string `json:"valor_contrato" yaml:"valor_contrato"`
	InicioContrato  string `json:"inicio_contrato" yaml:"inicio_contrato"`
	TerminoContrato string `json:"termino_contrato,omitempty" yaml:"termino_contrato,omitempty"`
	Abrangencia     string `json:"abrangencia_contrato" yaml:"abrangencia_contrato"`
	TipoIndice      string `json:"tipo_indice,omitempty" yaml:"tipo_indice,omitempty"`
}

// IDString renders the record id, or "" for unsaved records.
func (r Record) IDString() string {
	if r.ID <= 0 {
		return ""
	}
	return strconv.FormatInt(r.ID, 10)
}
