package form

import (
	"github.com/edesteves10/contrat-cond/pkg/endpoints"
	"github.com/edesteves10/contrat-cond/pkg/mask"
	"github.com/edesteves10/contrat-cond/pkg/model"
	"github.com/edesteves10/contrat-cond/pkg/prefs"
	"github.com/edesteves10/contrat-cond/pkg/preview"
)

// Messages shown next to the CNPJ and CEP fields after a lookup.
const (
	MessageCNPJNotFound    = "CNPJ não encontrado ou inválido."
	MessageCNPJUnavailable = "Erro ao conectar com BrasilAPI."
	MessageCEPNotFound     = "CEP não encontrado."
	MessageCEPUnavailable  = "Erro ao conectar com ViaCEP."
)

// Labels for the two form modes.
const (
	SubmitLabelCreate = "Salvar Contrato"
	SubmitLabelEdit   = "Atualizar Contrato"
	TitleCreate       = "Cadastrar Novo Contrato"
	titleEditPrefix   = "Editar Contrato ID: "
)

// FormState is the mutable state behind the form.
type FormState struct {
	Mode      model.Mode
	EditingID string
	Values    model.Values
	Errors    map[model.FieldName]string
	Loading   map[mask.Kind]bool

	Target       endpoints.Target
	Preview      *preview.Document
	ShowPreview  bool
	HighContrast bool
}

func newState() FormState {
	return FormState{
		Mode:    model.ModeCreate,
		Values:  make(model.Values),
		Errors:  make(map[model.FieldName]string),
		Loading: make(map[mask.Kind]bool),
	}
}

// FieldView is one input as displayed.
type FieldView struct {
	model.Field
	Value   string `json:"value"`
	Error   string `json:"error,omitempty"`
	Loading bool   `json:"loading,omitempty"`
}

// Affordances are the mode dependent controls around the form.
type Affordances struct {
	Title         string `json:"title"`
	SubmitLabel   string `json:"submit_label"`
	CancelVisible bool   `json:"cancel_visible"`
	ExportVisible bool   `json:"export_visible"`
}

// View is a snapshot of everything the front end displays.
type View struct {
	Mode        model.Mode       `json:"mode"`
	EditingID   string           `json:"editing_id,omitempty"`
	Affordances Affordances      `json:"affordances"`
	Target      endpoints.Target `json:"target"`
	Fields      []FieldView      `json:"fields"`

	PreviewVisible  bool   `json:"preview_visible"`
	PreviewHTML     string `json:"preview_html,omitempty"`
	PreviewFilename string `json:"preview_filename,omitempty"`

	HighContrast bool              `json:"high_contrast"`
	BodyClass    string            `json:"body_class,omitempty"`
	ThemeVariant string            `json:"theme_variant,omitempty"`
	ThemeStyle   string            `json:"theme_style,omitempty"`
	Tokens       map[string]string `json:"tokens,omitempty"`
}

// Field returns the view of one input.
func (v View) Field(name model.FieldName) (FieldView, bool) {
	for _, field := range v.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldView{}, false
}

// Value is shorthand for the displayed value of a field.
func (v View) Value(name model.FieldName) string {
	field, _ := v.Field(name)
	return field.Value
}

// Error is shorthand for the message shown under a field.
func (v View) Error(name model.FieldName) string {
	field, _ := v.Field(name)
	return field.Error
}

// AffordancesFor returns the controls shown for mode.
func AffordancesFor(mode model.Mode, id string) Affordances {
	if mode == model.ModeEdit {
		return Affordances{
			Title:         titleEditPrefix + id,
			SubmitLabel:   SubmitLabelEdit,
			CancelVisible: true,
			ExportVisible: true,
		}
	}
	return Affordances{
		Title:       TitleCreate,
		SubmitLabel: SubmitLabelCreate,
	}
}

// render derives the view from state. It is the only place where state
// becomes presentation.
func render(state FormState, th *prefs.Theme) View {
	fields := model.ContractFields()
	out := View{
		Mode:           state.Mode,
		EditingID:      state.EditingID,
		Affordances:    AffordancesFor(state.Mode, state.EditingID),
		Target:         state.Target,
		Fields:         make([]FieldView, 0, len(fields)),
		PreviewVisible: state.ShowPreview,
		HighContrast:   state.HighContrast,
	}
	for _, field := range fields {
		out.Fields = append(out.Fields, FieldView{
			Field:   field,
			Value:   state.Values.Get(field.Name),
			Error:   state.Errors[field.Name],
			Loading: state.Loading[mask.Kind(field.Name)],
		})
	}
	if state.Preview != nil {
		out.PreviewHTML = state.Preview.Body
		out.PreviewFilename = state.Preview.Filename
	}

	p := prefs.Preferences{HighContrast: state.HighContrast}
	out.BodyClass = prefs.BodyClass(p)
	if th != nil {
		cfg := th.Resolve(p)
		out.ThemeVariant = cfg.Variant
		out.ThemeStyle = prefs.StyleAttribute(cfg)
		out.Tokens = cfg.Tokens
	}
	return out
}
