package preview

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/edesteves10/contrat-cond/pkg/format"
	"github.com/edesteves10/contrat-cond/pkg/model"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

const (
	// NewContractID is shown when the form has no saved contract loaded.
	NewContractID = "NOVO"

	slugRunes      = 15
	htmlTemplate   = "contract.html"
	textTemplate   = "contract.txt"
	templateSuffix = ".tpl"
)

// TemplatesFS exposes the built-in contract templates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// Issuer identifies the contracted company printed in the header and
// signature block.
type Issuer struct {
	Name string
	CNPJ string
	City string
}

// DefaultIssuer is the company issuing the contracts.
var DefaultIssuer = Issuer{
	Name: "M.A. Automatização",
	CNPJ: "27.857.310/0001-83",
	City: "São Paulo",
}

// Data is the template view of the form. Amount and dates are kept raw; the
// templates format them through the br_currency and br_date filters.
type Data struct {
	ID          string
	Nome        string
	CNPJ        string
	Endereco    string
	CEP         string
	Estado      string
	Telefone    string
	Email       string
	Valor       string
	Inicio      string
	Termino     string
	Abrangencia string
	Indice      string
	LocalData   string
}

// Document is a rendered contract.
type Document struct {
	ID       string `json:"id"`
	Body     string `json:"body"`
	Text     string `json:"text"`
	Slug     string `json:"slug"`
	Filename string `json:"filename"`
}

// Lines splits the plain text body into lines.
func (d Document) Lines() []string {
	if d.Text == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(d.Text, "\n"), "\n")
}

// Renderer produces contract documents from form values.
type Renderer struct {
	engine *Engine
	issuer Issuer
	now    func() time.Time
	policy *bluemonday.Policy
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithIssuer overrides the contracted company.
func WithIssuer(issuer Issuer) Option {
	return func(r *Renderer) {
		r.issuer = issuer
	}
}

// WithNow overrides the clock used for the place/date line.
func WithNow(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// WithTemplates replaces the built-in templates. The filesystem must provide
// contract.html.tpl and contract.txt.tpl.
func WithTemplates(files fs.FS) Option {
	return func(r *Renderer) {
		if files == nil {
			return
		}
		if engine, err := NewEngine(files, templateSuffix); err == nil {
			r.engine = engine
		}
	}
}

// NewRenderer builds a renderer over the embedded templates.
func NewRenderer(options ...Option) (*Renderer, error) {
	engine, err := NewEngine(TemplatesFS(), templateSuffix)
	if err != nil {
		return nil, err
	}
	r := &Renderer{
		engine: engine,
		issuer: DefaultIssuer,
		now:    time.Now,
		policy: bodyPolicy(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	r.engine.GlobalContext(pongo2.Context{"emitente": r.issuer})
	return r, nil
}

// DataFrom maps form values into template data. Missing values stay empty and
// the id defaults to NewContractID.
func (r *Renderer) DataFrom(values model.Values) Data {
	id := strings.TrimSpace(values.Get(model.FieldID))
	if id == "" {
		id = NewContractID
	}
	return Data{
		ID:          id,
		Nome:        strings.TrimSpace(values.Get(model.FieldNome)),
		CNPJ:        values.Get(model.FieldCNPJ),
		Endereco:    values.Get(model.FieldEndereco),
		CEP:         values.Get(model.FieldCEP),
		Estado:      values.Get(model.FieldEstado),
		Telefone:    values.Get(model.FieldTelefone),
		Email:       values.Get(model.FieldEmail),
		Valor:       values.Get(model.FieldValor),
		Inicio:      values.Get(model.FieldInicio),
		Termino:     values.Get(model.FieldTermino),
		Abrangencia: values.Get(model.FieldAbrangencia),
		Indice:      format.IndexLabel(values.Get(model.FieldTipoIndice)),
		LocalData:   format.LongDate(r.issuer.City, r.now()),
	}
}

// Render fills the contract templates with values.
func (r *Renderer) Render(values model.Values) (Document, error) {
	data := r.DataFrom(values)
	ctx := pongo2.Context{"contrato": data}

	body, err := r.engine.RenderTemplate(htmlTemplate, ctx)
	if err != nil {
		return Document{}, fmt.Errorf("preview: render body: %w", err)
	}
	text, err := r.engine.RenderTemplate(textTemplate, ctx)
	if err != nil {
		return Document{}, fmt.Errorf("preview: render text: %w", err)
	}

	slug := Slug(data.Nome, data.ID)
	return Document{
		ID:       data.ID,
		Body:     strings.TrimSpace(r.policy.Sanitize(body)),
		Text:     strings.TrimSpace(text) + "\n",
		Slug:     slug,
		Filename: Filename(slug),
	}, nil
}

// Slug takes the first 15 runes of name, replaces anything outside
// [A-Za-z0-9] with "_" and appends "_" and the contract id. An empty name
// yields "_<id>".
func Slug(name, id string) string {
	if id == "" {
		id = NewContractID
	}
	runes := []rune(name)
	if len(runes) > slugRunes {
		runes = runes[:slugRunes]
	}
	var b strings.Builder
	for _, r := range runes {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String() + "_" + id
}

// Filename is the download name for a slug.
func Filename(slug string) string {
	return "Contrato_" + slug + ".pdf"
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func bodyPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("article", "section", "header")
		p.AllowAttrs("class").Globally()
		p.AllowDataAttributes()
		policy = p
	})
	return policy
}
