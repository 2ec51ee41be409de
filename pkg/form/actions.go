package form

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/edesteves10/contrat-cond/pkg/endpoints"
	"github.com/edesteves10/contrat-cond/pkg/format"
	"github.com/edesteves10/contrat-cond/pkg/mask"
	"github.com/edesteves10/contrat-cond/pkg/model"
	"github.com/edesteves10/contrat-cond/pkg/preview"
	"github.com/edesteves10/contrat-cond/pkg/validation"
)

// ErrInvalidForm is matched by the error Submit returns when a rule fails.
var ErrInvalidForm = errors.New("form: validation failed")

// ValidationError carries the failed gate result.
type ValidationError struct {
	Result validation.Result
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Result.Issues))
	for _, issue := range e.Result.Issues {
		fields = append(fields, issue.Field)
	}
	return fmt.Sprintf("form: validation failed on %s", strings.Join(fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidForm }

// Submission is a validated form ready to be posted.
type Submission struct {
	Target endpoints.Target `json:"target"`
	Values model.Values     `json:"values"`
}

// Encode renders the values as an urlencoded body.
func (s Submission) Encode() string {
	form := url.Values{}
	for key, value := range s.Values {
		form.Set(key, value)
	}
	return form.Encode()
}

// gatedFields are cleared before each validation pass.
var gatedFields = []model.FieldName{
	model.FieldCNPJ,
	model.FieldCEP,
	model.FieldTelefone,
	model.FieldEmail,
	model.FieldValor,
	model.FieldNome,
	model.FieldEndereco,
}

// RecordValues converts a saved record into form values, applying the input
// masks and the currency input format.
func RecordValues(record model.Record) model.Values {
	valor := ""
	if cents, err := format.CentsFromDecimal(record.ValorContrato); err == nil && strings.TrimSpace(record.ValorContrato) != "" {
		valor = format.Decimal(cents)
	}
	return model.Values{
		model.FieldID:          record.IDString(),
		model.FieldNome:        record.Nome,
		model.FieldCNPJ:        mask.CNPJ(record.CNPJ),
		model.FieldEndereco:    record.Endereco,
		model.FieldCEP:         mask.CEP(record.CEP),
		model.FieldEstado:      record.Estado,
		model.FieldTelefone:    mask.Phone(record.Telefone),
		model.FieldEmail:       record.Email,
		model.FieldValor:       valor,
		model.FieldInicio:      record.InicioContrato,
		model.FieldTermino:     record.TerminoContrato,
		model.FieldAbrangencia: record.Abrangencia,
		model.FieldTipoIndice:  record.TipoIndice,
	}
}

// ApplyRecord populates the fields from record without touching the mode.
func (c *Controller) ApplyRecord(record model.Record) View {
	c.cancelLookups()
	values := RecordValues(record)
	return c.update(func(s *FormState) {
		s.Values = values
		s.Errors = make(map[model.FieldName]string)
	})
}

// LoadForEdit populates the fields and switches to Edit mode targeting the
// record's edit endpoint.
func (c *Controller) LoadForEdit(record model.Record) (View, error) {
	id := record.IDString()
	target, err := c.catalog.Resolve(model.ModeEdit, id)
	if err != nil {
		return c.View(), err
	}
	c.cancelLookups()
	values := RecordValues(record)
	view := c.update(func(s *FormState) {
		s.Values = values
		s.Errors = make(map[model.FieldName]string)
		s.Mode = model.ModeEdit
		s.EditingID = id
		s.Target = target
	})
	c.logger.Info("contract loaded for edit", "id", id)
	return view, nil
}

// PreviewRecord populates the fields from record and shows its preview. The
// mode is left as it was.
func (c *Controller) PreviewRecord(record model.Record) (preview.Document, error) {
	c.ApplyRecord(record)
	return c.Preview()
}

// Clear resets every field and error and returns to Create mode.
func (c *Controller) Clear() View {
	c.cancelLookups()
	target, err := c.catalog.Resolve(model.ModeCreate, "")
	if err != nil {
		c.logger.Error("create target unavailable", "error", err)
	}
	return c.update(func(s *FormState) {
		fresh := newState()
		fresh.HighContrast = s.HighContrast
		fresh.Target = target
		*s = fresh
	})
}

// Preview renders the contract from the current values and shows it.
func (c *Controller) Preview() (preview.Document, error) {
	values := c.Values()
	doc, err := c.renderer.Render(values)
	if err != nil {
		return preview.Document{}, err
	}
	c.update(func(s *FormState) {
		s.Preview = &doc
		s.ShowPreview = true
	})
	return doc, nil
}

// HidePreview hides the preview container.
func (c *Controller) HidePreview() View {
	return c.update(func(s *FormState) {
		s.ShowPreview = false
	})
}

// Export renders the current preview and writes it as PDF to w.
func (c *Controller) Export(ctx context.Context, w io.Writer) (preview.Document, error) {
	doc, err := c.Preview()
	if err != nil {
		return preview.Document{}, err
	}
	if err := c.exporter.Export(ctx, doc, w); err != nil {
		return doc, err
	}
	return doc, nil
}

// Validate runs the submission gate and annotates failing fields.
func (c *Controller) Validate() validation.Result {
	values := c.Values()
	result := validation.Validate(values)
	errs := result.FieldErrors()
	c.update(func(s *FormState) {
		for _, field := range gatedFields {
			delete(s.Errors, field)
		}
		for field, messages := range errs {
			if len(messages) > 0 {
				s.Errors[field] = messages[0]
			}
		}
	})
	return result
}

// Submit validates the form. On success it returns the resolved target and
// the trimmed values. On failure the fields are annotated and the returned
// error matches ErrInvalidForm.
func (c *Controller) Submit(ctx context.Context) (Submission, error) {
	if err := ctx.Err(); err != nil {
		return Submission{}, err
	}
	result := c.Validate()
	if !result.Valid {
		c.logger.InfoCtx(ctx, "submission blocked", "issues", len(result.Issues))
		return Submission{}, &ValidationError{Result: result}
	}

	c.mu.Lock()
	target := c.state.Target
	values := make(model.Values, len(c.state.Values))
	for key, value := range c.state.Values {
		values[key] = strings.TrimSpace(value)
	}
	c.mu.Unlock()

	c.logger.InfoCtx(ctx, "submission ready", "operation", target.OperationID, "path", target.Path)
	return Submission{Target: target, Values: values}, nil
}

// ToggleContrast flips and persists the high contrast preference.
func (c *Controller) ToggleContrast() (View, error) {
	saved, err := c.store.Toggle()
	if err != nil {
		return c.View(), err
	}
	return c.update(func(s *FormState) {
		s.HighContrast = saved.HighContrast
	}), nil
}
