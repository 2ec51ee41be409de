package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/edesteves10/contrat-cond/pkg/form"
	"github.com/edesteves10/contrat-cond/pkg/model"
)

const (
	defaultAttempts = 3
	isoDateLayout   = "2006-01-02"
)

// ErrTooManyAttempts is returned when the form is still invalid after the
// configured number of correction rounds.
var ErrTooManyAttempts = errors.New("prompt: form still invalid")

// Session walks a user through the contract form.
type Session struct {
	driver   Driver
	ctl      *form.Controller
	attempts int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithAttempts limits the correction rounds after a failed validation.
func WithAttempts(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// NewSession binds driver to ctl.
func NewSession(driver Driver, ctl *form.Controller, options ...SessionOption) *Session {
	s := &Session{driver: driver, ctl: ctl, attempts: defaultAttempts}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Fill prompts every visible field, lets lookups autofill dependent fields and
// repeats the failing fields until the form validates.
func (s *Session) Fill(ctx context.Context) (form.Submission, error) {
	view := s.ctl.View()
	if err := s.driver.Info(ctx, view.Affordances.Title); err != nil {
		return form.Submission{}, err
	}

	var names []model.FieldName
	for _, field := range model.ContractFields() {
		if field.Type != model.InputHidden {
			names = append(names, field.Name)
		}
	}
	if err := s.ask(ctx, names); err != nil {
		return form.Submission{}, err
	}

	for round := 0; ; round++ {
		sub, err := s.ctl.Submit(ctx)
		if err == nil {
			return sub, nil
		}
		var verr *form.ValidationError
		if !errors.As(err, &verr) {
			return form.Submission{}, err
		}
		for _, issue := range verr.Result.Issues {
			if err := s.driver.Info(ctx, "! "+issue.Message); err != nil {
				return form.Submission{}, err
			}
		}
		if round+1 >= s.attempts {
			return form.Submission{}, fmt.Errorf("%w after %d attempts", ErrTooManyAttempts, s.attempts)
		}
		if err := s.ask(ctx, retryFields(verr)); err != nil {
			return form.Submission{}, err
		}
	}
}

// Preview renders the contract and prints its text.
func (s *Session) Preview(ctx context.Context) error {
	doc, err := s.ctl.Preview()
	if err != nil {
		return err
	}
	return s.driver.Info(ctx, doc.Text)
}

// ConfirmPreview asks whether to show the preview and prints it on yes.
func (s *Session) ConfirmPreview(ctx context.Context) (bool, error) {
	ok, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Visualizar contrato?", Default: true})
	if err != nil || !ok {
		return false, err
	}
	return true, s.Preview(ctx)
}

func (s *Session) ask(ctx context.Context, names []model.FieldName) error {
	for _, name := range names {
		field, ok := s.ctl.View().Field(name)
		if !ok {
			continue
		}
		value, err := s.askField(ctx, field)
		if err != nil {
			return err
		}
		s.ctl.Set(name, value)
		if field.Mask == "" || name == model.FieldTelefone {
			continue
		}
		if err := s.ctl.Settle(ctx); err != nil {
			return err
		}
		if msg := s.ctl.View().Error(name); msg != "" {
			if err := s.driver.Info(ctx, "! "+msg); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) askField(ctx context.Context, field form.FieldView) (string, error) {
	if field.Type == model.InputSelect {
		idx := indexOf(field.Options, field.Value)
		choice, err := s.driver.Select(ctx, SelectConfig{
			Message:      field.Label,
			Options:      field.Options,
			DefaultIndex: idx,
		})
		if err != nil {
			return "", err
		}
		if choice < 0 || choice >= len(field.Options) {
			return field.Value, nil
		}
		return field.Options[choice], nil
	}

	cfg := InputConfig{
		Message: field.Label,
		Default: field.Value,
		Help:    field.Placeholder,
	}
	if field.Type == model.InputDate {
		cfg.Validator = validateDate
	}
	value, err := s.driver.Input(ctx, cfg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// retryFields lists the fields to prompt again, including the companion
// field a combined rule depends on.
func retryFields(verr *form.ValidationError) []model.FieldName {
	seen := make(map[model.FieldName]bool)
	var out []model.FieldName
	add := func(name model.FieldName) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, issue := range verr.Result.Issues {
		add(issue.Field)
		switch issue.Field {
		case model.FieldCNPJ:
			add(model.FieldNome)
		case model.FieldCEP:
			add(model.FieldEndereco)
		}
	}
	return out
}

func validateDate(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if _, err := time.Parse(isoDateLayout, value); err != nil {
		return errors.New("data deve estar no formato AAAA-MM-DD")
	}
	return nil
}
