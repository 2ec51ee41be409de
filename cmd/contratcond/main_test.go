package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contratcond "github.com/edesteves10/contrat-cond"
	"github.com/edesteves10/contrat-cond/internal/config"
	"github.com/edesteves10/contrat-cond/internal/prompt"
	"github.com/edesteves10/contrat-cond/internal/testsupport"
)

type answeringDriver struct {
	answers map[string]string
	confirm bool
	infos   []string
}

func (d *answeringDriver) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	if answer, ok := d.answers[cfg.Message]; ok {
		return answer, nil
	}
	return cfg.Default, nil
}

func (d *answeringDriver) Confirm(context.Context, prompt.ConfirmConfig) (bool, error) {
	return d.confirm, nil
}

func (d *answeringDriver) Select(_ context.Context, cfg prompt.SelectConfig) (int, error) {
	for i, option := range cfg.Options {
		if option == d.answers[cfg.Message] {
			return i, nil
		}
	}
	return cfg.DefaultIndex, nil
}

func (d *answeringDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func newApp(t *testing.T) *contratcond.App {
	t.Helper()
	srv := testsupport.NewLookupServer(t)
	srv.AddCompany("11222333000181", testsupport.AcmeCompany())
	srv.AddAddress("01310100", testsupport.PaulistaAddress())

	cfg := config.Default()
	cfg.Lookup.CNPJURL = srv.CNPJURL()
	cfg.Lookup.CEPURL = srv.CEPURL()
	cfg.Lookup.Delay = 10 * time.Millisecond
	cfg.Prefs.Path = ""
	cfg.Log.Level = "error"

	app, err := contratcond.NewFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func fillAnswers() map[string]string {
	return map[string]string{
		"CNPJ":                    "11222333000181",
		"Telefone":                "11987654321",
		"E-mail":                  "contato@acme.com.br",
		"Valor do Contrato (R$)":  "123456",
		"Início do Contrato":      "2024-03-05",
		"Abrangência do Contrato": "Nacional",
		"Índice de Reajuste":      "IPCA",
	}
}

func TestFill_PrintsPreviewOnce(t *testing.T) {
	driver := &answeringDriver{answers: fillAnswers(), confirm: true}
	var out bytes.Buffer
	pdfPath := filepath.Join(t.TempDir(), "contrato.pdf")

	require.NoError(t, fill(context.Background(), newApp(t), driver, 3, pdfPath, &out))

	previews := 0
	for _, info := range driver.infos {
		if strings.Contains(info, "CONTRATO DE PRESTAÇÃO DE SERVIÇOS") {
			previews++
		}
	}
	assert.Equal(t, 1, previews)
	assert.Contains(t, out.String(), "POST /\n")
	assert.Contains(t, out.String(), "Contrato_ACME_SERVICOS_L_NOVO.pdf")

	raw, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
}

func TestFill_DeclinedPreviewPrintsNothing(t *testing.T) {
	driver := &answeringDriver{answers: fillAnswers()}
	var out bytes.Buffer

	require.NoError(t, fill(context.Background(), newApp(t), driver, 3, "", &out))
	for _, info := range driver.infos {
		assert.NotContains(t, info, "CONTRATO DE PRESTAÇÃO DE SERVIÇOS")
	}
}
