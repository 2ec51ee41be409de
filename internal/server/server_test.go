package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edesteves10/contrat-cond/internal/server"
	"github.com/edesteves10/contrat-cond/internal/testsupport"
	"github.com/edesteves10/contrat-cond/pkg/form"
	"github.com/edesteves10/contrat-cond/pkg/lookup"
	"github.com/edesteves10/contrat-cond/pkg/model"
)

type errorBody struct {
	RequestID string `json:"request_id"`
	Error     struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	lookups := testsupport.NewLookupServer(t)
	lookups.AddCompany("11222333000181", testsupport.AcmeCompany())
	lookups.AddAddress("01310100", testsupport.PaulistaAddress())

	client := lookup.NewClient(
		lookup.WithCNPJURL(lookups.CNPJURL()),
		lookup.WithCEPURL(lookups.CEPURL()),
		lookup.WithTimeout(2*time.Second),
	)
	ctl, err := form.NewController(context.Background(),
		form.WithLookupClient(client),
		form.WithDelay(10*time.Millisecond),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctl.Close() })

	srv := httptest.NewServer(server.New(ctl, server.WithLookupClient(client)).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("X-Request-Id"), "req_"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer(t)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/form/input", strings.NewReader("{"))
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "req_fixed")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "req_fixed", resp.Header.Get("X-Request-Id"))
	body := decode[errorBody](t, resp)
	assert.Equal(t, "req_fixed", body.RequestID)
	assert.Equal(t, "BAD_JSON", body.Error.Code)
}

func TestInput_MasksAndSettlesLookup(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/form/input?settle=true",
		map[string]string{"field": model.FieldCNPJ, "value": "11222333000181"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	view := decode[form.View](t, resp)
	assert.Equal(t, "11.222.333/0001-81", view.Value(model.FieldCNPJ))
	assert.Equal(t, "ACME SERVICOS LTDA", view.Value(model.FieldNome))
	assert.Empty(t, view.Error(model.FieldCNPJ))
}

func TestInput_RejectsUnknownField(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/form/input",
		map[string]string{"field": "senha", "value": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_FIELD", decode[errorBody](t, resp).Error.Code)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/form/input",
		map[string]any{"field": model.FieldNome, "value": "x", "extra": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmit_InvalidThenValid(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/form/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[errorBody](t, resp)
	assert.Equal(t, "INVALID_FORM", body.Error.Code)
	assert.NotEmpty(t, body.Error.Details)

	record := model.Record{
		ID:             15,
		Nome:           "ACME SERVICOS LTDA",
		CNPJ:           "11222333000181",
		Endereco:       "Avenida Paulista, Bela Vista, São Paulo",
		CEP:            "01310100",
		Estado:         "SP",
		Telefone:       "11987654321",
		Email:          "contato@acme.com.br",
		ValorContrato:  "1234.56",
		InicioContrato: "2024-03-05",
		Abrangencia:    "Nacional",
		TipoIndice:     "IPCA",
	}
	resp = do(t, http.MethodPost, srv.URL+"/api/v1/form/edit", record)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[form.View](t, resp)
	assert.Equal(t, model.ModeEdit, view.Mode)
	assert.Equal(t, "/edit/15", view.Target.Path)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/form/submit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ok struct {
		Submission form.Submission `json:"submission"`
		Body       string          `json:"body"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ok))
	assert.Equal(t, "/edit/15", ok.Submission.Target.Path)
	assert.Contains(t, ok.Body, "valor_contrato=1.234%2C56")
}

func TestEdit_RequiresID(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/api/v1/form/edit", model.Record{Nome: "Sem id"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPreviewAndExport(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/form/preview/record", model.Record{
		ID:             7,
		Nome:           "Açaí Tech",
		ValorContrato:  "10.5",
		InicioContrato: "2024-01-02",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "7", doc.ID)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/form/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("content-type"))
	assert.Contains(t, resp.Header.Get("content-disposition"), "Contrato_")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))

	resp = do(t, http.MethodDelete, srv.URL+"/api/v1/form/preview", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[form.View](t, resp).PreviewVisible)
}

func TestToggleContrast(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/preferences/contrast", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[form.View](t, resp)
	assert.True(t, view.HighContrast)
	assert.Equal(t, "high-contrast", view.BodyClass)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/preferences/contrast", nil)
	assert.False(t, decode[form.View](t, resp).HighContrast)
}

func TestLookupRoutes(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/lookup/cnpj/11222333000181", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	company := decode[lookup.Company](t, resp)
	assert.Equal(t, "ACME SERVICOS LTDA", company.Name)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/lookup/cep/01310-100", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SP", decode[lookup.Address](t, resp).State)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/lookup/cep/00000000", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, form.MessageCEPNotFound, decode[errorBody](t, resp).Error.Message)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/lookup/cnpj/123", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
