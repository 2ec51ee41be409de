// Package testsupport holds fakes shared by package tests: an httptest server
// imitating the CNPJ and CEP services and a manual clock for debounce timers.
package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// LookupServer imitates the CNPJ (BrasilAPI shaped) and CEP (ViaCEP shaped)
// services. Unknown identifiers get the not-found shape of each service.
type LookupServer struct {
	*httptest.Server

	mu        sync.Mutex
	companies map[string]map[string]any
	addresses map[string]map[string]any
	requests  []string
	// Block, when set, is waited on before answering each request.
	Block chan struct{}
}

// NewLookupServer starts a server and registers its shutdown with t.
func NewLookupServer(t testing.TB) *LookupServer {
	t.Helper()

	s := &LookupServer{
		companies: make(map[string]map[string]any),
		addresses: make(map[string]map[string]any),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cnpj/v1/", s.handleCNPJ)
	mux.HandleFunc("/ws/", s.handleCEP)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// CNPJURL returns the endpoint template for lookup.WithCNPJURL.
func (s *LookupServer) CNPJURL() string { return s.URL + "/api/cnpj/v1/{digits}" }

// CEPURL returns the endpoint template for lookup.WithCEPURL.
func (s *LookupServer) CEPURL() string { return s.URL + "/ws/{digits}/json/" }

// AddCompany registers a CNPJ payload.
func (s *LookupServer) AddCompany(digits string, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[digits] = payload
}

// AddAddress registers a CEP payload.
func (s *LookupServer) AddAddress(digits string, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses[digits] = payload
}

// Requests returns the paths requested so far.
func (s *LookupServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *LookupServer) record(r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.Path)
	block := s.Block
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}
}

func (s *LookupServer) handleCNPJ(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	digits := strings.TrimPrefix(r.URL.Path, "/api/cnpj/v1/")

	s.mu.Lock()
	payload, ok := s.companies[digits]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"name":    "CnpjPromiseError",
			"message": "CNPJ " + digits + " não encontrado.",
			"type":    "not_found",
		})
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *LookupServer) handleCEP(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	digits := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/ws/"), "/json/")

	s.mu.Lock()
	payload, ok := s.addresses[digits]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"erro": true})
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// AcmeCompany is a complete CNPJ payload for 11222333000181.
func AcmeCompany() map[string]any {
	return map[string]any{
		"cnpj":          "11222333000181",
		"razao_social":  "ACME SERVICOS LTDA",
		"nome_fantasia": "ACME",
		"logradouro":    "AVENIDA PAULISTA",
		"numero":        "1000",
		"bairro":        "BELA VISTA",
		"municipio":     "SAO PAULO",
		"uf":            "SP",
		"cep":           "01310100",
	}
}

// PaulistaAddress is a complete CEP payload for 01310100.
func PaulistaAddress() map[string]any {
	return map[string]any{
		"cep":        "01310-100",
		"logradouro": "Avenida Paulista",
		"bairro":     "Bela Vista",
		"localidade": "São Paulo",
		"uf":         "SP",
	}
}
