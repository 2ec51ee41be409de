package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/edesteves10/contrat-cond/internal/config"
	"github.com/edesteves10/contrat-cond/pkg/export"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Lookup.Delay != time.Second || cfg.Lookup.Timeout != 10*time.Second {
		t.Fatalf("unexpected lookup timings %+v", cfg.Lookup)
	}
	if cfg.Export.MarginCM != 2 || cfg.Export.PageSize != export.PageA4 {
		t.Fatalf("unexpected export defaults %+v", cfg.Export)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contratcond.yaml")
	raw := []byte(`
lookup:
  cnpj_url: http://localhost:9000/cnpj/{digits}
  delay: 250ms
  timeout: 3s
export:
  page_size: Legal
  orientation: landscape
server:
  addr: 127.0.0.1:9090
log:
  level: debug
`)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := config.Default()
	want.Lookup.CNPJURL = "http://localhost:9000/cnpj/{digits}"
	want.Lookup.Delay = 250 * time.Millisecond
	want.Lookup.Timeout = 3 * time.Second
	want.Export.PageSize = "Legal"
	want.Export.Orientation = export.Landscape
	want.Server.Addr = "127.0.0.1:9090"
	want.Log.Level = "debug"

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad yaml":       "lookup: [",
		"negative delay": "lookup:\n  delay: -1s\n",
		"bad page size":  "export:\n  page_size: A0\n",
		"negative cache": "lookup:\n  cache_size: -4\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := config.Parse([]byte(raw)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
