package contratcond_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contratcond "github.com/edesteves10/contrat-cond"
	"github.com/edesteves10/contrat-cond/internal/config"
	"github.com/edesteves10/contrat-cond/pkg/model"
)

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Prefs.Path = filepath.Join(t.TempDir(), "prefs.yaml")
	cfg.Log.Level = "error"
	cfg.Export.PageSize = "letter"

	app, err := contratcond.NewFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.Equal(t, model.ModeCreate, app.Controller().View().Mode)

	view, err := app.Controller().ToggleContrast()
	require.NoError(t, err)
	assert.True(t, view.HighContrast)
	_, err = os.Stat(cfg.Prefs.Path)
	assert.NoError(t, err)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewFromConfig_RejectsInvalidExport(t *testing.T) {
	cfg := config.Default()
	cfg.Prefs.Path = ""
	cfg.Export.Orientation = "sideways"

	_, err := contratcond.NewFromConfig(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNew_MissingConfigFile(t *testing.T) {
	_, err := contratcond.New(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
