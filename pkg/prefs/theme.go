package prefs

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

const (
	// ThemeName is the registered theme for the contract screen.
	ThemeName = "contratos"
	// HighContrastVariant is the variant applied when high contrast is on.
	HighContrastVariant = "high-contrast"
	// HighContrastClass is the body class toggled alongside the variant.
	HighContrastClass = "high-contrast"
)

// Manifest describes the contract screen theme and its high contrast variant.
func Manifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    ThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"background": "#ffffff",
			"text":       "#212529",
			"primary":    "#0d6efd",
			"border":     "#ced4da",
			"error":      "#dc3545",
		},
		Templates: map[string]string{
			"contract.preview": "contract.html.tpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets/themes/contratos",
			Files: map[string]string{
				"stylesheet": "contratos.css",
			},
		},
		Variants: map[string]theme.Variant{
			HighContrastVariant: {
				Tokens: map[string]string{
					"background": "#000000",
					"text":       "#ffffff",
					"primary":    "#ffff00",
					"border":     "#ffffff",
					"error":      "#ff6b6b",
				},
				Assets: theme.Assets{
					Files: map[string]string{
						"stylesheet": "contratos.high-contrast.css",
					},
				},
			},
		},
	}
}

// Theme resolves renderer configuration for a preference state.
type Theme struct {
	manifest *theme.Manifest
	registry theme.ThemeProvider
}

// NewTheme registers the contract manifest with a go-theme registry.
func NewTheme() (*Theme, error) {
	manifest := Manifest()
	registry := theme.NewRegistry()
	if err := registry.Register(manifest); err != nil {
		return nil, fmt.Errorf("prefs: register theme: %w", err)
	}
	return &Theme{manifest: manifest, registry: registry}, nil
}

// Provider exposes the registry holding the contract manifest.
func (t *Theme) Provider() theme.ThemeProvider {
	return t.registry
}

// Resolve returns the tokens, CSS variables and asset resolver for prefs.
func (t *Theme) Resolve(prefs Preferences) *theme.RendererConfig {
	variant := ""
	var overlay theme.Variant
	if prefs.HighContrast {
		variant = HighContrastVariant
		overlay = t.manifest.Variants[HighContrastVariant]
	}

	tokens := merge(t.manifest.Tokens, overlay.Tokens)
	files := merge(t.manifest.Assets.Files, overlay.Assets.Files)
	prefix := t.manifest.Assets.Prefix
	if overlay.Assets.Prefix != "" {
		prefix = overlay.Assets.Prefix
	}

	return &theme.RendererConfig{
		Theme:    t.manifest.Name,
		Variant:  variant,
		Partials: merge(t.manifest.Templates, overlay.Templates),
		Tokens:   tokens,
		CSSVars:  cssVars(tokens),
		AssetURL: func(key string) string {
			name, ok := files[key]
			if !ok {
				return ""
			}
			return strings.TrimRight(prefix, "/") + "/" + name
		},
	}
}

// BodyClass returns the class list toggled on the page body.
func BodyClass(prefs Preferences) string {
	if prefs.HighContrast {
		return HighContrastClass
	}
	return ""
}

// StyleAttribute renders CSS variables as an inline style declaration.
func StyleAttribute(cfg *theme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cfg.CSSVars))
	for key := range cfg.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+cfg.CSSVars[key])
	}
	return strings.Join(parts, "; ")
}

func merge(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overlay {
		out[key] = value
	}
	return out
}

func cssVars(tokens map[string]string) map[string]string {
	out := make(map[string]string, len(tokens))
	for key, value := range tokens {
		out["--"+key] = value
	}
	return out
}
