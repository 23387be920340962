package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"text/template"

	"github.com/ludo-technologies/hunkscope/domain"
)

// defaultConfigTmpl contains the embedded default configuration template
//
//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

// DefaultConfigValues holds the values used to render the default config
// template. They come from DefaultConfig so the file and the code agree.
type DefaultConfigValues struct {
	PolicyMean       string
	PolicyLogScaled  string
	Policy           string
	SameFileGamma    string
	CrossFileGamma   string
	PackageScanLines int
	Cutoff           int
	Format           string
	LogFilename      string
	LogLevel         string
	LogMaxSize       int
	LogMaxBackups    int
	LogMaxAge        int
}

func newDefaultConfigValues() DefaultConfigValues {
	d := DefaultConfig()
	return DefaultConfigValues{
		PolicyMean:       string(domain.DivergencePolicyMean),
		PolicyLogScaled:  string(domain.DivergencePolicyLogScaled),
		Policy:           d.Divergence.Policy,
		SameFileGamma:    formatTomlFloat(d.Divergence.SameFileGamma),
		CrossFileGamma:   formatTomlFloat(d.Divergence.CrossFileGamma),
		PackageScanLines: d.Divergence.PackageScanLines,
		Cutoff:           d.Proximity.Cutoff,
		Format:           d.Output.Format,
		LogFilename:      d.Log.Filename,
		LogLevel:         d.Log.Level,
		LogMaxSize:       d.Log.MaxSize,
		LogMaxBackups:    d.Log.MaxBackups,
		LogMaxAge:        d.Log.MaxAge,
	}
}

// formatTomlFloat keeps a decimal point so the key decodes as a float
func formatTomlFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

// GenerateDefaultConfigTOML renders the default config template and returns
// the resulting TOML string
func GenerateDefaultConfigTOML() (string, error) {
	tmpl, err := template.New("default_config").Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDefaultConfigValues()); err != nil {
		return "", fmt.Errorf("failed to render default config template: %w", err)
	}

	return buf.String(), nil
}
