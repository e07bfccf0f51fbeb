package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Manifest lists the CSV files that make up one batch
type Manifest struct {
	Series []ManifestEntry `yaml:"series" validate:"required,min=1,dive"`
}

// ManifestEntry is one series in a manifest
type ManifestEntry struct {
	ID   string `yaml:"id" validate:"omitempty,max=64,excludesall=: "`
	Path string `yaml:"path" validate:"required"`
}

// Validate checks the manifest before paths are resolved
func (m *Manifest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	return nil
}

// ParseManifest decodes a manifest. Relative paths are resolved against baseDir.
func ParseManifest(raw []byte, baseDir string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	for i := range m.Series {
		entry := &m.Series[i]
		if !filepath.IsAbs(entry.Path) {
			entry.Path = filepath.Join(baseDir, entry.Path)
		}
		if entry.ID == "" {
			entry.ID = SeriesIDFromPath(entry.Path)
		}
	}
	return &m, nil
}

// LoadManifest reads a manifest file and loads every series it lists.
// Series that fail to load are logged and skipped.
func LoadManifest(path string) ([]models.PriceSeries, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	m, err := ParseManifest(raw, filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	out := make([]models.PriceSeries, 0, len(m.Series))
	for _, entry := range m.Series {
		series, stats, err := LoadCSVFile(entry.Path, entry.ID)
		if err != nil {
			logger.Warn("Skipping series",
				logger.String("series_id", entry.ID),
				logger.String("path", entry.Path),
				logger.ErrorField(err),
			)
			continue
		}
		if stats.Skipped > 0 {
			logger.Info("Loaded series with skipped rows",
				logger.String("series_id", entry.ID),
				logger.Int("loaded", stats.Loaded),
				logger.Int("skipped", stats.Skipped),
			)
		}
		out = append(out, *series)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("manifest %s: %w", path, ErrNoRecords)
	}
	return out, nil
}

// SeriesIDFromPath derives a series ID such as "AAPL" from "data/AAPL.csv"
func SeriesIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
