package mediaset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"
)

// SpecVersion is the Metadaten.yaml schema version this code writes.
const SpecVersion = "1.0"

// SchemaURL is the published schema pointer emitted as the first line of
// every Metadaten.yaml.
const SchemaURL = "https://raw.githubusercontent.com/mediathek/schema/main/metadaten.schema.json"

// Untertyp flavors.
const (
	UntertypEreignis   = "Ereignis"
	UntertypRueckblick = "Rückblick"
)

// TypFamilienfilm is the only mediaset type currently in use.
const TypFamilienfilm = "Familienfilm"

// Metadata is the canonical Metadaten.yaml record. Key names and casing are
// part of the on-disk contract and must not change.
type Metadata struct {
	Schema                  string   `yaml:"$schema,omitempty"`
	Spezifikationsversion   string   `yaml:"Spezifikationsversion"`
	ID                      string   `yaml:"Id"`
	Titel                   string   `yaml:"Titel"`
	Typ                     string   `yaml:"Typ"`
	Untertyp                string   `yaml:"Untertyp"`
	Jahr                    string   `yaml:"Jahr"`
	Version                 int      `yaml:"Version"`
	Mediatheksdatum         string   `yaml:"Mediatheksdatum"`
	Aufnahmedatum           string   `yaml:"Aufnahmedatum,omitempty"`
	Zeitraum                string   `yaml:"Zeitraum,omitempty"`
	Beschreibung            string   `yaml:"Beschreibung,omitempty"`
	Notiz                   string   `yaml:"Notiz,omitempty"`
	Schluesselwoerter       []string `yaml:"Schlüsselwörter,omitempty"`
	Album                   string   `yaml:"Album,omitempty"`
	Videoschnitt            []string `yaml:"Videoschnitt,omitempty"`
	Kamerafuehrung          []string `yaml:"Kameraführung,omitempty"`
	DauerInSekunden         int      `yaml:"Dauer_in_Sekunden,omitempty"`
	Studio                  string   `yaml:"Studio,omitempty"`
	FilmfassungName         string   `yaml:"Filmfassung_Name,omitempty"`
	FilmfassungBeschreibung string   `yaml:"Filmfassung_Beschreibung,omitempty"`
}

// NewID generates a fresh ULID for a mediaset.
func NewID() string {
	return ulid.Make().String()
}

// Validate enforces the per-record invariants: required identity fields and
// the Untertyp-specific date requirement.
func (m *Metadata) Validate() error {
	if strings.TrimSpace(m.Titel) == "" {
		return errors.New("Titel is required")
	}
	if strings.TrimSpace(m.Jahr) == "" || len(m.Jahr) != 4 {
		return fmt.Errorf("Jahr must be a 4-digit year, got %q", m.Jahr)
	}
	if m.Version < 1 {
		return fmt.Errorf("Version must be positive, got %d", m.Version)
	}
	switch m.Untertyp {
	case UntertypEreignis:
		if strings.TrimSpace(m.Aufnahmedatum) == "" {
			return errors.New("Aufnahmedatum is required for Untertyp Ereignis")
		}
	case UntertypRueckblick:
		if strings.TrimSpace(m.Zeitraum) == "" {
			return errors.New("Zeitraum is required for Untertyp Rückblick")
		}
	default:
		return fmt.Errorf("unknown Untertyp %q", m.Untertyp)
	}
	return nil
}

// Save writes the record as Metadaten.yaml into dir. The schema pointer is
// the first line; sequences are emitted as YAML block sequences.
func (m *Metadata) Save(dir string) error {
	record := *m
	record.Schema = SchemaURL
	if record.Spezifikationsversion == "" {
		record.Spezifikationsversion = SpecVersion
	}
	data, err := yaml.Marshal(&record)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	path := filepath.Join(dir, FileMetadaten)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", FileMetadaten, err)
	}
	return nil
}

// Load reads the Metadaten.yaml inside dir.
func Load(dir string) (*Metadata, error) {
	path := filepath.Join(dir, FileMetadaten)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var record Metadata
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &record, nil
}
