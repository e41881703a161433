package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/nao1215/methodstatus/internal/aggregate"
	"github.com/nao1215/methodstatus/internal/model"
	"golang.org/x/text/language"
)

// Default configuration values.
// The release tag and the user-defined attribute keys are the ones used by
// the Prime method repository the report was first written for.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "methodstatus"

	// DefaultRelease is the release tag in scope when none is configured.
	DefaultRelease = "Prime 1.2 Release (2013-12-31)"

	// DefaultLanguage is the attribute language and sort collation.
	DefaultLanguage = "en"

	// DefaultBatchSize is the number of snapshots reported on concurrently.
	DefaultBatchSize = 4
)

// Default attribute type keys.
const (
	DefaultIdentifierKind     = string(model.AttributeIdentifier)
	DefaultNameKind           = string(model.AttributeName)
	DefaultStatusKind         = "3f34c100-0af6-11e1-2da4-005056a93b02"
	DefaultReleasedStatusKind = "caef0800-1aae-11e1-2da4-005056a93b02"
	DefaultReleaseKind        = "5a1245d0-6e0e-11e1-68fc-782bcb92adba"
	DefaultClassificationKind = "47e24710-1a90-11e1-2da4-005056a93b02"
	DefaultMaturityKind       = "e4b79f90-0af5-11e1-2da4-005056a93b02"
	DefaultSixtyDaysKind      = "fa0dcfe0-0af5-11e1-2da4-005056a93b02"
)

// Attributes names the host attribute types the report reads.
type Attributes struct {
	// Identifier is the designated solution identifier.
	Identifier string `yaml:"identifier,omitempty"`

	// Name is the display name, used as identifier fallback and tie-breaker.
	Name string `yaml:"name,omitempty"`

	// Status is the solution's own status.
	Status string `yaml:"status,omitempty"`

	// ReleasedStatus holds "released" on finished work packages and assets.
	ReleasedStatus string `yaml:"releasedStatus,omitempty"`

	// Release holds the release tag of solutions, work packages and assets.
	Release string `yaml:"release,omitempty"`

	// Classification marks work packages and assets.
	Classification string `yaml:"classification,omitempty"`

	// Maturity and SixtyDays feed the Maturity table.
	Maturity  string `yaml:"maturity,omitempty"`
	SixtyDays string `yaml:"sixtyDays,omitempty"`
}

// DefaultAttributes returns the default attribute type keys.
func DefaultAttributes() Attributes {
	return Attributes{
		Identifier:     DefaultIdentifierKind,
		Name:           DefaultNameKind,
		Status:         DefaultStatusKind,
		ReleasedStatus: DefaultReleasedStatusKind,
		Release:        DefaultReleaseKind,
		Classification: DefaultClassificationKind,
		Maturity:       DefaultMaturityKind,
		SixtyDays:      DefaultSixtyDaysKind,
	}
}

// Config holds all configuration options for methodstatus.
// It is populated from the config file and CLI flags and passed through
// the application rather than kept in global state.
type Config struct {
	// Release is the release tag in scope. Compared exactly.
	Release string

	// Language is the BCP 47 tag attributes are read in.
	Language string

	// Attributes names the host attribute types.
	Attributes Attributes

	// Labels overrides table header cells. Empty labels use the defaults.
	Labels model.Labels

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// BatchSize is the number of snapshots processed concurrently.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, .methodstatus is searched in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// JSONReport, MarkdownReport and HTMLReport select the output format.
	// At most one may be set; the default is the plain text report.
	JSONReport     bool
	MarkdownReport bool
	HTMLReport     bool

	// ReportFile is the output file path. Empty means stdout.
	ReportFile string

	// Sources lists the model snapshot files to report on.
	Sources []string

	// DBDir is the directory of the history database.
	DBDir string

	// SaveToDB records every report in the history database.
	SaveToDB bool

	// SkipUnchanged does not record a report when history already holds one
	// for the same release built from identical snapshot content.
	SkipUnchanged bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Release:    DefaultRelease,
		Language:   DefaultLanguage,
		Attributes: DefaultAttributes(),
		BatchSize:  DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for methodstatus.
// On Linux: ~/.local/share/methodstatus
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for methodstatus.
// On Linux: ~/.config/methodstatus
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Apply copies every value set in f over c.
// A nil file leaves c unchanged.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.Release != "" {
		c.Release = f.Release
	}
	if f.Language != "" {
		c.Language = f.Language
	}
	c.Attributes = f.Attributes.merge(c.Attributes)
	c.Labels = f.Labels.Merge(c.Labels)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSource
	}

	if c.Release == "" {
		return ErrNoRelease
	}

	if _, err := language.Parse(c.Language); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, c.Language)
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	formats := 0
	for _, set := range []bool{c.JSONReport, c.MarkdownReport, c.HTMLReport} {
		if set {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	if name := c.Attributes.missing(); name != "" {
		return fmt.Errorf("%w: %s", ErrMissingAttribute, name)
	}

	return nil
}

// LanguageTag parses Language.
func (c *Config) LanguageTag() (language.Tag, error) {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.Und, fmt.Errorf("%w: %q", ErrInvalidLanguage, c.Language)
	}
	return tag, nil
}

// RunConfig converts c into the aggregator's run configuration.
func (c *Config) RunConfig() (aggregate.RunConfig, error) {
	tag, err := c.LanguageTag()
	if err != nil {
		return aggregate.RunConfig{}, err
	}
	a := c.Attributes
	return aggregate.RunConfig{
		Release:  c.Release,
		Language: tag,
		Kinds: aggregate.Kinds{
			Identifier:     model.AttributeKind(a.Identifier),
			Name:           model.AttributeKind(a.Name),
			Status:         model.AttributeKind(a.Status),
			ReleasedStatus: model.AttributeKind(a.ReleasedStatus),
			Release:        model.AttributeKind(a.Release),
			Classification: model.AttributeKind(a.Classification),
			Maturity:       model.AttributeKind(a.Maturity),
			SixtyDays:      model.AttributeKind(a.SixtyDays),
		},
	}, nil
}

// ReportLabels returns the configured labels with defaults filled in.
func (c *Config) ReportLabels() model.Labels {
	return c.Labels.Merge(model.DefaultLabels())
}

// merge returns a with every empty key taken from fallback.
func (a Attributes) merge(fallback Attributes) Attributes {
	pick := func(v, d string) string {
		if v != "" {
			return v
		}
		return d
	}
	return Attributes{
		Identifier:     pick(a.Identifier, fallback.Identifier),
		Name:           pick(a.Name, fallback.Name),
		Status:         pick(a.Status, fallback.Status),
		ReleasedStatus: pick(a.ReleasedStatus, fallback.ReleasedStatus),
		Release:        pick(a.Release, fallback.Release),
		Classification: pick(a.Classification, fallback.Classification),
		Maturity:       pick(a.Maturity, fallback.Maturity),
		SixtyDays:      pick(a.SixtyDays, fallback.SixtyDays),
	}
}

// missing returns the YAML name of the first empty key.
func (a Attributes) missing() string {
	keys := []struct {
		name  string
		value string
	}{
		{"identifier", a.Identifier},
		{"name", a.Name},
		{"status", a.Status},
		{"releasedStatus", a.ReleasedStatus},
		{"release", a.Release},
		{"classification", a.Classification},
		{"maturity", a.Maturity},
		{"sixtyDays", a.SixtyDays},
	}
	for _, k := range keys {
		if k.value == "" {
			return k.name
		}
	}
	return ""
}
