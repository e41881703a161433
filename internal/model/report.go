package model

import (
	"strconv"
	"time"
)

// Released is the status value meaning an element's deliverable has shipped.
// Comparison is exact and case-sensitive.
const Released = "released"

// StatusRow is one solution's line in the Status table.
type StatusRow struct {
	// Identifier is never empty for an element with an ID; see Identifier.
	Identifier string `json:"identifier"`

	// WorkPackages is the number of distinct in-release work packages.
	WorkPackages int `json:"work_packages"`

	// WorkPackagesReleased counts the work packages whose status is Released.
	WorkPackagesReleased int `json:"work_packages_released"`

	// Assets is the number of distinct in-release assets feeding the work packages.
	Assets int `json:"assets"`

	// AssetsReleased counts the assets whose status is Released.
	AssetsReleased int `json:"assets_released"`

	// Status is the solution's own status attribute, "" when absent.
	Status string `json:"status"`

	// Release is the solution's release attribute, "" when absent.
	Release string `json:"release"`

	// InScope reports whether the solution belongs to the current release.
	// Out-of-scope rows always carry zero counts.
	InScope bool `json:"in_scope"`
}

// MaturityRow is one solution's line in the Maturity table.
type MaturityRow struct {
	Identifier string `json:"identifier"`
	Maturity   string `json:"maturity"`
	SixtyDays  string `json:"sixty_days"`
}

// StatusReport is the outcome of one report run.
type StatusReport struct {
	// Release is the release tag the run was scoped to.
	Release string `json:"release"`

	// Language is the BCP 47 tag attributes were read in.
	Language string `json:"language"`

	// Source names the repository snapshot the report was built from.
	Source string `json:"source,omitempty"`

	// Digest fingerprints the snapshot content, empty if unknown.
	Digest string `json:"digest,omitempty"`

	// GeneratedAt is when the run finished.
	GeneratedAt time.Time `json:"generated_at"`

	// Status holds one row per solution, in the run's sort order.
	Status []StatusRow `json:"status"`

	// Maturity holds one row per solution, in the same order as Status.
	Maturity []MaturityRow `json:"maturity"`
}

// Summary totals the Status table.
type Summary struct {
	Solutions            int `json:"solutions"`
	InScope              int `json:"in_scope"`
	WorkPackages         int `json:"work_packages"`
	WorkPackagesReleased int `json:"work_packages_released"`
	Assets               int `json:"assets"`
	AssetsReleased       int `json:"assets_released"`
}

// Summary returns the column totals of the Status table.
func (r *StatusReport) Summary() Summary {
	s := Summary{Solutions: len(r.Status)}
	for _, row := range r.Status {
		if row.InScope {
			s.InScope++
		}
		s.WorkPackages += row.WorkPackages
		s.WorkPackagesReleased += row.WorkPackagesReleased
		s.Assets += row.Assets
		s.AssetsReleased += row.AssetsReleased
	}
	return s
}

// Identifier returns the first non-empty candidate.
// The aggregator passes, in order, the designated identifier attribute,
// the display name attribute and the element ID.
func Identifier(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// Table is a rendered output table: a header row plus string cells.
type Table struct {
	Title  string     `json:"title"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Labels are the header cells of both tables.
type Labels struct {
	Identifier           string `json:"identifier" yaml:"identifier"`
	WorkPackages         string `json:"workPackages" yaml:"workPackages"`
	WorkPackagesReleased string `json:"workPackagesReleased" yaml:"workPackagesReleased"`
	Assets               string `json:"assets" yaml:"assets"`
	AssetsReleased       string `json:"assetsReleased" yaml:"assetsReleased"`
	Status               string `json:"status" yaml:"status"`
	Release              string `json:"release" yaml:"release"`
	Maturity             string `json:"maturity" yaml:"maturity"`
	SixtyDays            string `json:"sixtyDays" yaml:"sixtyDays"`
}

// DefaultLabels returns the English header labels.
func DefaultLabels() Labels {
	return Labels{
		Identifier:           "Identifier",
		WorkPackages:         "Work packages",
		WorkPackagesReleased: "Work packages released",
		Assets:               "Assets",
		AssetsReleased:       "Assets released",
		Status:               "Status",
		Release:              "Release",
		Maturity:             "Maturity",
		SixtyDays:            "60 days",
	}
}

// Merge returns l with every empty label taken from fallback.
func (l Labels) Merge(fallback Labels) Labels {
	pick := func(v, d string) string {
		if v != "" {
			return v
		}
		return d
	}
	return Labels{
		Identifier:           pick(l.Identifier, fallback.Identifier),
		WorkPackages:         pick(l.WorkPackages, fallback.WorkPackages),
		WorkPackagesReleased: pick(l.WorkPackagesReleased, fallback.WorkPackagesReleased),
		Assets:               pick(l.Assets, fallback.Assets),
		AssetsReleased:       pick(l.AssetsReleased, fallback.AssetsReleased),
		Status:               pick(l.Status, fallback.Status),
		Release:              pick(l.Release, fallback.Release),
		Maturity:             pick(l.Maturity, fallback.Maturity),
		SixtyDays:            pick(l.SixtyDays, fallback.SixtyDays),
	}
}

// Table titles.
const (
	StatusTableTitle   = "Status"
	MaturityTableTitle = "Maturity"
)

// StatusTable renders the Status rows as string cells.
func (r *StatusReport) StatusTable(l Labels) Table {
	t := Table{
		Title: StatusTableTitle,
		Header: []string{
			l.Identifier, l.WorkPackages, l.WorkPackagesReleased,
			l.Assets, l.AssetsReleased, l.Status, l.Release,
		},
		Rows: make([][]string, 0, len(r.Status)),
	}
	for _, row := range r.Status {
		t.Rows = append(t.Rows, []string{
			row.Identifier,
			strconv.Itoa(row.WorkPackages),
			strconv.Itoa(row.WorkPackagesReleased),
			strconv.Itoa(row.Assets),
			strconv.Itoa(row.AssetsReleased),
			row.Status,
			row.Release,
		})
	}
	return t
}

// MaturityTable renders the Maturity rows as string cells.
func (r *StatusReport) MaturityTable(l Labels) Table {
	t := Table{
		Title:  MaturityTableTitle,
		Header: []string{l.Identifier, l.Maturity, l.SixtyDays},
		Rows:   make([][]string, 0, len(r.Maturity)),
	}
	for _, row := range r.Maturity {
		t.Rows = append(t.Rows, []string{row.Identifier, row.Maturity, row.SixtyDays})
	}
	return t
}

// Tables returns the Status table followed by the Maturity table.
func (r *StatusReport) Tables(l Labels) []Table {
	return []Table{r.StatusTable(l), r.MaturityTable(l)}
}
