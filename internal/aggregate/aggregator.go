package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/methodstatus/internal/attribute"
	"github.com/nao1215/methodstatus/internal/model"
	"github.com/nao1215/methodstatus/internal/scope"
	"github.com/nao1215/methodstatus/internal/walker"
)

// Aggregator produces StatusReports for one RunConfig.
type Aggregator struct {
	cfg    RunConfig
	attrs  attribute.Accessor
	walk   *walker.Walker
	filter *scope.Filter
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used for per-solution debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithClock sets the function stamping GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// New creates an Aggregator after validating cfg.
func New(cfg RunConfig, opts ...Option) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	attrs := attribute.NewAccessor(cfg.Language)
	a := &Aggregator{
		cfg:   cfg,
		attrs: attrs,
		walk:  walker.New(attrs),
		filter: scope.NewFilter(attrs, scope.Kinds{
			Release:        cfg.Kinds.Release,
			Classification: cfg.Kinds.Classification,
		}),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a, nil
}

// Run builds the report for the solutions selected in repo.
//
// Solutions are sorted once by identifier, then name, in the run language.
// The Status pass and the Maturity pass both follow that order.
func (a *Aggregator) Run(ctx context.Context, repo model.Repository) (*model.StatusReport, error) {
	selected, err := repo.Selected(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: selected solutions: %w", ErrCollaborator, err)
	}

	solutions := a.walk.Sort(selected, a.cfg.Kinds.Identifier, a.cfg.Kinds.Name)

	a.logger.Info("building status report",
		"release", a.cfg.Release,
		"language", a.cfg.Language.String(),
		"solutions", len(solutions),
	)

	report := &model.StatusReport{
		Release:  a.cfg.Release,
		Language: a.cfg.Language.String(),
		Status:   make([]model.StatusRow, 0, len(solutions)),
		Maturity: make([]model.MaturityRow, 0, len(solutions)),
	}

	for _, s := range solutions {
		row, err := a.StatusRow(s)
		if err != nil {
			return nil, err
		}
		report.Status = append(report.Status, row)
	}

	for _, s := range solutions {
		report.Maturity = append(report.Maturity, a.MaturityRow(s))
	}

	report.GeneratedAt = a.now()
	return report, nil
}

// Identifier resolves the row identifier of a solution: its identifier
// attribute, else its name attribute, else its element ID.
func (a *Aggregator) Identifier(solution model.Element) string {
	var id string
	if solution != nil {
		id = solution.ID()
	}
	return model.Identifier(
		a.attrs.Get(solution, a.cfg.Kinds.Identifier),
		a.attrs.Get(solution, a.cfg.Kinds.Name),
		id,
	)
}

// InScope reports whether the solution belongs to the release in scope.
func (a *Aggregator) InScope(solution model.Element) bool {
	return a.attrs.Equals(solution, a.cfg.Kinds.Release, a.cfg.Release)
}

// StatusRow computes the Status row of one solution.
// Solutions outside the release keep zero counts.
func (a *Aggregator) StatusRow(solution model.Element) (model.StatusRow, error) {
	row := model.StatusRow{
		Identifier: a.Identifier(solution),
		Status:     a.attrs.Get(solution, a.cfg.Kinds.Status),
		Release:    a.attrs.Get(solution, a.cfg.Kinds.Release),
		InScope:    a.InScope(solution),
	}

	if !row.InScope {
		a.logger.Debug("solution outside release scope",
			"solution", row.Identifier,
			"release", row.Release,
		)
		return row, nil
	}

	workPackages, err := a.WorkPackages(solution)
	if err != nil {
		return model.StatusRow{}, fmt.Errorf("%w: solution %s: %w", ErrCollaborator, row.Identifier, err)
	}
	row.WorkPackages = len(workPackages)
	row.WorkPackagesReleased = a.filter.CountEqual(workPackages, a.cfg.Kinds.ReleasedStatus, model.Released)

	assets, err := a.Assets(workPackages)
	if err != nil {
		return model.StatusRow{}, fmt.Errorf("%w: solution %s: %w", ErrCollaborator, row.Identifier, err)
	}
	row.Assets = len(assets)
	row.AssetsReleased = a.filter.CountEqual(assets, a.cfg.Kinds.ReleasedStatus, model.Released)

	a.logger.Debug("solution aggregated",
		"solution", row.Identifier,
		"workPackages", row.WorkPackages,
		"workPackagesReleased", row.WorkPackagesReleased,
		"assets", row.Assets,
		"assetsReleased", row.AssetsReleased,
	)

	return row, nil
}

// MaturityRow computes the Maturity row of one solution. It ignores the release.
func (a *Aggregator) MaturityRow(solution model.Element) model.MaturityRow {
	return model.MaturityRow{
		Identifier: a.Identifier(solution),
		Maturity:   a.attrs.Get(solution, a.cfg.Kinds.Maturity),
		SixtyDays:  a.attrs.Get(solution, a.cfg.Kinds.SixtyDays),
	}
}

// WorkPackages returns the distinct in-release work packages listed on the
// value-added chain diagrams assigned to solution.
func (a *Aggregator) WorkPackages(solution model.Element) ([]model.Element, error) {
	diagrams, err := a.walk.AssignedModels(solution, model.ModelValueAddedChain)
	if err != nil {
		return nil, err
	}

	var all []model.Element
	for _, d := range diagrams {
		wps, err := a.walk.ObjectsOfType(d, model.TypeFunction, a.cfg.Kinds.Classification, WorkPackageLabel)
		if err != nil {
			return nil, err
		}
		all = append(all, wps...)
	}

	return a.filter.InRelease(scope.Dedupe(all), a.cfg.Release), nil
}

// Assets returns the distinct in-release assets that provide input for the
// functions of the EPCs assigned to workPackages.
func (a *Aggregator) Assets(workPackages []model.Element) ([]model.Element, error) {
	var epcs []model.Element
	for _, wp := range workPackages {
		models, err := a.walk.AssignedModels(wp, model.ModelEPC)
		if err != nil {
			return nil, err
		}
		epcs = append(epcs, models...)
	}
	epcs = scope.Dedupe(epcs)

	var assets []model.Element
	for _, epc := range epcs {
		functions, err := a.walk.ObjectsOfType(epc, model.TypeFunction, "", "")
		if err != nil {
			return nil, err
		}
		for _, fn := range functions {
			carriers, err := a.walk.Neighbors(fn, model.Incoming, model.RelationProvidesInputFor, model.TypeInformationCarrier)
			if err != nil {
				return nil, err
			}
			assets = append(assets, a.filter.Assets(carriers, a.cfg.Release)...)
		}
	}

	return scope.Dedupe(assets), nil
}
