// Package etservice turns stored station readings into evapotranspiration
// runs for the configured sites.
package etservice

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/chrissnell/evapo/internal/daily"
	"github.com/chrissnell/evapo/internal/database"
	"github.com/chrissnell/evapo/internal/metrics"
	"github.com/chrissnell/evapo/internal/storage"
	"github.com/chrissnell/evapo/pkg/config"
	"github.com/chrissnell/evapo/pkg/et"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrUnknownSite is returned for a site name missing from the configuration
	ErrUnknownSite = errors.New("unknown site")
	// ErrNoData is returned when no day in the range has enough readings
	ErrNoData = errors.New("no complete days of readings")
	// ErrNoSource is returned when site computations are requested without a
	// readings database
	ErrNoSource = errors.New("no readings database configured")
	// ErrNoStore is returned when stored results are requested without a
	// result store
	ErrNoStore = errors.New("no result store configured")
)

// Service evaluates methods for configured sites and records the results
type Service struct {
	config  *config.ConfigData
	source  database.ReadingSource
	store   storage.ResultStore
	metrics *metrics.Metrics
	logger  *zap.SugaredLogger

	// Daily sets the bucketing of readings into days. WindHeight is taken
	// from each site.
	Daily daily.Options

	now func() time.Time
}

// New creates a service over the sites in cfg. source and store may be nil,
// in which case only direct evaluation is available.
func New(cfg *config.ConfigData, source database.ReadingSource, store storage.ResultStore, m *metrics.Metrics, logger *zap.SugaredLogger) *Service {
	return &Service{
		config:  cfg,
		source:  source,
		store:   store,
		metrics: m,
		logger:  logger,
		Daily:   daily.DefaultOptions(),
		now:     time.Now,
	}
}

// Sites returns the configured sites in configuration order
func (s *Service) Sites() []config.SiteData {
	return append([]config.SiteData(nil), s.config.Sites...)
}

// Site returns the named site
func (s *Service) Site(name string) (config.SiteData, error) {
	site, ok := s.config.GetSite(name)
	if !ok {
		return config.SiteData{}, fmt.Errorf("%w: %s", ErrUnknownSite, name)
	}
	return *site, nil
}

// Evaluate runs one method and records its duration and outcome
func (s *Service) Evaluate(method et.Method, m *et.Meteo, site et.Site, p et.Params) (et.Series, error) {
	start := time.Now()
	out, err := et.Compute(method, m, site, p)
	s.metrics.ObserveComputation(method.String(), m.Len(), time.Since(start), err)
	if err != nil {
		s.logger.Debugw("evaluation failed", "method", method.String(), "days", m.Len(), "error", err)
	}
	return out, err
}

// Compute evaluates method for a site over the days in [from, to) using the
// site's station readings. A zero method selects the site's default. The run
// is saved when a result store is configured.
func (s *Service) Compute(ctx context.Context, siteName string, method et.Method, from, to time.Time) (storage.Run, error) {
	site, err := s.Site(siteName)
	if err != nil {
		return storage.Run{}, err
	}
	if s.source == nil {
		return storage.Run{}, ErrNoSource
	}

	etSite, params, defaultMethod, err := SiteParams(site)
	if err != nil {
		return storage.Run{}, err
	}
	if method == 0 {
		method = defaultMethod
	}

	readings, err := s.source.Readings(ctx, site.StationName, from, to)
	if err != nil {
		return storage.Run{}, err
	}

	opts := s.Daily
	opts.WindHeight = site.WindHeight
	set := daily.Set(daily.Summarize(readings, opts))
	if len(set) == 0 {
		return storage.Run{}, fmt.Errorf("%w for %s between %s and %s", ErrNoData, siteName, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	m := MeteoFor(method, set, site)
	series, err := s.Evaluate(method, m, etSite, params)
	if err != nil {
		return storage.Run{}, fmt.Errorf("%s for %s: %w", method, siteName, err)
	}

	run := storage.Run{
		ID:        uuid.New(),
		Site:      siteName,
		Method:    method.String(),
		CreatedAt: s.now().UTC(),
		Days:      m.Time,
		ET:        series,
	}

	if s.store != nil {
		if err := s.store.Save(ctx, run); err != nil {
			return storage.Run{}, err
		}
	}

	s.logger.Infow("computed evapotranspiration", "site", siteName, "method", run.Method, "days", len(run.Days), "run", run.ID)
	return run, nil
}

// Results returns stored results of a site
func (s *Service) Results(ctx context.Context, siteName string, from, to time.Time) ([]storage.Record, error) {
	if _, err := s.Site(siteName); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.Site(ctx, siteName, from, to)
}

// Run returns a stored run
func (s *Service) Run(ctx context.Context, id uuid.UUID) (storage.Run, error) {
	if s.store == nil {
		return storage.Run{}, ErrNoStore
	}
	return s.store.Load(ctx, id)
}

// MeteoFor lays a set of daily observations out for method. FAO-1990 takes
// mean humidity, and the LAI canopy model gets the site's leaf area index.
func MeteoFor(method et.Method, set daily.Set, site config.SiteData) *et.Meteo {
	m := set.Meteo()
	if method == et.MethodFAO1990 {
		m.Humidity = set.MeanHumidity()
	}

	lai := site.Coefficients.LAI
	if lai == 0 && site.Coefficients.CropHeight > 0 {
		lai = et.LAIFromCropHeight(site.Coefficients.CropHeight)
	}
	if lai > 0 {
		m.LAI = et.Fill(m.Len(), lai)
	}
	return m
}

// SiteParams converts a configured site to the location, coefficients and
// default method the equations take
func SiteParams(site config.SiteData) (et.Site, et.Params, et.Method, error) {
	c := site.Coefficients

	method, err := et.ParseMethod(site.Method)
	if err != nil {
		return et.Site{}, et.Params{}, 0, fmt.Errorf("site %s: %w", site.Name, err)
	}
	canopy, err := et.ParseCanopyModel(c.Canopy)
	if err != nil {
		return et.Site{}, et.Params{}, 0, fmt.Errorf("site %s: %w", site.Name, err)
	}
	aero, err := et.ParseAerodynamicModel(c.Aerodynamic)
	if err != nil {
		return et.Site{}, et.Params{}, 0, fmt.Errorf("site %s: %w", site.Name, err)
	}
	fidelity, err := et.ParseFidelity(c.Fidelity)
	if err != nil {
		return et.Site{}, et.Params{}, 0, fmt.Errorf("site %s: %w", site.Name, err)
	}

	etSite := et.Site{
		Elevation: site.Elevation,
		Latitude:  site.Latitude * math.Pi / 180,
	}
	params := et.Params{
		Penman:          et.PenmanParams{A: c.PenmanA, B: c.PenmanB},
		PM1965:          et.PM1965Params{Canopy: canopy, Aerodynamic: aero, CropHeight: c.CropHeight},
		FAO1990:         et.FAO1990Params{CropHeight: c.CropHeight, Fidelity: fidelity},
		PriestleyTaylor: et.PriestleyTaylorParams{Alpha: c.Alpha},
		Makkink:         et.MakkinkParams{F: c.MakkinkF},
	}
	return etSite, params, method, nil
}

// Start computes the previous day for every site once per interval and hands
// the runs to the storage engine. The first pass runs immediately.
func (s *Service) Start(ctx context.Context, wg *sync.WaitGroup, interval time.Duration, runs chan<- storage.Run) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			s.computeYesterday(ctx, runs)
			select {
			case <-ticker.C:
			case <-ctx.Done():
				s.logger.Info("cancellation request received.  Stopping scheduled computations.")
				return
			}
		}
	}()
}

func (s *Service) computeYesterday(ctx context.Context, runs chan<- storage.Run) {
	loc := s.Daily.Location
	if loc == nil {
		loc = time.UTC
	}
	now := s.now().In(loc)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	from := to.AddDate(0, 0, -1)

	// The scheduled pass hands runs to the storage engine instead of saving inline
	detached := *s
	detached.store = nil

	for _, site := range s.Sites() {
		run, err := detached.Compute(ctx, site.Name, 0, from, to)
		if err != nil {
			s.logger.Warnf("scheduled computation for %s failed: %v", site.Name, err)
			continue
		}
		select {
		case runs <- run:
		case <-ctx.Done():
			return
		}
	}
}
