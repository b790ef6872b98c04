package service

import (
	"context"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"paceboard/internal/analysis"
	"paceboard/internal/config"
	"paceboard/internal/store"
)

// QueryService answers the dashboard's questions. Every view is
// recomputed from the activity list on each call; nothing derived is
// ever cached or persisted.
type QueryService struct {
	store      *store.Store
	clock      clockwork.Clock
	cfg        config.AnalyticsConfig
	classifier *analysis.Classifier
	log        *logrus.Entry
}

// New creates a QueryService over an activity store
func New(st *store.Store, clock clockwork.Clock, cfg config.AnalyticsConfig) *QueryService {
	return &QueryService{
		store:      st,
		clock:      clock,
		cfg:        cfg,
		classifier: analysis.NewClassifier(cfg.DistanceBands),
		log:        logrus.WithField("component", "service"),
	}
}

// SyncStatus tells the view where its data came from
type SyncStatus struct {
	FromCache bool
	SyncedAt  time.Time
	SyncErr   error
}

func status(res *store.FetchResult) SyncStatus {
	return SyncStatus{
		FromCache: res.FromCache,
		SyncedAt:  res.SyncedAt,
		SyncErr:   res.SyncErr,
	}
}

// CockpitView is the summary screen's data
type CockpitView struct {
	Cockpit analysis.Cockpit
	Sync    SyncStatus
}

// Cockpit builds the at-a-glance summary
func (s *QueryService) Cockpit(ctx context.Context, forceRefresh bool) (*CockpitView, error) {
	res, err := s.store.Activities(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	return &CockpitView{
		Cockpit: analysis.ComputeCockpit(s.cfg, s.classifier, res.Activities, s.clock.Now()),
		Sync:    status(res),
	}, nil
}

// VolumeView carries all training-load aggregates
type VolumeView struct {
	Weekly    []analysis.WeekBucket
	Monthly   []analysis.MonthBucket
	Yearly    []analysis.YearBucket
	Rolling90 []analysis.RollingPoint
	Sync      SyncStatus
}

// Volume builds the weekly/monthly/yearly/rolling aggregates. Years
// optionally restricts the weekly buckets.
func (s *QueryService) Volume(ctx context.Context, forceRefresh bool, years []int) (*VolumeView, error) {
	res, err := s.store.Activities(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	return &VolumeView{
		Weekly:    analysis.ComputeWeekly(res.Activities, years),
		Monthly:   analysis.ComputeMonthly(res.Activities),
		Yearly:    analysis.ComputeYearly(res.Activities),
		Rolling90: analysis.ComputeRolling(res.Activities, 90, s.clock.Now()),
		Sync:      status(res),
	}, nil
}

// PerformanceView carries records and projections
type PerformanceView struct {
	Records     map[analysis.DistanceClass][]analysis.Record
	BestByYear  map[analysis.DistanceClass][]analysis.YearBest
	Projections analysis.Projections
	Sync        SyncStatus
}

// Performance builds per-class records, yearly bests and race-time
// projections.
func (s *QueryService) Performance(ctx context.Context, forceRefresh bool) (*PerformanceView, error) {
	res, err := s.store.Activities(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}

	records := analysis.ComputeRecords(s.classifier, res.Activities)
	return &PerformanceView{
		Records:     records,
		BestByYear:  analysis.BestByYear(records),
		Projections: analysis.ComputeProjections(s.cfg, records, res.Activities, s.clock.Now()),
		Sync:        status(res),
	}, nil
}

// AnalysisView carries the physiological series
type AnalysisView struct {
	PaceStability     []analysis.PacePoint
	CardiacEfficiency []analysis.EfficiencyPoint
	LoadVsPerformance []analysis.LoadPoint
	Sync              SyncStatus
}

// Analysis builds the pace-stability, cardiac-efficiency and
// load-vs-performance series.
func (s *QueryService) Analysis(ctx context.Context, forceRefresh bool) (*AnalysisView, error) {
	res, err := s.store.Activities(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	return &AnalysisView{
		PaceStability:     analysis.ComputePaceStability(res.Activities),
		CardiacEfficiency: analysis.ComputeCardiacEfficiency(res.Activities),
		LoadVsPerformance: analysis.ComputeLoadVsPerformance(s.classifier, res.Activities),
		Sync:              status(res),
	}, nil
}

// Years lists the calendar years covered by the activity history,
// ascending. Used to populate year filters.
func (s *QueryService) Years(ctx context.Context) ([]int, error) {
	res, err := s.store.Activities(ctx, false)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var years []int
	for _, a := range res.Activities {
		y := a.StartDateLocal.Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years, nil
}
