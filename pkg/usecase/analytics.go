package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// AnalyticsUseCase assembles the analytics dashboard from precomputed views
type AnalyticsUseCase struct {
	repo interfaces.Repository
	now  func() time.Time

	mu     sync.RWMutex
	latest *model.Dashboard
}

// NewAnalyticsUseCase creates the dashboard use case
func NewAnalyticsUseCase(repo interfaces.Repository, now func() time.Time) *AnalyticsUseCase {
	if now == nil {
		now = time.Now
	}
	return &AnalyticsUseCase{repo: repo, now: now}
}

// Dashboard returns the latest snapshot, loading it on first use
func (uc *AnalyticsUseCase) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	uc.mu.RLock()
	latest := uc.latest
	uc.mu.RUnlock()
	if latest != nil {
		return latest, nil
	}
	return uc.Refresh(ctx)
}

// Refresh loads every view concurrently. A view that fails to load or decode
// keeps the section from the previous snapshot, or stays empty on the first
// refresh; the failure is only logged.
func (uc *AnalyticsUseCase) Refresh(ctx context.Context) (*model.Dashboard, error) {
	d := &model.Dashboard{
		DailySignups:   []model.DailySignup{},
		DailyPhotos:    []model.DailyPhoto{},
		PageViews:      []model.PageView{},
		Sessions:       []model.SessionDuration{},
		HourlyActivity: []model.HourlyActivity{},
		Effects:        []model.EffectUsage{},
		TopRaces:       []model.TopRace{},
	}
	uc.mu.RLock()
	if uc.latest != nil {
		// Sections are replaced wholesale, so a shallow copy is enough.
		*d = *uc.latest
	}
	uc.mu.RUnlock()

	var summary model.AnalyticsSummary
	var funnel model.Funnel
	var cloudinary model.CloudinaryUsage

	targets := map[string]func([]byte) error{
		model.ViewSummary:        func(b []byte) error { return decodeOne(b, &summary, &d.Summary) },
		model.ViewDailySignups:   func(b []byte) error { return decodeAll(b, &d.DailySignups) },
		model.ViewDailyPhotos:    func(b []byte) error { return decodeAll(b, &d.DailyPhotos) },
		model.ViewPageViews:      func(b []byte) error { return decodeAll(b, &d.PageViews) },
		model.ViewSessions:       func(b []byte) error { return decodeAll(b, &d.Sessions) },
		model.ViewFunnel:         func(b []byte) error { return decodeOne(b, &funnel, &d.Funnel) },
		model.ViewHourlyActivity: func(b []byte) error { return decodeAll(b, &d.HourlyActivity) },
		model.ViewEffects:        func(b []byte) error { return decodeAll(b, &d.Effects) },
		model.ViewTopRaces:       func(b []byte) error { return decodeAll(b, &d.TopRaces) },
		model.ViewCloudinary:     func(b []byte) error { return decodeOne(b, &cloudinary, &d.Cloudinary) },
	}

	logger := logging.From(ctx)
	var eg errgroup.Group
	for _, name := range model.AllAnalyticsViews() {
		decode := targets[name]
		eg.Go(func() error {
			rows, err := uc.repo.Analytics().LoadView(ctx, name)
			if err != nil {
				logger.Debug("analytics view unavailable", "view", name, "error", err)
				return nil
			}
			if err := decode(rows); err != nil {
				logger.Debug("analytics view is malformed", "view", name, "error", err)
			}
			return nil
		})
	}
	// Each view writes to its own section, so the goroutines never share state.
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to load analytics")
	}
	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(err, "analytics refresh canceled")
	}

	d.AvgSessionMinutes = model.AverageSessionMinutes(d.Sessions)
	d.Credits = nil
	if d.Cloudinary != nil {
		credits := model.NewCredits(d.Cloudinary.CreditsUsed, d.Cloudinary.CreditsLimit)
		d.Credits = &credits
	}
	d.FetchedAt = uc.now().UTC()

	uc.mu.Lock()
	uc.latest = d
	uc.mu.Unlock()
	return d, nil
}

// decodeAll decodes a multi-row view. *dst is only replaced on success.
func decodeAll[T any](b []byte, dst *[]T) error {
	rows := []T{}
	if err := json.Unmarshal(b, &rows); err != nil {
		return err
	}
	if rows == nil {
		rows = []T{}
	}
	*dst = rows
	return nil
}

// decodeOne decodes a single-row view given either as an object or as an
// array of rows. On success *dst points at row, or is nil for an empty array.
func decodeOne[T any](b []byte, row *T, dst **T) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var rows []T
		if err := json.Unmarshal(b, &rows); err != nil {
			return err
		}
		if len(rows) == 0 {
			*dst = nil
			return nil
		}
		*row = rows[0]
	} else if err := json.Unmarshal(b, row); err != nil {
		return err
	}
	*dst = row
	return nil
}
