package usecase

import (
	"math"
	"time"

	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/domain/types"
)

// PillarStat is the readiness of one pillar
type PillarStat struct {
	Pillar types.Pillar `json:"pillar"`
	Label  string       `json:"label"`
	Ready  int          `json:"ready"`
	Total  int          `json:"total"`
}

// Summary is the derived overview of the content calendar
type Summary struct {
	Total   int          `json:"total"`
	Ready   int          `json:"ready"`
	Pct     int          `json:"pct"`
	Pillars []PillarStat `json:"pillars"`
	// ThisWeek lists unready items scheduled from today through the coming
	// Sunday, truncated to the summary limit
	ThisWeek      []*model.ContentItem `json:"this_week"`
	ThisWeekTotal int                  `json:"this_week_total"`
	From          types.Date           `json:"from"`
	Through       types.Date           `json:"through"`
}

// ComputeSummary projects the snapshot. items are expected in calendar order.
// The week window ends on the Sunday after today; on a Sunday that is the
// Sunday a week later.
func ComputeSummary(items []*model.ContentItem, today types.Date, pillars []types.Pillar, limit int) *Summary {
	through := today.AddDays(7 - int(today.Time().Weekday()))
	s := &Summary{
		Total:    len(items),
		Pillars:  make([]PillarStat, len(pillars)),
		ThisWeek: []*model.ContentItem{},
		From:     today,
		Through:  through,
	}

	index := make(map[types.Pillar]int, len(pillars))
	for i, p := range pillars {
		index[p] = i
		s.Pillars[i] = PillarStat{Pillar: p, Label: p.Label()}
	}

	for _, item := range items {
		if item.IsReady {
			s.Ready++
		}
		if i, ok := index[item.Pillar]; ok {
			s.Pillars[i].Total++
			if item.IsReady {
				s.Pillars[i].Ready++
			}
		}

		if item.IsReady || item.ScheduledDate.IsZero() {
			continue
		}
		if item.ScheduledDate.Before(today) || through.Before(item.ScheduledDate) {
			continue
		}
		s.ThisWeekTotal++
		if limit <= 0 || len(s.ThisWeek) < limit {
			s.ThisWeek = append(s.ThisWeek, item)
		}
	}

	if s.Total > 0 {
		s.Pct = int(math.Round(float64(s.Ready) / float64(s.Total) * 100))
	}
	return s
}

// dateOf returns the calendar date of now in its own location
func dateOf(now time.Time) types.Date {
	return types.NewDate(now)
}
