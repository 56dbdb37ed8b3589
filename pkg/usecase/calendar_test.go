package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/domain/model/config"
	"github.com/secmon-lab/tablero/pkg/domain/types"
	"github.com/secmon-lab/tablero/pkg/usecase"
)

func setupCalendar(t *testing.T) (*usecase.CalendarUseCase, *flakyRepo, *clock, *recorder) {
	t.Helper()
	repo := newFlakyRepo()
	clk := newClock(baseTime)
	rec := &recorder{}
	return usecase.NewCalendarUseCase(repo, config.Default().Calendar, rec, clk.Now), repo, clk, rec
}

func seedItem(t *testing.T, repo *flakyRepo, date types.Date, flags ...bool) *model.ContentItem {
	t.Helper()
	item := &model.ContentItem{
		Title:         "Berlin split times",
		Pillar:        types.PillarElDato,
		ScheduledDate: date,
		Effort:        types.EffortMedium,
		CreatedAt:     baseTime.Add(-48 * time.Hour),
		UpdatedAt:     baseTime.Add(-24 * time.Hour),
	}
	item.SetProgress(flags)
	created, err := repo.Memory.ContentItem().Create(context.Background(), item)
	gt.NoError(t, err).Required()
	return created
}

func TestCalendarToggleStep(t *testing.T) {
	ctx := context.Background()

	t.Run("checking has_script on an idea-only item", func(t *testing.T) {
		uc, repo, clk, _ := setupCalendar(t)
		item := seedItem(t, repo, "2026-10-20", true)

		clk.Advance(time.Minute)
		result, err := uc.ToggleStep(ctx, item.ID, types.ProgressStepScript, true)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Outcome).Equal(usecase.OutcomeConfirmed)
		gt.Value(t, result.Record.Progress()).Equal([]bool{true, true, false, false, false})
		gt.Bool(t, result.Record.UpdatedAt.Equal(clk.Now())).True()

		stored, err := repo.Memory.ContentItem().Get(ctx, item.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Progress()).Equal([]bool{true, true, false, false, false})
	})

	t.Run("checking a late step checks all earlier ones", func(t *testing.T) {
		uc, repo, _, _ := setupCalendar(t)
		item := seedItem(t, repo, "2026-10-20")

		result, err := uc.ToggleStep(ctx, item.ID, types.ProgressStepEdit, true)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Record.Progress()).Equal([]bool{true, true, true, true, false})
	})

	t.Run("unchecking clears all later steps", func(t *testing.T) {
		uc, repo, _, _ := setupCalendar(t)
		item := seedItem(t, repo, "2026-10-20", true, true, true, true, true)

		result, err := uc.ToggleStep(ctx, item.ID, types.ProgressStepScript, false)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Record.Progress()).Equal([]bool{true, false, false, false, false})
	})

	t.Run("every toggle keeps progress prefix-closed", func(t *testing.T) {
		uc, repo, _, _ := setupCalendar(t)
		item := seedItem(t, repo, "2026-10-20")

		steps := types.AllProgressSteps()
		for i := range 40 {
			step := steps[(i*3)%len(steps)]
			checked := i%3 != 0
			result, err := uc.ToggleStep(ctx, item.ID, step, checked)
			gt.NoError(t, err).Required()
			gt.Bool(t, result.Record.IsPrefixClosed()).True()

			idx := step.Index()
			gt.Value(t, result.Record.Progress()[idx]).Equal(checked)
		}
	})

	t.Run("toggle that changes nothing is a no-op", func(t *testing.T) {
		uc, repo, _, _ := setupCalendar(t)
		item := seedItem(t, repo, "2026-10-20", true, true)

		result, err := uc.ToggleStep(ctx, item.ID, types.ProgressStepIdea, true)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Outcome).Equal(usecase.OutcomeNoop)
		gt.Value(t, repo.items.updateCount()).Equal(0)
	})

	t.Run("toggle on an out of order record stores it prefix-closed", func(t *testing.T) {
		cases := []struct {
			name    string
			seeded  []bool
			step    types.ProgressStep
			checked bool
			want    []bool
		}{
			{
				name:    "check idea with edit set",
				seeded:  []bool{false, false, false, true, false},
				step:    types.ProgressStepIdea,
				checked: true,
				want:    []bool{true, false, false, false, false},
			},
			{
				name:    "uncheck edit with script set",
				seeded:  []bool{false, true, false, false, false},
				step:    types.ProgressStepEdit,
				checked: false,
				want:    []bool{false, false, false, false, false},
			},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				uc, repo, _, _ := setupCalendar(t)
				item := seedItem(t, repo, "2026-10-20", tc.seeded...)

				result, err := uc.ToggleStep(ctx, item.ID, tc.step, tc.checked)
				gt.NoError(t, err).Required()
				gt.Value(t, result.Outcome).Equal(usecase.OutcomeConfirmed)
				gt.Value(t, result.Record.Progress()).Equal(tc.want)

				stored, err := repo.Memory.ContentItem().Get(ctx, item.ID)
				gt.NoError(t, err).Required()
				gt.Value(t, stored.Progress()).Equal(tc.want)
				gt.Bool(t, stored.IsPrefixClosed()).True()
			})
		}
	})

	t.Run("failed toggle rolls back", func(t *testing.T) {
		uc, repo, _, rec := setupCalendar(t)
		item := seedItem(t, repo, "2026-10-20", true)
		gt.NoError(t, uc.Load(ctx)).Required()

		repo.items.setFailUpdate(errRemote)
		result, err := uc.ToggleStep(ctx, item.ID, types.ProgressStepReady, true)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Outcome).Equal(usecase.OutcomeRolledBack)

		cached, err := uc.Item(ctx, item.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, cached).Equal(item)
		gt.Array(t, rec.list()).Length(1)
	})
}

func TestCalendarReschedule(t *testing.T) {
	ctx := context.Background()

	t.Run("moves the card to another day", func(t *testing.T) {
		uc, repo, _, _ := setupCalendar(t)
		item := seedItem(t, repo, "2026-10-20")

		result, err := uc.Reschedule(ctx, item.ID, "2026-10-23")
		gt.NoError(t, err).Required()
		gt.Value(t, result.Outcome).Equal(usecase.OutcomeConfirmed)
		gt.Value(t, result.Record.ScheduledDate).Equal(types.Date("2026-10-23"))

		stored, err := repo.Memory.ContentItem().Get(ctx, item.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.ScheduledDate).Equal(types.Date("2026-10-23"))
	})

	t.Run("same day is a no-op", func(t *testing.T) {
		uc, repo, _, _ := setupCalendar(t)
		item := seedItem(t, repo, "2026-10-20")

		result, err := uc.Reschedule(ctx, item.ID, "2026-10-20")
		gt.NoError(t, err).Required()
		gt.Value(t, result.Outcome).Equal(usecase.OutcomeNoop)
		gt.Value(t, repo.items.updateCount()).Equal(0)
	})

	t.Run("failure restores the date and reload matches the store", func(t *testing.T) {
		uc, repo, _, rec := setupCalendar(t)
		item := seedItem(t, repo, "2026-10-20")
		gt.NoError(t, uc.Load(ctx)).Required()

		repo.items.setFailUpdate(errRemote)
		result, err := uc.Reschedule(ctx, item.ID, "2026-10-30")
		gt.NoError(t, err).Required()
		gt.Value(t, result.Outcome).Equal(usecase.OutcomeRolledBack)
		gt.Value(t, result.Record.ScheduledDate).Equal(types.Date("2026-10-20"))

		notices := rec.list()
		gt.Array(t, notices).Length(1).Required()
		gt.Value(t, notices[0].Message).Equal("Reschedule failed")

		repo.items.setFailUpdate(nil)
		gt.NoError(t, uc.Load(ctx)).Required()
		reloaded, err := uc.Item(ctx, item.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, reloaded).Equal(item)
	})

	t.Run("record deleted remotely is reloaded", func(t *testing.T) {
		uc, repo, _, _ := setupCalendar(t)
		item := seedItem(t, repo, "2026-10-20")
		gt.NoError(t, uc.Load(ctx)).Required()
		gt.NoError(t, repo.Memory.ContentItem().Delete(ctx, item.ID)).Required()

		result, err := uc.Reschedule(ctx, item.ID, "2026-10-21")
		gt.NoError(t, err).Required()
		gt.Value(t, result.Outcome).Equal(usecase.OutcomeRolledBack)

		_, err = uc.Item(ctx, item.ID)
		gt.Error(t, err).Is(usecase.ErrContentItemNotFound)
	})

	t.Run("failed drop keeps a newer day loaded while it was in flight", func(t *testing.T) {
		uc, repo, _, rec := setupCalendar(t)
		item := seedItem(t, repo, "2026-10-20")
		gt.NoError(t, uc.Load(ctx)).Required()

		repo.items.setFailUpdate(errRemote)
		repo.items.setBeforeFail(func() {
			_, err := repo.Memory.ContentItem().Update(ctx, item.ID, model.ContentItemPatch{
				ScheduledDate: ptr(types.Date("2026-10-25")),
			})
			gt.NoError(t, err).Required()
			gt.NoError(t, uc.Load(ctx)).Required()
		})

		result, err := uc.Reschedule(ctx, item.ID, "2026-10-23")
		gt.NoError(t, err).Required()
		gt.Value(t, result.Outcome).Equal(usecase.OutcomeRolledBack)
		gt.Value(t, result.Record.ScheduledDate).Equal(types.Date("2026-10-25"))

		cached, err := uc.Item(ctx, item.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, cached.ScheduledDate).Equal(types.Date("2026-10-25"))
		gt.Array(t, rec.list()).Length(1)
	})

	t.Run("drop that lands but cannot be read back is kept", func(t *testing.T) {
		uc, repo, _, rec := setupCalendar(t)
		item := seedItem(t, repo, "2026-10-20")
		gt.NoError(t, uc.Load(ctx)).Required()

		repo.items.setFailReadBack(interfaces.ErrUnconfirmed)
		result, err := uc.Reschedule(ctx, item.ID, "2026-10-23")
		gt.NoError(t, err).Required()
		gt.Value(t, result.Outcome).Equal(usecase.OutcomeConfirmed)
		gt.Value(t, result.Record.ScheduledDate).Equal(types.Date("2026-10-23"))

		stored, err := repo.Memory.ContentItem().Get(ctx, item.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.ScheduledDate).Equal(types.Date("2026-10-23"))

		cached, err := uc.Item(ctx, item.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, cached.ScheduledDate).Equal(types.Date("2026-10-23"))
		gt.Array(t, rec.list()).Length(0)
	})

	t.Run("date is required", func(t *testing.T) {
		uc, repo, _, _ := setupCalendar(t)
		item := seedItem(t, repo, "2026-10-20")
		_, err := uc.Reschedule(ctx, item.ID, "")
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})
}

func TestCalendarCreateSave(t *testing.T) {
	ctx := context.Background()

	t.Run("draft is pre-filled for the clicked day", func(t *testing.T) {
		uc, _, _, _ := setupCalendar(t)
		draft := uc.Draft("2026-10-22")
		gt.Value(t, draft.ScheduledDate).Equal(types.Date("2026-10-22"))
		gt.Value(t, draft.Pillar).Equal(types.PillarHotTake)
		gt.Value(t, draft.Effort).Equal(types.EffortLow)
		gt.Value(t, draft.ID).Equal("")
	})

	t.Run("create fills defaults", func(t *testing.T) {
		uc, _, _, _ := setupCalendar(t)
		created, err := uc.Create(ctx, usecase.ContentItemInput{
			Title:         "Kipchoge pacing",
			ScheduledDate: "2026-10-22",
			HasIdea:       true,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.Pillar).Equal(types.PillarHotTake)
		gt.Value(t, created.Effort).Equal(types.EffortLow)
		gt.Value(t, created.ID).NotEqual("")

		items, err := uc.Items(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(1)
	})

	t.Run("create rejects non prefix-closed progress", func(t *testing.T) {
		uc, repo, _, _ := setupCalendar(t)
		_, err := uc.Create(ctx, usecase.ContentItemInput{
			Title:     "Skipped script",
			HasIdea:   true,
			HasEdit:   true,
			HasScript: false,
		})
		gt.Error(t, err).Is(model.ErrInvalidProgress)

		items, err := repo.Memory.ContentItem().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(0)
	})

	t.Run("create rejects unknown pillar", func(t *testing.T) {
		uc, _, _, _ := setupCalendar(t)
		_, err := uc.Create(ctx, usecase.ContentItemInput{Title: "x", Pillar: "gossip"})
		gt.Error(t, err).Is(model.ErrInvalidContentItem)
	})

	t.Run("save writes only changed fields", func(t *testing.T) {
		uc, repo, _, _ := setupCalendar(t)
		item := seedItem(t, repo, "2026-10-20", true)

		result, err := uc.Save(ctx, item.ID, usecase.ContentItemInput{
			Title:         item.Title,
			Pillar:        item.Pillar,
			ScheduledDate: item.ScheduledDate,
			HasIdea:       true,
			Effort:        item.Effort,
			Notes:         "film at km 30",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, result.Outcome).Equal(usecase.OutcomeConfirmed)
		gt.Value(t, result.Record.Notes).Equal("film at km 30")

		var names []string
		for _, c := range repo.items.updates[0].Changes() {
			names = append(names, c.Name)
		}
		gt.Value(t, names).Equal([]string{"Notes", "UpdatedAt"})
	})

	t.Run("save rejects non prefix-closed progress without writing", func(t *testing.T) {
		uc, repo, _, _ := setupCalendar(t)
		item := seedItem(t, repo, "2026-10-20", true)

		_, err := uc.Save(ctx, item.ID, usecase.ContentItemInput{
			Title:   item.Title,
			Pillar:  item.Pillar,
			Effort:  item.Effort,
			IsReady: true,
		})
		gt.Error(t, err).Is(model.ErrInvalidProgress)
		gt.Value(t, repo.items.updateCount()).Equal(0)

		cached, err := uc.Item(ctx, item.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, cached).Equal(item)
	})

	t.Run("delete", func(t *testing.T) {
		uc, repo, _, _ := setupCalendar(t)
		item := seedItem(t, repo, "2026-10-20")
		gt.NoError(t, uc.Delete(ctx, item.ID)).Required()
		gt.Error(t, uc.Delete(ctx, item.ID)).Is(usecase.ErrContentItemNotFound)
	})
}

func TestCalendarViews(t *testing.T) {
	ctx := context.Background()
	uc, repo, _, _ := setupCalendar(t)
	seedItem(t, repo, "2026-10-01")
	seedItem(t, repo, "2026-10-19")
	seedItem(t, repo, "2026-10-19")
	seedItem(t, repo, "")

	t.Run("month", func(t *testing.T) {
		view, err := uc.Month(ctx, 2026, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, view.Weeks).Length(5).Required()
		gt.Value(t, view.Weeks[0][4].Date).Equal(types.Date("2026-10-01"))
		gt.Array(t, view.Weeks[0][4].Items).Length(1)
		gt.Value(t, view.Weeks[3][1].Date).Equal(types.Date("2026-10-19"))
		gt.Bool(t, view.Weeks[3][1].IsToday).True()
		gt.Array(t, view.Weeks[3][1].Items).Length(2)
	})

	t.Run("week", func(t *testing.T) {
		view, err := uc.Week(ctx, 2026, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, view.Days).Length(7).Required()
		gt.Value(t, view.Days[0].Date).Equal(types.Date("2026-10-18"))
		gt.Value(t, view.Days[6].Date).Equal(types.Date("2026-10-24"))
		gt.Array(t, view.Days[1].Items).Length(2)
	})

	t.Run("summary", func(t *testing.T) {
		summary, err := uc.Summary(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, summary.Total).Equal(4)
		gt.Value(t, summary.ThisWeekTotal).Equal(2)
	})

	t.Run("invalid month", func(t *testing.T) {
		_, err := uc.Month(ctx, 2026, 13)
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})
}
