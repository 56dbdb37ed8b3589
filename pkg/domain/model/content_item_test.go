package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/domain/types"
)

func TestContentItem_ToggleStep(t *testing.T) {
	t.Run("checking script on an idea-only item", func(t *testing.T) {
		item := &model.ContentItem{HasIdea: true}
		gt.NoError(t, item.ToggleStep(types.ProgressStepScript, true)).Required()
		gt.Value(t, item.Progress()).Equal([]bool{true, true, false, false, false})
	})

	t.Run("checking ready checks everything", func(t *testing.T) {
		item := &model.ContentItem{}
		gt.NoError(t, item.ToggleStep(types.ProgressStepReady, true)).Required()
		gt.Value(t, item.Progress()).Equal([]bool{true, true, true, true, true})
	})

	t.Run("unchecking recording clears later steps", func(t *testing.T) {
		item := &model.ContentItem{}
		item.SetProgress([]bool{true, true, true, true, false})
		gt.NoError(t, item.ToggleStep(types.ProgressStepRecording, false)).Required()
		gt.Value(t, item.Progress()).Equal([]bool{true, true, false, false, false})
	})

	t.Run("toggle repairs a record stored out of order", func(t *testing.T) {
		item := &model.ContentItem{}
		item.SetProgress([]bool{false, false, false, true, false})
		gt.NoError(t, item.ToggleStep(types.ProgressStepIdea, true)).Required()
		gt.Value(t, item.Progress()).Equal([]bool{true, false, false, false, false})
		gt.Bool(t, item.IsPrefixClosed()).True()
	})

	t.Run("unknown step is rejected", func(t *testing.T) {
		item := &model.ContentItem{}
		gt.Error(t, item.ToggleStep("has_music", true)).Is(model.ErrInvalidContentItem)
	})

	t.Run("any toggle sequence stays prefix-closed", func(t *testing.T) {
		steps := types.AllProgressSteps()
		item := &model.ContentItem{}
		for i := 0; i < 100; i++ {
			step := steps[(i*3+1)%len(steps)]
			checked := (i*5)%3 != 0
			gt.NoError(t, item.ToggleStep(step, checked)).Required()
			gt.B(t, item.IsPrefixClosed()).True()

			idx := step.Index()
			if checked {
				gt.B(t, item.Progress()[idx]).True()
			} else {
				gt.B(t, item.Progress()[idx]).False()
			}
		}
	})
}

func TestContentItem_IsPrefixClosed(t *testing.T) {
	tests := []struct {
		name  string
		flags []bool
		want  bool
	}{
		{name: "nothing", flags: []bool{false, false, false, false, false}, want: true},
		{name: "idea and script", flags: []bool{true, true, false, false, false}, want: true},
		{name: "all", flags: []bool{true, true, true, true, true}, want: true},
		{name: "gap", flags: []bool{true, false, true, false, false}, want: false},
		{name: "ready only", flags: []bool{false, false, false, false, true}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &model.ContentItem{}
			item.SetProgress(tt.flags)
			gt.Value(t, item.IsPrefixClosed()).Equal(tt.want)
		})
	}
}

func TestContentItem_Validate(t *testing.T) {
	pillars := types.DefaultPillars()
	valid := func() *model.ContentItem {
		return &model.ContentItem{
			Title:         "Marathon pacing myths",
			Pillar:        types.PillarHotTake,
			Effort:        types.EffortLow,
			ScheduledDate: "2024-09-29",
		}
	}

	gt.NoError(t, valid().Validate(pillars))

	t.Run("gap in progress is rejected", func(t *testing.T) {
		item := valid()
		item.HasScript = true
		gt.Error(t, item.Validate(pillars)).Is(model.ErrInvalidProgress)
	})

	t.Run("unknown pillar is rejected", func(t *testing.T) {
		item := valid()
		item.Pillar = "memes"
		gt.Error(t, item.Validate(pillars)).Is(model.ErrInvalidContentItem)
	})

	t.Run("bad date is rejected", func(t *testing.T) {
		item := valid()
		item.ScheduledDate = "2024-13-40"
		gt.Error(t, item.Validate(pillars)).Is(model.ErrInvalidContentItem)
	})

	t.Run("unscheduled is fine", func(t *testing.T) {
		item := valid()
		item.ScheduledDate = ""
		gt.NoError(t, item.Validate(pillars))
	})
}

func TestDiffContentItem(t *testing.T) {
	week := 3
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	before := &model.ContentItem{ID: "c1", Week: &week, ScheduledDate: "2024-05-02", UpdatedAt: t0}

	after := before.Clone()
	after.ScheduledDate = "2024-05-09"
	after.Week = nil
	after.UpdatedAt = t0.Add(time.Minute)

	patch := model.DiffContentItem(before, after)
	names := []string{}
	for _, c := range patch.Changes() {
		names = append(names, c.Name)
	}
	gt.Value(t, names).Equal([]string{"Week", "ScheduledDate", "UpdatedAt"})
	gt.Value(t, patch.Changes()[0].Value).Nil()

	restored := after.Clone()
	model.DiffContentItem(after, before).Apply(restored)
	gt.Value(t, restored.ScheduledDate).Equal(before.ScheduledDate)
	gt.Value(t, *restored.Week).Equal(3)
	gt.Value(t, restored.UpdatedAt).Equal(t0)
}

func TestContentItemKey(t *testing.T) {
	a := &model.ContentItem{ScheduledDate: "2024-05-02"}
	b := &model.ContentItem{ScheduledDate: "2024-05-10"}
	none := &model.ContentItem{}

	gt.B(t, model.ContentItemKey(a, b) < 0).True()
	gt.B(t, model.ContentItemKey(none, a) > 0).True()
	gt.B(t, model.ContentItemKey(b, none) < 0).True()
}
