package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/types"
)

// ContentItem is a planned piece of social content on the calendar
type ContentItem struct {
	ID               string       `json:"id"`
	Week             *int         `json:"week"`
	DayOfWeek        *string      `json:"day_of_week"`
	Pillar           types.Pillar `json:"pillar"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	ScheduledDate    types.Date   `json:"scheduled_date"`
	HasIdea          bool         `json:"has_idea"`
	HasScript        bool         `json:"has_script"`
	HasRecording     bool         `json:"has_recording"`
	HasEdit          bool         `json:"has_edit"`
	IsReady          bool         `json:"is_ready"`
	Notes            string       `json:"notes"`
	InstagramCaption string       `json:"instagram_caption"`
	TiktokCaption    string       `json:"tiktok_caption"`
	Script           string       `json:"script"`
	Effort           types.Effort `json:"effort"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// Clone returns a deep copy of the item
func (c *ContentItem) Clone() *ContentItem {
	if c == nil {
		return nil
	}
	v := *c
	v.Week = clonePtr(c.Week)
	v.DayOfWeek = clonePtr(c.DayOfWeek)
	return &v
}

// Progress returns the checklist flags in step order
func (c *ContentItem) Progress() []bool {
	return []bool{c.HasIdea, c.HasScript, c.HasRecording, c.HasEdit, c.IsReady}
}

// SetProgress assigns the flags in step order. Missing trailing values are
// treated as false.
func (c *ContentItem) SetProgress(flags []bool) {
	get := func(i int) bool { return i < len(flags) && flags[i] }
	c.HasIdea = get(0)
	c.HasScript = get(1)
	c.HasRecording = get(2)
	c.HasEdit = get(3)
	c.IsReady = get(4)
}

// IsPrefixClosed reports whether every checked step is preceded only by
// checked steps
func (c *ContentItem) IsPrefixClosed() bool {
	seenUnchecked := false
	for _, v := range c.Progress() {
		if v && seenUnchecked {
			return false
		}
		if !v {
			seenUnchecked = true
		}
	}
	return true
}

// ToggleStep applies the checklist rule: checking a step checks it and all
// earlier steps, unchecking a step clears it and all later steps. Flags after
// the first unchecked step are then cleared, so a record stored out of order
// comes back prefix-closed.
func (c *ContentItem) ToggleStep(step types.ProgressStep, checked bool) error {
	idx := step.Index()
	if idx < 0 {
		return goerr.Wrap(ErrInvalidContentItem, "unknown progress step",
			goerr.V(ContentItemIDKey, c.ID), goerr.V(FieldKey, step))
	}

	flags := c.Progress()
	for i := range flags {
		if checked && i <= idx {
			flags[i] = true
		}
		if !checked && i >= idx {
			flags[i] = false
		}
	}
	c.SetProgress(closePrefix(flags))
	return nil
}

// closePrefix clears every flag after the first false one
func closePrefix(flags []bool) []bool {
	open := true
	for i, v := range flags {
		if !v {
			open = false
		}
		flags[i] = v && open
	}
	return flags
}

// CompletedSteps counts the checked steps
func (c *ContentItem) CompletedSteps() int {
	n := 0
	for _, v := range c.Progress() {
		if v {
			n++
		}
	}
	return n
}

// Validate checks the user supplied fields against the configured pillars
func (c *ContentItem) Validate(pillars []types.Pillar) error {
	if strings.TrimSpace(c.Title) == "" {
		return goerr.Wrap(ErrInvalidContentItem, "title is required", goerr.V(ContentItemIDKey, c.ID))
	}
	if !c.Pillar.In(pillars) {
		return goerr.Wrap(ErrInvalidContentItem, "unknown pillar",
			goerr.V(ContentItemIDKey, c.ID), goerr.V(ValueKey, c.Pillar))
	}
	if !c.Effort.IsValid() {
		return goerr.Wrap(ErrInvalidContentItem, "invalid effort",
			goerr.V(ContentItemIDKey, c.ID), goerr.V(ValueKey, c.Effort))
	}
	if _, err := types.ParseDate(c.ScheduledDate.String()); err != nil {
		return goerr.Wrap(ErrInvalidContentItem, "invalid scheduled date",
			goerr.V(ContentItemIDKey, c.ID), goerr.V(ValueKey, c.ScheduledDate))
	}
	if !c.IsPrefixClosed() {
		return goerr.Wrap(ErrInvalidProgress, "progress flags are not prefix-closed",
			goerr.V(ContentItemIDKey, c.ID), goerr.V(ValueKey, c.Progress()))
	}
	return nil
}

// ContentItemPatch carries the changed fields of a content item
type ContentItemPatch struct {
	Week             *Nullable[int]
	DayOfWeek        *Nullable[string]
	Pillar           *types.Pillar
	Title            *string
	Description      *string
	ScheduledDate    *types.Date
	HasIdea          *bool
	HasScript        *bool
	HasRecording     *bool
	HasEdit          *bool
	IsReady          *bool
	Notes            *string
	InstagramCaption *string
	TiktokCaption    *string
	Script           *string
	Effort           *types.Effort
	UpdatedAt        *time.Time
}

// DiffContentItem returns the patch that turns before into after
func DiffContentItem(before, after *ContentItem) ContentItemPatch {
	var p ContentItemPatch
	if !ptrEqual(before.Week, after.Week) {
		p.Week = nullableOf(after.Week)
	}
	if !ptrEqual(before.DayOfWeek, after.DayOfWeek) {
		p.DayOfWeek = nullableOf(after.DayOfWeek)
	}
	if before.Pillar != after.Pillar {
		p.Pillar = ref(after.Pillar)
	}
	if before.Title != after.Title {
		p.Title = ref(after.Title)
	}
	if before.Description != after.Description {
		p.Description = ref(after.Description)
	}
	if before.ScheduledDate != after.ScheduledDate {
		p.ScheduledDate = ref(after.ScheduledDate)
	}
	if before.HasIdea != after.HasIdea {
		p.HasIdea = ref(after.HasIdea)
	}
	if before.HasScript != after.HasScript {
		p.HasScript = ref(after.HasScript)
	}
	if before.HasRecording != after.HasRecording {
		p.HasRecording = ref(after.HasRecording)
	}
	if before.HasEdit != after.HasEdit {
		p.HasEdit = ref(after.HasEdit)
	}
	if before.IsReady != after.IsReady {
		p.IsReady = ref(after.IsReady)
	}
	if before.Notes != after.Notes {
		p.Notes = ref(after.Notes)
	}
	if before.InstagramCaption != after.InstagramCaption {
		p.InstagramCaption = ref(after.InstagramCaption)
	}
	if before.TiktokCaption != after.TiktokCaption {
		p.TiktokCaption = ref(after.TiktokCaption)
	}
	if before.Script != after.Script {
		p.Script = ref(after.Script)
	}
	if before.Effort != after.Effort {
		p.Effort = ref(after.Effort)
	}
	if !before.UpdatedAt.Equal(after.UpdatedAt) {
		p.UpdatedAt = ref(after.UpdatedAt)
	}
	return p
}

// IsEmpty reports whether the patch changes nothing
func (p ContentItemPatch) IsEmpty() bool {
	return len(p.Changes()) == 0
}

// Apply writes the patch fields onto c
func (p ContentItemPatch) Apply(c *ContentItem) {
	if p.Week != nil {
		c.Week = clonePtr(p.Week.Value)
	}
	if p.DayOfWeek != nil {
		c.DayOfWeek = clonePtr(p.DayOfWeek.Value)
	}
	if p.Pillar != nil {
		c.Pillar = *p.Pillar
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.ScheduledDate != nil {
		c.ScheduledDate = *p.ScheduledDate
	}
	if p.HasIdea != nil {
		c.HasIdea = *p.HasIdea
	}
	if p.HasScript != nil {
		c.HasScript = *p.HasScript
	}
	if p.HasRecording != nil {
		c.HasRecording = *p.HasRecording
	}
	if p.HasEdit != nil {
		c.HasEdit = *p.HasEdit
	}
	if p.IsReady != nil {
		c.IsReady = *p.IsReady
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.InstagramCaption != nil {
		c.InstagramCaption = *p.InstagramCaption
	}
	if p.TiktokCaption != nil {
		c.TiktokCaption = *p.TiktokCaption
	}
	if p.Script != nil {
		c.Script = *p.Script
	}
	if p.Effort != nil {
		c.Effort = *p.Effort
	}
	if p.UpdatedAt != nil {
		c.UpdatedAt = *p.UpdatedAt
	}
}

// Changes lists the changed fields with their new values
func (p ContentItemPatch) Changes() []FieldChange {
	var changes []FieldChange
	add := func(name string, v any) {
		changes = append(changes, FieldChange{Name: name, Value: v})
	}

	if p.Week != nil {
		add("Week", p.Week.Any())
	}
	if p.DayOfWeek != nil {
		add("DayOfWeek", p.DayOfWeek.Any())
	}
	if p.Pillar != nil {
		add("Pillar", string(*p.Pillar))
	}
	if p.Title != nil {
		add("Title", *p.Title)
	}
	if p.Description != nil {
		add("Description", *p.Description)
	}
	if p.ScheduledDate != nil {
		add("ScheduledDate", string(*p.ScheduledDate))
	}
	if p.HasIdea != nil {
		add("HasIdea", *p.HasIdea)
	}
	if p.HasScript != nil {
		add("HasScript", *p.HasScript)
	}
	if p.HasRecording != nil {
		add("HasRecording", *p.HasRecording)
	}
	if p.HasEdit != nil {
		add("HasEdit", *p.HasEdit)
	}
	if p.IsReady != nil {
		add("IsReady", *p.IsReady)
	}
	if p.Notes != nil {
		add("Notes", *p.Notes)
	}
	if p.InstagramCaption != nil {
		add("InstagramCaption", *p.InstagramCaption)
	}
	if p.TiktokCaption != nil {
		add("TiktokCaption", *p.TiktokCaption)
	}
	if p.Script != nil {
		add("Script", *p.Script)
	}
	if p.Effort != nil {
		add("Effort", string(*p.Effort))
	}
	if p.UpdatedAt != nil {
		add("UpdatedAt", *p.UpdatedAt)
	}
	return changes
}

// ContentItemKey orders the calendar: by scheduled date ascending with
// unscheduled items last, then by creation time
func ContentItemKey(a, b *ContentItem) int {
	switch {
	case a.ScheduledDate.IsZero() && !b.ScheduledDate.IsZero():
		return 1
	case !a.ScheduledDate.IsZero() && b.ScheduledDate.IsZero():
		return -1
	case a.ScheduledDate != b.ScheduledDate:
		return strings.Compare(string(a.ScheduledDate), string(b.ScheduledDate))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
