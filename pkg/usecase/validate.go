package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model"
)

// ValidationIssue is one record that disagrees with the configuration or the
// progress rule
type ValidationIssue struct {
	Table    string
	RecordID string
	Message  string
	Actual   string
}

// ValidationResult holds the results of DB validation
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasIssues returns true if there are any validation issues
func (r *ValidationResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// AddIssue adds a validation issue to the result
func (r *ValidationResult) AddIssue(issue ValidationIssue) {
	r.Issues = append(r.Issues, issue)
}

// ValidateDB reports stored records that the current configuration no longer
// covers: content items with an unconfigured pillar or a broken checklist,
// materials of removed cards and slides of removed talks. It does NOT modify
// any data.
func (uc *UseCases) ValidateDB(ctx context.Context) (*ValidationResult, error) {
	result := &ValidationResult{}

	items, err := uc.repo.ContentItem().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list content items")
	}
	for _, item := range items {
		if !item.Pillar.In(uc.appConfig.Calendar.Pillars) {
			result.AddIssue(ValidationIssue{
				Table:    model.TableContentItems,
				RecordID: item.ID,
				Message:  "pillar is not configured",
				Actual:   item.Pillar.String(),
			})
		}
		if !item.IsPrefixClosed() {
			result.AddIssue(ValidationIssue{
				Table:    model.TableContentItems,
				RecordID: item.ID,
				Message:  "progress steps are not prefix closed",
				Actual:   progressString(item.Progress()),
			})
		}
	}

	materials, err := uc.repo.Material().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list materials")
	}
	for _, m := range materials {
		if !uc.appConfig.HasCard(m.CardKey) {
			result.AddIssue(ValidationIssue{
				Table:    model.TableMaterials,
				RecordID: m.ID,
				Message:  "card is not configured",
				Actual:   m.CardKey,
			})
		}
	}

	slides, err := uc.repo.TalkSlide().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list talk slides")
	}
	for _, s := range slides {
		if !uc.appConfig.HasTalk(s.TalkKey) {
			result.AddIssue(ValidationIssue{
				Table:    model.TableTalkSlides,
				RecordID: s.TalkKey,
				Message:  "talk is not configured",
				Actual:   s.FileName,
			})
		}
	}

	return result, nil
}

func progressString(flags []bool) string {
	var b strings.Builder
	for _, f := range flags {
		if f {
			b.WriteByte('x')
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}
