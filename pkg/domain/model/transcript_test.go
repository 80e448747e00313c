package model_test

import (
	"testing"
	"time"

	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

func TestCountWords(t *testing.T) {
	gt.Number(t, model.CountWords("quarterly review notes for the team")).Equal(6)
	gt.Number(t, model.CountWords("  spaced\tout\nwords  ")).Equal(3)
	gt.Number(t, model.CountWords("")).Equal(0)
	gt.Number(t, model.CountWords("   ")).Equal(0)
}

func TestTranscriptValidate(t *testing.T) {
	now := time.Now().UTC()

	valid := &model.Transcript{
		StandupID: model.NewStandupID(),
		LabID:     "lab-1",
		Text:      "standup notes",
		WordCount: 2,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, model.DefaultRetentionDays),
	}
	gt.NoError(t, valid.Validate())

	expiresBeforeCreation := valid.Clone()
	expiresBeforeCreation.ExpiresAt = now.Add(-time.Hour)
	gt.Error(t, expiresBeforeCreation.Validate())

	expiresAtCreation := valid.Clone()
	expiresAtCreation.ExpiresAt = now
	gt.Error(t, expiresAtCreation.Validate())

	missingLab := valid.Clone()
	missingLab.LabID = ""
	gt.Error(t, missingLab.Validate())
}

func TestTranscriptExpired(t *testing.T) {
	now := time.Now().UTC()
	tr := &model.Transcript{
		StandupID: model.NewStandupID(),
		LabID:     "lab-1",
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}

	gt.Bool(t, tr.Expired(now)).False()
	gt.Bool(t, tr.Expired(now.Add(24*time.Hour))).True()
	gt.Bool(t, tr.Expired(now.Add(25*time.Hour))).True()
}

func TestValidateExtensionDays(t *testing.T) {
	gt.NoError(t, model.ValidateExtensionDays(1))
	gt.NoError(t, model.ValidateExtensionDays(365))
	gt.Error(t, model.ValidateExtensionDays(0))
	gt.Error(t, model.ValidateExtensionDays(-5))
	gt.Error(t, model.ValidateExtensionDays(366))
}

func TestAnalysisResultEnsureDefaults(t *testing.T) {
	r := &model.AnalysisResult{Summary: "daily sync"}
	r.EnsureDefaults()

	gt.Bool(t, r.ActionItems == nil).False()
	gt.Bool(t, r.Blockers == nil).False()
	gt.Bool(t, r.Updates == nil).False()
	gt.Array(t, r.ActionItems).Length(0)

	withBlockers := &model.AnalysisResult{
		Blockers: []model.Blocker{{Issue: "CI is red", Severity: "whatever"}},
	}
	withBlockers.EnsureDefaults()
	gt.Value(t, withBlockers.Blockers[0].Severity.IsValid()).Equal(true)
}
