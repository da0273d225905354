package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.rv.dev/rv/internal/core/domain"
)

func TestPlan_InstallAndRemoveCounts(t *testing.T) {
	plan := &domain.Plan{
		Actions: []domain.Action{
			{Kind: domain.ActionInstall, Name: domain.NewInternedString("a")},
			{Kind: domain.ActionInstall, Name: domain.NewInternedString("b")},
			{Kind: domain.ActionRemove, Name: domain.NewInternedString("c")},
			{Kind: domain.ActionKeep, Name: domain.NewInternedString("d")},
		},
	}

	assert.Equal(t, 2, plan.InstallCount())
	assert.Equal(t, 1, plan.RemoveCount())
}

func TestSyncReport_CountByKindAndAllSucceeded(t *testing.T) {
	report := &domain.SyncReport{
		Outcomes: []domain.Outcome{
			{Name: domain.NewInternedString("a"), Kind: domain.OutcomeInstalled},
			{Name: domain.NewInternedString("b"), Kind: domain.OutcomeFailed, Err: errors.New("boom")},
			{Name: domain.NewInternedString("c"), Kind: domain.OutcomeSkippedFailedDependency},
		},
	}

	assert.Equal(t, 1, report.CountByKind(domain.OutcomeInstalled))
	assert.Equal(t, 1, report.CountByKind(domain.OutcomeFailed))
	assert.Equal(t, 1, report.CountByKind(domain.OutcomeSkippedFailedDependency))
	assert.False(t, report.AllSucceeded())
}

func TestSyncReport_AllSucceeded_True(t *testing.T) {
	report := &domain.SyncReport{
		Outcomes: []domain.Outcome{
			{Name: domain.NewInternedString("a"), Kind: domain.OutcomeInstalled},
			{Name: domain.NewInternedString("b"), Kind: domain.OutcomeKept},
			{Name: domain.NewInternedString("c"), Kind: domain.OutcomeRemoved},
		},
	}

	assert.True(t, report.AllSucceeded())
}
