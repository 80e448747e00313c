package types_test

import (
	"testing"

	"github.com/beakerhub/beakerhub/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestStandupStatusIsValid(t *testing.T) {
	for _, s := range types.AllStandupStatuses() {
		gt.Bool(t, s.IsValid()).True()
	}
	gt.Bool(t, types.StandupStatus("DONE").IsValid()).False()
	gt.Bool(t, types.StandupStatus("").IsValid()).False()
}

func TestStandupStatusTransitions(t *testing.T) {
	cases := []struct {
		from    types.StandupStatus
		to      types.StandupStatus
		allowed bool
	}{
		{types.StandupStatusScheduled, types.StandupStatusInProgress, true},
		{types.StandupStatusInProgress, types.StandupStatusProcessing, true},
		{types.StandupStatusProcessing, types.StandupStatusCompleted, true},
		{types.StandupStatusScheduled, types.StandupStatusCancelled, true},
		{types.StandupStatusInProgress, types.StandupStatusCancelled, true},
		{types.StandupStatusProcessing, types.StandupStatusCancelled, true},

		// Forward skips are allowed (transcript can attach straight from Scheduled)
		{types.StandupStatusScheduled, types.StandupStatusProcessing, true},

		// No regressions, no leaving terminal states
		{types.StandupStatusProcessing, types.StandupStatusScheduled, false},
		{types.StandupStatusProcessing, types.StandupStatusInProgress, false},
		{types.StandupStatusCompleted, types.StandupStatusCancelled, false},
		{types.StandupStatusCancelled, types.StandupStatusScheduled, false},
		{types.StandupStatusCancelled, types.StandupStatusCompleted, false},
		{types.StandupStatusCompleted, types.StandupStatusProcessing, false},
	}

	for _, tc := range cases {
		t.Run(tc.from.String()+"->"+tc.to.String(), func(t *testing.T) {
			gt.Value(t, tc.from.CanTransitionTo(tc.to)).Equal(tc.allowed)
		})
	}
}

func TestParseStandupStatus(t *testing.T) {
	status, err := types.ParseStandupStatus("PROCESSING")
	gt.NoError(t, err)
	gt.Value(t, status).Equal(types.StandupStatusProcessing)

	_, err = types.ParseStandupStatus("processing")
	gt.Error(t, err)
}

func TestStandupStatusNormalize(t *testing.T) {
	gt.Value(t, types.StandupStatus("").Normalize()).Equal(types.StandupStatusScheduled)
	gt.Value(t, types.StandupStatusCompleted.Normalize()).Equal(types.StandupStatusCompleted)
}

func TestBlockerSeverityNormalize(t *testing.T) {
	gt.Value(t, types.BlockerSeverity("HIGH").Normalize()).Equal(types.BlockerSeverityHigh)
	gt.Value(t, types.BlockerSeverity("urgent").Normalize()).Equal(types.BlockerSeverityMedium)
	gt.Value(t, types.BlockerSeverity("").Normalize()).Equal(types.BlockerSeverityMedium)
}
