package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeReward_OpenDwellLikeAllContribute(t *testing.T) {
	out := outcome{openCount: 1, maxDwellMs: 45000}
	reward := computeReward(out, true)
	assert.InDelta(t, 0.6+0.35+0.35, reward, 1e-9)
}

func TestComputeReward_ClampedToOne(t *testing.T) {
	out := outcome{openCount: 1, maxDwellMs: 90000}
	reward := computeReward(out, true)
	assert.Equal(t, 1.0, reward)
}

func TestComputeReward_FastSkipPenalized(t *testing.T) {
	out := outcome{openCount: 1, maxDwellMs: 45000, fastSkipCount: 1}
	withSkip := computeReward(out, false)
	out.fastSkipCount = 0
	withoutSkip := computeReward(out, false)
	assert.InDelta(t, withoutSkip-0.3, withSkip, 1e-9)
}

func TestComputeReward_NoSignalIsZero(t *testing.T) {
	assert.Equal(t, 0.0, computeReward(outcome{}, false))
}

func TestComputeReward_NeverNegative(t *testing.T) {
	out := outcome{fastSkipCount: 3}
	assert.GreaterOrEqual(t, computeReward(out, false), 0.0)
}

func TestOutcome_AvgDwellMs(t *testing.T) {
	out := outcome{sumDwellMs: 9000, dwellCount: 3}
	assert.InDelta(t, 3000.0, out.avgDwellMs(), 1e-9)
}

func TestOutcome_AvgDwellMsNoDwells(t *testing.T) {
	assert.Equal(t, 0.0, outcome{}.avgDwellMs())
}
