package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestRunningMeanExpr_FirstObservationBranchReturnsNext(t *testing.T) {
	expr := runningMeanExpr("$engagement_score", 0.7, true)
	cond, ok := expr[0].Value.(bson.A)
	assert.True(t, ok)
	assert.Len(t, cond, 3)
	assert.Equal(t, 0.7, cond[1])
}

func TestDwellInteractionScore_BoundedAndMonotonicInDwell(t *testing.T) {
	short := dwellInteractionScore(500, nil)
	long := dwellInteractionScore(60000, nil)

	assert.GreaterOrEqual(t, short, 0.0)
	assert.LessOrEqual(t, long, 1.0)
	assert.Greater(t, long, short)
}

func TestDwellInteractionScore_VelocityPenaltyReducesScore(t *testing.T) {
	slow := 0.3
	fast := 2.0

	withSlowVelocity := dwellInteractionScore(5000, &slow)
	withFastVelocity := dwellInteractionScore(5000, &fast)

	assert.GreaterOrEqual(t, withFastVelocity, 0.0)
	assert.Less(t, withFastVelocity, withSlowVelocity)
}
