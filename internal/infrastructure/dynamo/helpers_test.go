package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldStatus: "pending"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": fieldStatus}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		fieldStatus:          "completed",
		fieldCompletedAt:     "2026-03-10T09:00:00Z",
		fieldStatusUpdatedBy: "u1",
	}
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)

	// completed_at < status < status_updated_by
	assert.Equal(t, fieldCompletedAt, ue1.Names["#f0"])
	assert.Equal(t, fieldStatus, ue1.Names["#f1"])
	assert.Equal(t, fieldStatusUpdatedBy, ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldViewed: true})
	require.NoError(t, err)
	av, ok := ue.Values[":v0"]
	require.True(t, ok)
	boolVal, isBool := av.(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestUpdateExpr_WithConditionMergesPlaceholders(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldViewed: true})
	require.NoError(t, err)

	ue.withCondition(
		map[string]string{"#id": fieldID},
		map[string]types.AttributeValue{":actor": &types.AttributeValueMemberS{Value: "u1"}},
	)

	assert.Equal(t, map[string]string{"#f0": fieldViewed, "#id": fieldID}, ue.Names)
	assert.Len(t, ue.Values, 2)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
}

func TestUpdateExpr_WithRemoveAppendsClause(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldStatus: "pending"})
	require.NoError(t, err)

	ue.withRemove(fieldStatusComment, fieldCompletedAt)

	assert.Equal(t, "SET #f0 = :v0 REMOVE #r0, #r1", ue.Expr)
	assert.Equal(t, fieldStatusComment, ue.Names["#r0"])
	assert.Equal(t, fieldCompletedAt, ue.Names["#r1"])
	assert.Len(t, ue.Values, 1)
}

func TestUpdateExpr_WithRemoveNothingKeepsExpr(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldStatus: "pending"})
	require.NoError(t, err)

	ue.withRemove()

	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
}
