package dynamo

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldDelivered: true})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "delivered"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		"active":     true,
		"created_at": "2024-01-01T00:00:00Z",
		"header":     "h",
	}
	// Call twice to verify determinism.
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)

	// Keys must be sorted: active < created_at < header
	assert.Equal(t, "active", ue1.Names["#f0"])
	assert.Equal(t, "created_at", ue1.Names["#f1"])
	assert.Equal(t, "header", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldDelivered: true})
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

func item(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"message_id": &types.AttributeValueMemberS{Value: id},
	}
}

func TestQueryPages_FollowsLastEvaluatedKey(t *testing.T) {
	pages := []*dynamodb.QueryOutput{
		{Items: []map[string]types.AttributeValue{item("m1")}, LastEvaluatedKey: item("m1")},
		{Items: []map[string]types.AttributeValue{item("m2"), item("m3")}, LastEvaluatedKey: item("m3")},
		{Items: []map[string]types.AttributeValue{item("m4")}},
	}

	var gotStartKeys []map[string]types.AttributeValue
	call := 0
	items, err := queryPages(func(startKey map[string]types.AttributeValue) (*dynamodb.QueryOutput, error) {
		gotStartKeys = append(gotStartKeys, startKey)
		out := pages[call]
		call++
		return out, nil
	})

	require.NoError(t, err)
	require.Len(t, items, 4)
	require.Len(t, gotStartKeys, 3)
	assert.Nil(t, gotStartKeys[0])
	assert.Equal(t, item("m1"), gotStartKeys[1])
	assert.Equal(t, item("m3"), gotStartKeys[2])
}

func TestQueryPages_EmptyFilteredPageIsNotTheEnd(t *testing.T) {
	// A filter expression is applied after the read limit, so a page can carry
	// zero items yet still have more matching rows behind its key.
	pages := []*dynamodb.QueryOutput{
		{Items: nil, LastEvaluatedKey: item("m1000")},
		{Items: []map[string]types.AttributeValue{item("m1001")}},
	}

	call := 0
	items, err := queryPages(func(_ map[string]types.AttributeValue) (*dynamodb.QueryOutput, error) {
		out := pages[call]
		call++
		return out, nil
	})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item("m1001"), items[0])
}

func TestQueryPages_ErrorStopsPagination(t *testing.T) {
	boom := errors.New("throttled")
	calls := 0
	_, err := queryPages(func(_ map[string]types.AttributeValue) (*dynamodb.QueryOutput, error) {
		calls++
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestScanPages_FollowsLastEvaluatedKey(t *testing.T) {
	pages := []*dynamodb.ScanOutput{
		{Items: []map[string]types.AttributeValue{item("d1")}, LastEvaluatedKey: item("d1")},
		{Items: []map[string]types.AttributeValue{item("d2")}},
	}

	call := 0
	items, err := scanPages(func(_ map[string]types.AttributeValue) (*dynamodb.ScanOutput, error) {
		out := pages[call]
		call++
		return out, nil
	})

	require.NoError(t, err)
	assert.Len(t, items, 2)
}
