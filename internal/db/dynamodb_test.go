package db

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/replybot/internal/models"
)

// fakeDynamo stores items in memory and pages scans one item at a time.
type fakeDynamo struct {
	items []map[string]types.AttributeValue
	table string
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.table = *in.TableName
	f.items = append(f.items, in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	start := 0
	if in.ExclusiveStartKey != nil {
		start = int(in.ExclusiveStartKey["i"].(*types.AttributeValueMemberN).Value[0] - '0')
	}
	if start >= len(f.items) {
		return &dynamodb.ScanOutput{}, nil
	}
	out := &dynamodb.ScanOutput{Items: f.items[start : start+1]}
	if start+1 < len(f.items) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"i": &types.AttributeValueMemberN{Value: string(rune('0' + start + 1))},
		}
	}
	return out, nil
}

func TestDynamoTracker_AppendList(t *testing.T) {
	fake := &fakeDynamo{}
	tr := NewDynamoTracker(fake, "TrackedComments")
	ctx := context.Background()

	later := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	earlier := later.Add(-24 * time.Hour)
	require.NoError(t, tr.Append(ctx, models.TrackedComment{CommentID: "c2", PostDate: later}))
	require.NoError(t, tr.Append(ctx, models.TrackedComment{CommentID: "c1", PostID: "p1", ReplyText: "hi", PostDate: earlier}))
	assert.Equal(t, "TrackedComments", fake.table)

	_, ok := fake.items[0]["comment_id"].(*types.AttributeValueMemberS)
	assert.True(t, ok)

	got, err := tr.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].CommentID)
	assert.Equal(t, "p1", got[0].PostID)
	assert.True(t, earlier.Equal(got[0].PostDate))
	assert.Equal(t, "c2", got[1].CommentID)
}
