package db

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/spacesedan/replybot/internal/models"
)

// DynamoAPI is the part of the DynamoDB client the tracker uses.
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoTracker keeps tracked comments in a DynamoDB table keyed by
// comment_id.
type DynamoTracker struct {
	client DynamoAPI
	table  string
}

func NewDynamoTracker(client DynamoAPI, table string) *DynamoTracker {
	return &DynamoTracker{client: client, table: table}
}

func (d *DynamoTracker) Append(ctx context.Context, c models.TrackedComment) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to marshal comment %s: %w", c.CommentID, err)
	}

	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("[DynamoDB] Failed to put comment %s: %w", c.CommentID, err)
	}

	slog.Info("[DynamoDB] Comment saved for future analysis",
		slog.String("comment_id", c.CommentID),
		slog.String("table", d.table))
	return nil
}

// List scans the whole table and returns comments oldest first.
func (d *DynamoTracker) List(ctx context.Context) ([]models.TrackedComment, error) {
	var comments []models.TrackedComment

	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{
		TableName: aws.String(d.table),
	})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Scan for tracked comments failed: %w", err)
		}

		var page []models.TrackedComment
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("[DynamoDB] Failed to unmarshal tracked comments: %w", err)
		}
		comments = append(comments, page...)
	}

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].PostDate.Before(comments[j].PostDate)
	})
	return comments, nil
}
