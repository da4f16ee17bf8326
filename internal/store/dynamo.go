package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/metrics"
	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/models"
)

// DynamoStore reads the child task table, partitioned by Due_Date.
type DynamoStore struct {
	db        dynamodb.QueryAPIClient
	tableName string
	logger    *zap.Logger
}

// NewDynamoStore builds a store on a real DynamoDB client. endpoint is
// optional and points the client at DynamoDB Local.
func NewDynamoStore(cfg aws.Config, tableName, endpoint string, logger *zap.Logger) *DynamoStore {
	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewDynamoStoreWithClient(client, tableName, logger)
}

func NewDynamoStoreWithClient(db dynamodb.QueryAPIClient, tableName string, logger *zap.Logger) *DynamoStore {
	return &DynamoStore{db: db, tableName: tableName, logger: logger.Named("store")}
}

// OpenTasks returns the tasks due on dueDate (YYYYMMDD) that are neither
// completed nor retired, in the order the table yields them. Rows with an
// unreadable or out-of-range Due_Time are skipped.
func (s *DynamoStore) OpenTasks(ctx context.Context, dueDate string) ([]models.Task, error) {
	p := dynamodb.NewQueryPaginator(s.db, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("#dd = :today"),

		// Only pull tasks still to be done
		FilterExpression: aws.String("#c = :zero AND #a = :one"),
		ExpressionAttributeNames: map[string]string{
			"#dd": "Due_Date",
			"#c":  "Completed",
			"#a":  "Active",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":today": &types.AttributeValueMemberS{Value: dueDate},
			":zero":  &types.AttributeValueMemberN{Value: "0"},
			":one":   &types.AttributeValueMemberN{Value: "1"},
		},
	})

	tasks := []models.Task{}
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query %s for %s: %w", s.tableName, dueDate, err)
		}
		for _, item := range out.Items {
			t, ok := s.decode(item)
			if !ok {
				continue
			}
			// The filter is pushed down, but keep the contract even if the
			// table is swapped for one that ignores it.
			if t.DueDate != dueDate || !t.IsOpen() {
				continue
			}
			tasks = append(tasks, t)
		}
	}

	return tasks, nil
}

func (s *DynamoStore) decode(item map[string]types.AttributeValue) (models.Task, bool) {
	var t models.Task

	if _, ok := item["Due_Time"]; !ok {
		s.skip(item, "missing Due_Time", nil)
		return t, false
	}
	if err := attributevalue.UnmarshalMap(item, &t); err != nil {
		s.skip(item, "undecodable row", err)
		return t, false
	}
	if !t.DueTime.Valid() {
		s.skip(item, "Due_Time out of range", nil)
		return t, false
	}
	return t, true
}

func (s *DynamoStore) skip(item map[string]types.AttributeValue, reason string, err error) {
	metrics.RecordMalformedRow()

	fields := []zap.Field{zap.String("reason", reason)}
	if v, ok := item["Machine_Name"].(*types.AttributeValueMemberS); ok {
		fields = append(fields, zap.String("machine", v.Value))
	}
	if v, ok := item["Task_Name"].(*types.AttributeValueMemberS); ok {
		fields = append(fields, zap.String("task", v.Value))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	s.logger.Warn("skipping malformed task row", fields...)
}
