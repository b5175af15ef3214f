package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sicko7947/gorkrepair"
)

// DynamoDBStore implements gorkrepair.ExecutionStore using AWS DynamoDB
type DynamoDBStore struct {
	client    DynamoDBClient
	tableName string
}

// NewDynamoDBStore creates a new DynamoDB-backed execution store
func NewDynamoDBStore(client DynamoDBClient, tableName string) gorkrepair.ExecutionStore {
	return &DynamoDBStore{
		client:    client,
		tableName: tableName,
	}
}

// GetWorkflow loads the workflow item, and its task items when includeTasks is set.
// All reads are strongly consistent. With tasks, the partition is read by a
// paginated Query; each page is consistent on its own, but a workflow spanning
// several pages may see writes land between them.
func (s *DynamoDBStore) GetWorkflow(ctx context.Context, workflowID string, includeTasks bool) (*gorkrepair.Workflow, error) {
	if !includeTasks {
		return s.getWorkflowMeta(ctx, workflowID)
	}

	var wf *gorkrepair.Workflow
	var tasks []*gorkrepair.Task
	var lastEvaluatedKey map[string]types.AttributeValue

	// Paginate through all results
	for {
		queryInput := &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: workflowPK(workflowID)},
			},
			ConsistentRead: aws.Bool(true),
		}

		if lastEvaluatedKey != nil {
			queryInput.ExclusiveStartKey = lastEvaluatedKey
		}

		result, err := s.client.Query(ctx, queryInput)
		if err != nil {
			return nil, fmt.Errorf("failed to query workflow %s: %w", workflowID, err)
		}

		for _, item := range result.Items {
			switch entityType(item) {
			case EntityTypeWorkflow:
				var w gorkrepair.Workflow
				if err := attributevalue.UnmarshalMap(item, &w); err != nil {
					return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
				}
				wf = &w
			case EntityTypeTask:
				var task gorkrepair.Task
				if err := attributevalue.UnmarshalMap(item, &task); err != nil {
					return nil, fmt.Errorf("failed to unmarshal task: %w", err)
				}
				tasks = append(tasks, &task)
			}
		}

		// Check if there are more results
		if result.LastEvaluatedKey == nil {
			break
		}
		lastEvaluatedKey = result.LastEvaluatedKey
	}

	if wf == nil {
		return nil, fmt.Errorf("workflow %s: %w", workflowID, gorkrepair.ErrWorkflowNotFound)
	}

	// Stored order
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Seq < tasks[j].Seq })
	wf.Tasks = tasks

	return wf, nil
}

func (s *DynamoDBStore) getWorkflowMeta(ctx context.Context, workflowID string) (*gorkrepair.Workflow, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			AttrPK: &types.AttributeValueMemberS{Value: workflowPK(workflowID)},
			AttrSK: &types.AttributeValueMemberS{Value: workflowSK()},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow %s: %w", workflowID, err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("workflow %s: %w", workflowID, gorkrepair.ErrWorkflowNotFound)
	}

	var wf gorkrepair.Workflow
	if err := attributevalue.UnmarshalMap(result.Item, &wf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}

	return &wf, nil
}

func entityType(item map[string]types.AttributeValue) string {
	attr, ok := item[AttrEntityType].(*types.AttributeValueMemberS)
	if !ok {
		return ""
	}
	return attr.Value
}

// WorkflowItem builds the table item for a workflow, keys included.
// Used by tooling and tests that seed the table.
func WorkflowItem(wf *gorkrepair.Workflow) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(wf)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow: %w", err)
	}

	item[AttrPK] = &types.AttributeValueMemberS{Value: workflowPK(wf.ID)}
	item[AttrSK] = &types.AttributeValueMemberS{Value: workflowSK()}
	item[AttrEntityType] = &types.AttributeValueMemberS{Value: EntityTypeWorkflow}

	return item, nil
}

// TaskItem builds the table item for a task, keys included
func TaskItem(task *gorkrepair.Task) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}

	item[AttrPK] = &types.AttributeValueMemberS{Value: workflowPK(task.WorkflowInstanceID)}
	item[AttrSK] = &types.AttributeValueMemberS{Value: taskSK(task.Seq, task.ID)}
	item[AttrEntityType] = &types.AttributeValueMemberS{Value: EntityTypeTask}

	return item, nil
}
