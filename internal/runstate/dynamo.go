package runstate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// dynamoAPI is the subset of the DynamoDB client the store uses.
type dynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// stateItem is the DynamoDB row: the state as JSON under a fixed key.
type stateItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Data      string `dynamodbav:"Data"`
	Timestamp string `dynamodbav:"Timestamp"`
}

const stateSK = "STATE"

// DynamoStore keeps the state in a DynamoDB table keyed by PK/SK.
type DynamoStore struct {
	client dynamoAPI
	table  string
	pk     string
}

// NewDynamoStore accepts a *dynamodb.Client or any value with the same
// item methods.
func NewDynamoStore(client dynamoAPI, table, key string) *DynamoStore {
	return &DynamoStore{client: client, table: table, pk: "ROSTER#" + key}
}

func (s *DynamoStore) itemKey() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: s.pk},
		"SK": &types.AttributeValueMemberS{Value: stateSK},
	}
}

func (s *DynamoStore) Load(ctx context.Context) (State, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.itemKey(),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return State{}, fmt.Errorf("getting run state from DynamoDB: %w", err)
	}
	if len(out.Item) == 0 {
		return State{}, nil
	}

	var item stateItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return State{}, fmt.Errorf("unmarshaling item: %w", err)
	}
	var st State
	if err := json.Unmarshal([]byte(item.Data), &st); err != nil {
		return State{}, fmt.Errorf("decoding run state: %w", err)
	}
	return st, nil
}

func (s *DynamoStore) Save(ctx context.Context, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	av, err := attributevalue.MarshalMap(stateItem{
		PK:        s.pk,
		SK:        stateSK,
		Data:      string(data),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshaling item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting run state to DynamoDB: %w", err)
	}
	return nil
}

func (s *DynamoStore) Clear(ctx context.Context) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.itemKey(),
	})
	if err != nil {
		return fmt.Errorf("deleting run state from DynamoDB: %w", err)
	}
	return nil
}
