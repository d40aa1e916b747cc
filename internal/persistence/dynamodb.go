package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/opsmock/mockserver-go/internal/model"
)

const (
	dynamoPartitionValue = "mockserver"
	dynamoSortValue      = "expectations"
)

// DynamoDBBackend stores the expectation set as a single item's Value
// attribute, keyed by a fixed partition/sort pair, mirroring the
// StoreName/Key/Value item shape used elsewhere in this ecosystem for
// generic key-value persistence.
type DynamoDBBackend struct {
	ddb   *dynamodb.DynamoDB
	table string
}

// NewDynamoDBBackend builds a backend against table in region.
func NewDynamoDBBackend(table, region string) *DynamoDBBackend {
	sess := session.Must(session.NewSession(&aws.Config{Region: aws.String(region)}))
	return &DynamoDBBackend{ddb: dynamodb.New(sess), table: table}
}

func (b *DynamoDBBackend) Load() ([]*model.Expectation, error) {
	result, err := b.ddb.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(b.table),
		Key: map[string]*dynamodb.AttributeValue{
			"StoreName": {S: aws.String(dynamoPartitionValue)},
			"Key":       {S: aws.String(dynamoSortValue)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb get item: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var expectations []*model.Expectation
	if err := json.Unmarshal([]byte(*result.Item["Value"].S), &expectations); err != nil {
		return nil, fmt.Errorf("parse dynamodb item: %w", err)
	}
	return expectations, nil
}

func (b *DynamoDBBackend) Save(expectations []*model.Expectation) error {
	data, err := json.Marshal(expectations)
	if err != nil {
		return fmt.Errorf("marshal expectations: %w", err)
	}

	_, err = b.ddb.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(b.table),
		Item: map[string]*dynamodb.AttributeValue{
			"StoreName": {S: aws.String(dynamoPartitionValue)},
			"Key":       {S: aws.String(dynamoSortValue)},
			"Value":     {S: aws.String(string(data))},
		},
	})
	if err != nil {
		return fmt.Errorf("dynamodb put item: %w", err)
	}
	return nil
}
