package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/carehome-actionplans/internal/config"
)

// tableCreator is the subset of the DynamoDB client Bootstrap needs.
type tableCreator interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Bootstrap creates every category partition table and its GSIs if missing.
// Safe to call on every startup; skips tables that already exist.
func Bootstrap(ctx context.Context, client tableCreator, tables config.DynamoTables) {
	for _, name := range []string{
		tables.ResidentActionPlans,
		tables.CareFileActionPlans,
		tables.GovernanceActionPlans,
		tables.ClinicalActionPlans,
		tables.EnvironmentActionPlans,
	} {
		createTable(ctx, client, actionPlanTable(name))
	}
}

// actionPlanTable is the schema shared by all category partitions.
func actionPlanTable(name string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName:   aws.String(name),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(fieldID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(fieldAssignedTo), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(fieldCreatedBy), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(fieldCreatedAt), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(fieldID), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexAssignedTo, fieldAssignedTo, fieldCreatedAt),
			gsi(indexCreatedBy, fieldCreatedBy, fieldCreatedAt),
		},
	}
}

// gsi builds a GSI descriptor. If sortKey is empty, only a hash key is added.
func gsi(indexName, hashKey, sortKey string) types.GlobalSecondaryIndex {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
	}
	if sortKey != "" {
		ks = append(ks, types.KeySchemaElement{
			AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange,
		})
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(indexName),
		KeySchema:  ks,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

func createTable(ctx context.Context, client tableCreator, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		// ResourceInUseException means the table already exists.
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			slog.Warn("could not create table", "table", *input.TableName, "err", err)
		}
		return
	}
	slog.Info("created table", "table", *input.TableName)
}
