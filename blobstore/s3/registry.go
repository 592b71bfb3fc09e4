package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrConcurrentModification is returned when another writer committed a
// snapshot version first. The caller should re-read the latest version
// and retry.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// ErrNoVersions is returned when a model has no committed snapshot.
var ErrNoVersions = errors.New("no committed snapshot versions")

// DDBClient is the subset of the DynamoDB API the registry uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Registry tracks the current snapshot version of each model in a
// DynamoDB table. Snapshot blobs in S3 are immutable and content-named;
// the registry provides the mutable "which one is live" pointer with
// atomic compare-and-swap semantics.
//
// Table schema:
//   - Partition key: model (string) - the model's logical name
//   - Sort key: version (number) - monotonically increasing version
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name numflat-models \
//	  --attribute-definitions AttributeName=model,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=model,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type Registry struct {
	client    DDBClient
	tableName string
}

// NewRegistry creates a registry backed by the given DynamoDB table.
func NewRegistry(client DDBClient, tableName string) *Registry {
	return &Registry{client: client, tableName: tableName}
}

// Version is one committed snapshot version of a model.
type Version struct {
	Model   string
	Version uint64
	// BlobName is the snapshot's name in the blob store.
	BlobName string
}

// Latest returns the most recently committed version of model.
func (r *Registry) Latest(ctx context.Context, model string) (Version, error) {
	resp, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("model = :m"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":m": &types.AttributeValueMemberS{Value: model},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return Version{}, fmt.Errorf("query latest version: %w", err)
	}
	if len(resp.Items) == 0 {
		return Version{}, ErrNoVersions
	}
	return decodeVersion(model, resp.Items[0])
}

// Commit registers blobName as the next version of model. The write is
// conditional: if another writer committed the same version first,
// Commit returns ErrConcurrentModification.
func (r *Registry) Commit(ctx context.Context, model, blobName string) (Version, error) {
	var current uint64
	latest, err := r.Latest(ctx, model)
	switch {
	case err == nil:
		current = latest.Version
	case errors.Is(err, ErrNoVersions):
	default:
		return Version{}, err
	}

	next := Version{Model: model, Version: current + 1, BlobName: blobName}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"model":     &types.AttributeValueMemberS{Value: model},
			"version":   &types.AttributeValueMemberN{Value: strconv.FormatUint(next.Version, 10)},
			"blob_name": &types.AttributeValueMemberS{Value: blobName},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return Version{}, ErrConcurrentModification
		}
		return Version{}, fmt.Errorf("commit version: %w", err)
	}
	return next, nil
}

// Prune deletes all committed versions of model older than keep.
func (r *Registry) Prune(ctx context.Context, model string, keep uint64) error {
	resp, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("model = :m AND version < :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":m": &types.AttributeValueMemberS{Value: model},
			":v": &types.AttributeValueMemberN{Value: strconv.FormatUint(keep, 10)},
		},
	})
	if err != nil {
		return err
	}
	for _, item := range resp.Items {
		v, err := decodeVersion(model, item)
		if err != nil {
			return err
		}
		_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"model":   &types.AttributeValueMemberS{Value: model},
				"version": &types.AttributeValueMemberN{Value: strconv.FormatUint(v.Version, 10)},
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func decodeVersion(model string, item map[string]types.AttributeValue) (Version, error) {
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return Version{}, errors.New("invalid version attribute")
	}
	blobAttr, ok := item["blob_name"].(*types.AttributeValueMemberS)
	if !ok {
		return Version{}, errors.New("invalid blob_name attribute")
	}
	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return Version{}, fmt.Errorf("parse version: %w", err)
	}
	return Version{Model: model, Version: version, BlobName: blobAttr.Value}, nil
}
