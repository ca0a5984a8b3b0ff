package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/sharipovr/aws-url-shortener/internal/domain"
	"github.com/sharipovr/aws-url-shortener/internal/repository"
)

const (
	attrShortCode   = "short_code"
	attrOriginalURL = "original_url"
	attrCreatedAt   = "created_at"
	attrClickCount  = "click_count"
)

// API is the subset of the DynamoDB client used by Store
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Options configures the AWS client
type Options struct {
	Region   string
	Endpoint string // optional, e.g. DynamoDB Local
}

// Store implements repository.LinkStore on a DynamoDB table whose
// partition key is short_code.
type Store struct {
	client API
	table  string
}

// New creates a store on top of an existing client
func New(client API, table string) (*Store, error) {
	if table == "" {
		return nil, fmt.Errorf("table name cannot be empty")
	}
	if client == nil {
		return nil, fmt.Errorf("dynamodb client cannot be nil")
	}

	return &Store{client: client, table: table}, nil
}

// NewFromConfig loads the default AWS configuration and creates a store
func NewFromConfig(ctx context.Context, opts Options, table string) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return New(client, table)
}

// Put creates a new link unless the short code is taken
func (s *Store) Put(ctx context.Context, shortCode, originalURL string, createdAt time.Time) (*domain.Link, error) {
	createdAt = createdAt.UTC()

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			attrShortCode:   &types.AttributeValueMemberS{Value: shortCode},
			attrOriginalURL: &types.AttributeValueMemberS{Value: originalURL},
			attrCreatedAt:   &types.AttributeValueMemberS{Value: createdAt.Format(time.RFC3339Nano)},
			attrClickCount:  &types.AttributeValueMemberN{Value: "0"},
		},
		ConditionExpression: aws.String("attribute_not_exists(short_code)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil, repository.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	return &domain.Link{
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   createdAt,
	}, nil
}

// Get retrieves a link by its short code using a consistent read
func (s *Store) Get(ctx context.Context, shortCode string) (*domain.Link, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            keyOf(shortCode),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	if out.Item == nil {
		return nil, repository.ErrNotFound
	}

	link, err := linkFromItem(out.Item)
	if err != nil {
		return nil, fmt.Errorf("failed to decode link %s: %w", shortCode, err)
	}

	return link, nil
}

// IncrementClicks adds delta to the click count with an atomic ADD update
func (s *Store) IncrementClicks(ctx context.Context, shortCode string, delta int64) error {
	if delta < 1 {
		return repository.ErrInvalidDelta
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.table),
		Key:                 keyOf(shortCode),
		UpdateExpression:    aws.String("ADD click_count :inc"),
		ConditionExpression: aws.String("attribute_exists(short_code)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inc": &types.AttributeValueMemberN{Value: strconv.FormatInt(delta, 10)},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to increment clicks: %w", err)
	}

	return nil
}

// Close is a no-op; the AWS client holds no resources that need releasing
func (s *Store) Close() error {
	return nil
}

func keyOf(shortCode string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrShortCode: &types.AttributeValueMemberS{Value: shortCode},
	}
}

func linkFromItem(item map[string]types.AttributeValue) (*domain.Link, error) {
	shortCode, err := stringAttr(item, attrShortCode)
	if err != nil {
		return nil, err
	}
	originalURL, err := stringAttr(item, attrOriginalURL)
	if err != nil {
		return nil, err
	}
	rawCreatedAt, err := stringAttr(item, attrCreatedAt)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, rawCreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", attrCreatedAt, err)
	}

	// Items written before any click may lack the attribute
	var clickCount int64
	if av, ok := item[attrClickCount]; ok {
		n, ok := av.(*types.AttributeValueMemberN)
		if !ok {
			return nil, fmt.Errorf("attribute %s is not a number", attrClickCount)
		}
		clickCount, err = strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", attrClickCount, err)
		}
	}

	return &domain.Link{
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   createdAt,
		ClickCount:  clickCount,
	}, nil
}

func stringAttr(item map[string]types.AttributeValue, name string) (string, error) {
	av, ok := item[name]
	if !ok {
		return "", fmt.Errorf("missing attribute %s", name)
	}
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("attribute %s is not a string", name)
	}
	return s.Value, nil
}

// Ensure Store implements the interface
var _ repository.LinkStore = (*Store)(nil)
