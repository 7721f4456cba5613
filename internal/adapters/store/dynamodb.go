package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rippleeffect/charity-service/internal/config"
	"github.com/rippleeffect/charity-service/internal/domain"
	"github.com/rippleeffect/charity-service/internal/ports"
)

const maxCommitAttempts = 5

// DynamoDBAPI is the subset of *dynamodb.Client the store uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoDBStore keeps profiles and the directory in two tables. Writes use
// optimistic concurrency on the profile version and a conditional put on the
// directory key, retried on conflict.
type DynamoDBStore struct {
	client         DynamoDBAPI
	profilesTable  string
	charitiesTable string
	logger         zerolog.Logger
	now            func() time.Time
	backoff        time.Duration
}

func NewDynamoDBStore(ctx context.Context, cfg config.DynamoDBConfig, logger zerolog.Logger) (*DynamoDBStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	logger.Info().
		Str("region", cfg.Region).
		Str("profiles_table", cfg.ProfilesTable).
		Str("charities_table", cfg.CharitiesTable).
		Msg("dynamodb store ready")
	return NewDynamoDBStoreWithClient(client, cfg.ProfilesTable, cfg.CharitiesTable, logger), nil
}

func NewDynamoDBStoreWithClient(client DynamoDBAPI, profilesTable, charitiesTable string, logger zerolog.Logger) *DynamoDBStore {
	return &DynamoDBStore{
		client:         client,
		profilesTable:  profilesTable,
		charitiesTable: charitiesTable,
		logger:         logger,
		now:            time.Now,
		backoff:        20 * time.Millisecond,
	}
}

func (s *DynamoDBStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.profilesTable)})
	return err
}

func (s *DynamoDBStore) Close() error { return nil }

// profileItem is the stored shape of a profile. Amounts are strings because
// attributevalue has no decimal support.
type profileItem struct {
	UserID            string                 `dynamodbav:"user_id"`
	City              string                 `dynamodbav:"city"`
	State             string                 `dynamodbav:"state"`
	Country           string                 `dynamodbav:"country"`
	ReachOutLocally   bool                   `dynamodbav:"reach_out_locally"`
	Interests         []string               `dynamodbav:"interests"`
	Balances          map[string]balanceItem `dynamodbav:"balances"`
	DonationCount     int                    `dynamodbav:"donation_count"`
	TotalDonated      string                 `dynamodbav:"total_donated"`
	CompletedSessions []string               `dynamodbav:"completed_sessions"`
	Version           int64                  `dynamodbav:"version"`
	UpdatedAt         time.Time              `dynamodbav:"updated_at"`
}

type balanceItem struct {
	Destination string `dynamodbav:"destination"`
	Amount      string `dynamodbav:"amount"`
}

func toProfileItem(p *domain.UserProfile) profileItem {
	it := profileItem{
		UserID:            p.UserID,
		City:              p.City,
		State:             p.State,
		Country:           p.Country,
		ReachOutLocally:   p.ReachOutLocally,
		Interests:         append([]string{}, p.Interests...),
		Balances:          make(map[string]balanceItem, len(p.Balances)),
		DonationCount:     p.DonationCount,
		TotalDonated:      p.TotalDonated.String(),
		CompletedSessions: append([]string{}, p.CompletedSessions...),
		Version:           p.Version,
		UpdatedAt:         p.UpdatedAt,
	}
	for k, b := range p.Balances {
		it.Balances[k] = balanceItem{Destination: b.Destination, Amount: b.Amount.String()}
	}
	return it
}

func fromProfileItem(it profileItem) (*domain.UserProfile, error) {
	p := domain.NewUserProfile(it.UserID)
	p.City, p.State, p.Country = it.City, it.State, it.Country
	p.ReachOutLocally = it.ReachOutLocally
	if it.Interests != nil {
		p.Interests = it.Interests
	}
	p.DonationCount = it.DonationCount
	p.CompletedSessions = it.CompletedSessions
	p.Version = it.Version
	p.UpdatedAt = it.UpdatedAt

	total, err := parseAmount(it.TotalDonated)
	if err != nil {
		return nil, fmt.Errorf("total_donated: %w", err)
	}
	p.TotalDonated = total
	for k, b := range it.Balances {
		amt, err := parseAmount(b.Amount)
		if err != nil {
			return nil, fmt.Errorf("balance %s: %w", k, err)
		}
		p.Balances[k] = domain.Balance{Destination: b.Destination, Amount: amt}
	}
	return p, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func (s *DynamoDBStore) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	p, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *DynamoDBStore) UpdateProfile(ctx context.Context, userID string, fn ports.ProfileUpdate) (*domain.UserProfile, error) {
	var out *domain.UserProfile
	err := s.retry(ctx, userID, func() error {
		p, err := s.loadProfile(ctx, userID)
		if err != nil {
			return err
		}
		if p == nil {
			p = domain.NewUserProfile(userID)
		}
		if err := fn(p); err != nil {
			return err
		}
		put, err := s.profilePut(p)
		if err != nil {
			return err
		}
		if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                 put.TableName,
			Item:                      put.Item,
			ConditionExpression:       put.ConditionExpression,
			ExpressionAttributeNames:  put.ExpressionAttributeNames,
			ExpressionAttributeValues: put.ExpressionAttributeValues,
		}); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

func (s *DynamoDBStore) FindCharity(ctx context.Context, key string) (*domain.CharityRecord, error) {
	c, err := s.loadCharity(ctx, key)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *DynamoDBStore) ListCharities(ctx context.Context) ([]domain.CharityRecord, error) {
	out := []domain.CharityRecord{}
	var lastKey map[string]dynamodbtypes.AttributeValue
	for {
		res, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.charitiesTable),
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan charities: %w", err)
		}
		var page []domain.CharityRecord
		if err := attributevalue.UnmarshalListOfMaps(res.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal charities: %w", err)
		}
		out = append(out, page...)
		if len(res.LastEvaluatedKey) == 0 {
			break
		}
		lastKey = res.LastEvaluatedKey
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *DynamoDBStore) CommitInterest(ctx context.Context, userID, key string, fn ports.InterestCommit) (*domain.CharityRecord, *domain.UserProfile, error) {
	var (
		rec     *domain.CharityRecord
		profile *domain.UserProfile
	)
	err := s.retry(ctx, userID, func() error {
		p, err := s.loadProfile(ctx, userID)
		if err != nil {
			return err
		}
		if p == nil {
			p = domain.NewUserProfile(userID)
		}
		existing, err := s.loadCharity(ctx, key)
		if err != nil {
			return err
		}

		r, err := fn(p, existing)
		if err != nil {
			return err
		}

		var items []dynamodbtypes.TransactWriteItem
		if existing == nil && r != nil {
			r.Key = key
			item, err := attributevalue.MarshalMap(r)
			if err != nil {
				return fmt.Errorf("failed to marshal charity: %w", err)
			}
			items = append(items, dynamodbtypes.TransactWriteItem{Put: &dynamodbtypes.Put{
				TableName:                aws.String(s.charitiesTable),
				Item:                     item,
				ConditionExpression:      aws.String("attribute_not_exists(#k)"),
				ExpressionAttributeNames: map[string]string{"#k": "key"},
			}})
		}
		put, err := s.profilePut(p)
		if err != nil {
			return err
		}
		items = append(items, dynamodbtypes.TransactWriteItem{Put: put})

		if _, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
			return err
		}
		rec, profile = r, p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return rec, profile, nil
}

// profilePut bumps the profile version and builds a put guarded by the
// version that was read.
func (s *DynamoDBStore) profilePut(p *domain.UserProfile) (*dynamodbtypes.Put, error) {
	readVersion := p.Version
	p.Version++
	p.UpdatedAt = s.now().UTC()

	item, err := attributevalue.MarshalMap(toProfileItem(p))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}
	put := &dynamodbtypes.Put{
		TableName: aws.String(s.profilesTable),
		Item:      item,
	}
	if readVersion == 0 {
		put.ConditionExpression = aws.String("attribute_not_exists(user_id)")
		return put, nil
	}
	put.ConditionExpression = aws.String("#v = :v")
	put.ExpressionAttributeNames = map[string]string{"#v": "version"}
	put.ExpressionAttributeValues = map[string]dynamodbtypes.AttributeValue{
		":v": &dynamodbtypes.AttributeValueMemberN{Value: fmt.Sprint(readVersion)},
	}
	return put, nil
}

// retry reruns op while DynamoDB reports a lost race, up to
// maxCommitAttempts, then gives up with ErrConflict.
func (s *DynamoDBStore) retry(ctx context.Context, userID string, op func() error) error {
	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil || !isConflict(err) {
			return err
		}
		if attempt >= maxCommitAttempts {
			s.logger.Warn().Str("user_id", userID).Int("attempts", attempt).Msg("giving up after write conflicts")
			return fmt.Errorf("%w: %w", domain.ErrConflict, err)
		}
		s.logger.Debug().Str("user_id", userID).Int("attempt", attempt).Msg("write conflict, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * s.backoff):
		}
	}
}

func isConflict(err error) bool {
	var canceled *dynamodbtypes.TransactionCanceledException
	var condFailed *dynamodbtypes.ConditionalCheckFailedException
	return errors.As(err, &canceled) || errors.As(err, &condFailed)
}

func (s *DynamoDBStore) loadProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	res, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.profilesTable),
		Key:            map[string]dynamodbtypes.AttributeValue{"user_id": &dynamodbtypes.AttributeValueMemberS{Value: userID}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", userID, err)
	}
	if len(res.Item) == 0 {
		return nil, nil
	}
	var it profileItem
	if err := attributevalue.UnmarshalMap(res.Item, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile %s: %w", userID, err)
	}
	return fromProfileItem(it)
}

func (s *DynamoDBStore) loadCharity(ctx context.Context, key string) (*domain.CharityRecord, error) {
	res, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.charitiesTable),
		Key:            map[string]dynamodbtypes.AttributeValue{"key": &dynamodbtypes.AttributeValueMemberS{Value: key}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get charity %s: %w", key, err)
	}
	if len(res.Item) == 0 {
		return nil, nil
	}
	var c domain.CharityRecord
	if err := attributevalue.UnmarshalMap(res.Item, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal charity %s: %w", key, err)
	}
	return &c, nil
}
