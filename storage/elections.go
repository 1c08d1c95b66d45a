package storage

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/whyumesh/zonal-election-system/logging"
)

type ElectionStorage interface {
	Get(ctx context.Context, id string) (*Election, error)
	GetAll(ctx context.Context) ([]*Election, error)
	GetActiveByType(ctx context.Context, electionType string) (*Election, error)
	GetCurrentByType(ctx context.Context, electionType string) (*Election, error)
	Create(ctx context.Context, election *Election) error
	UpdateStatus(ctx context.Context, id, status string) error
	SetResultsDeclared(ctx context.Context, id string, declared bool) error
}

type DynamoElectionStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoElectionStorage) Get(ctx context.Context, id string) (*Election, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("ELECTION: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("ELECTION: GetItem failed: %v", err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var e *Election
	if err := attributevalue.UnmarshalMap(out.Item, &e); err != nil {
		logging.Log.Errorf("ELECTION: failed to unmarshal item: %v", err)
		return nil, err
	}
	return e, nil
}

func (s *DynamoElectionStorage) GetAll(ctx context.Context) ([]*Election, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	if err != nil {
		logging.Log.Errorf("ELECTION: scan failed: %v", err)
		return nil, err
	}

	var elections []*Election
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &elections); err != nil {
		logging.Log.Errorf("ELECTION: failed to unmarshal list: %v", err)
		return nil, err
	}
	return elections, nil
}

func (s *DynamoElectionStorage) GetActiveByType(ctx context.Context, electionType string) (*Election, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range all {
		if e.Type == electionType && e.Status == ElectionStatusActive {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

// GetCurrentByType prefers the ACTIVE election of a type and falls back to
// the most recently created CLOSED one, so tabulation keeps working after
// an election ends. DRAFT elections are never current.
func (s *DynamoElectionStorage) GetCurrentByType(ctx context.Context, electionType string) (*Election, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var latestClosed *Election
	for _, e := range all {
		if e.Type != electionType {
			continue
		}
		if e.Status == ElectionStatusActive {
			return e, nil
		}
		if e.Status == ElectionStatusClosed {
			if latestClosed == nil || e.CreatedAt.After(latestClosed.CreatedAt) {
				latestClosed = e
			}
		}
	}
	if latestClosed == nil {
		return nil, ErrNotFound
	}
	return latestClosed, nil
}

func (s *DynamoElectionStorage) Create(ctx context.Context, election *Election) error {
	if election.CreatedAt.IsZero() {
		election.CreatedAt = time.Now().UTC()
	}
	item, err := attributevalue.MarshalMap(election)
	if err != nil {
		logging.Log.Errorf("ELECTION: failed to marshal election: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if isConditionalFailure(err) {
			return ErrConflict
		}
		logging.Log.Errorf("ELECTION: failed to create election: %v", err)
		return err
	}
	return nil
}

func (s *DynamoElectionStorage) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          aws.String("SET #s = :val"),
		ExpressionAttributeNames:  map[string]string{"#s": "Status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":val": &types.AttributeValueMemberS{Value: status}},
		ConditionExpression:       aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionalFailure(err) {
			return ErrNotFound
		}
		logging.Log.Errorf("ELECTION: failed to update status for %s: %v", id, err)
		return err
	}
	return nil
}

func (s *DynamoElectionStorage) SetResultsDeclared(ctx context.Context, id string, declared bool) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          aws.String("SET ResultsDeclared = :val"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":val": &types.AttributeValueMemberBOOL{Value: declared}},
		ConditionExpression:       aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionalFailure(err) {
			return ErrNotFound
		}
		logging.Log.Errorf("ELECTION: failed to set results flag for %s: %v", id, err)
		return err
	}
	return nil
}
