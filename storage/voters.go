package storage

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/whyumesh/zonal-election-system/logging"
)

type VoterStorage interface {
	Get(ctx context.Context, id string) (*Voter, error)
	GetAll(ctx context.Context) ([]*Voter, error)
	Create(ctx context.Context, voter *Voter) error
	Delete(ctx context.Context, id string) error
}

type DynamoVoterStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoVoterStorage) Get(ctx context.Context, id string) (*Voter, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("VOTER: failed to marshal key for %s: %v", id, err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("VOTER: GetItem for %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var v *Voter
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		logging.Log.Errorf("VOTER: failed to unmarshal item: %v", err)
		return nil, err
	}
	return v, nil
}

func (s *DynamoVoterStorage) GetAll(ctx context.Context) ([]*Voter, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	if err != nil {
		logging.Log.Errorf("VOTER: scan failed: %v", err)
		return nil, err
	}

	var voters []*Voter
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &voters); err != nil {
		logging.Log.Errorf("VOTER: failed to unmarshal voter list: %v", err)
		return nil, err
	}
	return voters, nil
}

func (s *DynamoVoterStorage) Create(ctx context.Context, voter *Voter) error {
	if voter.CreatedAt.IsZero() {
		voter.CreatedAt = time.Now().UTC()
	}
	// The flag maps must exist as (empty) maps for the document-path
	// updates in the ballot commit transactions to succeed.
	if voter.VotedAt == nil {
		voter.VotedAt = map[string]time.Time{}
	}
	if voter.OfflineAt == nil {
		voter.OfflineAt = map[string]time.Time{}
	}

	item, err := attributevalue.MarshalMap(voter)
	if err != nil {
		logging.Log.Errorf("VOTER: failed to marshal voter: %v", err)
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
		logging.Log.Errorf("VOTER: failed to create voter: %v", err)
		return err
	}
	return nil
}

func (s *DynamoVoterStorage) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("VOTER: failed to marshal key for %s: %v", id, err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("VOTER: failed to delete voter %s: %v", id, err)
		return err
	}
	return nil
}
