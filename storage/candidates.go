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

type CandidateStorage interface {
	Get(ctx context.Context, id string) (*Candidate, error)
	GetAll(ctx context.Context) ([]*Candidate, error)
	GetByZone(ctx context.Context, zoneID string) ([]*Candidate, error)
	Create(ctx context.Context, candidate *Candidate) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type DynamoCandidateStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoCandidateStorage) Get(ctx context.Context, id string) (*Candidate, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to marshal key for %s: %v", id, err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("CANDIDATE: GetItem for %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var c *Candidate
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		logging.Log.Errorf("CANDIDATE: failed to unmarshal item: %v", err)
		return nil, err
	}
	return c, nil
}

func (s *DynamoCandidateStorage) GetAll(ctx context.Context) ([]*Candidate, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	if err != nil {
		logging.Log.Errorf("CANDIDATE: scan failed: %v", err)
		return nil, err
	}

	var candidates []*Candidate
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &candidates); err != nil {
		logging.Log.Errorf("CANDIDATE: failed to unmarshal candidate list: %v", err)
		return nil, err
	}
	return candidates, nil
}

func (s *DynamoCandidateStorage) GetByZone(ctx context.Context, zoneID string) ([]*Candidate, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]*Candidate, 0)
	for _, c := range all {
		if c.ZoneID == zoneID {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

func (s *DynamoCandidateStorage) Create(ctx context.Context, candidate *Candidate) error {
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = time.Now().UTC()
	}
	item, err := attributevalue.MarshalMap(candidate)
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to marshal candidate: %v", err)
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
		logging.Log.Errorf("CANDIDATE: failed to create candidate: %v", err)
		return err
	}
	return nil
}

func (s *DynamoCandidateStorage) UpdateStatus(ctx context.Context, id, status string) error {
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
		logging.Log.Errorf("CANDIDATE: failed to update status for %s: %v", id, err)
		return err
	}
	return nil
}

func (s *DynamoCandidateStorage) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to marshal key for %s: %v", id, err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to delete candidate %s: %v", id, err)
		return err
	}
	return nil
}
