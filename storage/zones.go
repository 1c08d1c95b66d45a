package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/whyumesh/zonal-election-system/logging"
)

type ZoneStorage interface {
	Get(ctx context.Context, id string) (*Zone, error)
	GetAll(ctx context.Context) ([]*Zone, error)
	GetByType(ctx context.Context, electionType string) ([]*Zone, error)
	Create(ctx context.Context, zone *Zone) error
	Update(ctx context.Context, zone *Zone) error
	Delete(ctx context.Context, id string) error
}

type DynamoZoneStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoZoneStorage) Get(ctx context.Context, id string) (*Zone, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("ZONE: failed to marshal key for %s: %v", id, err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("ZONE: GetItem for %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var zone *Zone
	if err := attributevalue.UnmarshalMap(out.Item, &zone); err != nil {
		logging.Log.Errorf("ZONE: failed to unmarshal item: %v", err)
		return nil, err
	}
	return zone, nil
}

func (s *DynamoZoneStorage) GetAll(ctx context.Context) ([]*Zone, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	if err != nil {
		logging.Log.Errorf("ZONE: scan failed: %v", err)
		return nil, err
	}

	var zones []*Zone
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &zones); err != nil {
		logging.Log.Errorf("ZONE: failed to unmarshal zone list: %v", err)
		return nil, err
	}
	return zones, nil
}

func (s *DynamoZoneStorage) GetByType(ctx context.Context, electionType string) ([]*Zone, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	zones := make([]*Zone, 0)
	for _, z := range all {
		if z.ElectionType == electionType {
			zones = append(zones, z)
		}
	}
	return zones, nil
}

func (s *DynamoZoneStorage) Create(ctx context.Context, zone *Zone) error {
	item, err := attributevalue.MarshalMap(zone)
	if err != nil {
		logging.Log.Errorf("ZONE: failed to marshal zone: %v", err)
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
		logging.Log.Errorf("ZONE: failed to create zone: %v", err)
		return err
	}
	return nil
}

func (s *DynamoZoneStorage) Update(ctx context.Context, zone *Zone) error {
	item, err := attributevalue.MarshalMap(zone)
	if err != nil {
		logging.Log.Errorf("ZONE: failed to marshal zone: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionalFailure(err) {
			return ErrNotFound
		}
		logging.Log.Errorf("ZONE: failed to update zone %s: %v", zone.ID, err)
		return err
	}
	return nil
}

func (s *DynamoZoneStorage) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("ZONE: failed to marshal key for %s: %v", id, err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("ZONE: failed to delete zone %s: %v", id, err)
		return err
	}
	return nil
}
