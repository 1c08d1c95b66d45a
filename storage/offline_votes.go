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

type OfflineVoteStorage interface {
	// CommitBallot persists an admin-captured set of rows and flips the
	// voter's offline flag in a single transaction. Returns ErrConflict
	// when the voter already balloted through either channel.
	CommitBallot(ctx context.Context, votes []*OfflineVote) error
	GetByVoterElection(ctx context.Context, voterID, electionID string) ([]*OfflineVote, error)
	GetByElection(ctx context.Context, electionID string) ([]*OfflineVote, error)
	// Delete removes a voter's offline set and clears the offline flag so
	// a corrected entry can be captured again.
	Delete(ctx context.Context, voterID, electionID string) error
	MarkMerged(ctx context.Context, voterID, electionID string, mergedAt time.Time) error
}

type DynamoOfflineVoteStorage struct {
	Client         *dynamodb.Client
	TableName      string
	VoterTableName string
}

func (s *DynamoOfflineVoteStorage) CommitBallot(ctx context.Context, votes []*OfflineVote) error {
	if len(votes) == 0 {
		return nil
	}
	voterID := votes[0].VoterID
	electionID := votes[0].ElectionID

	items := make([]types.TransactWriteItem, 0, len(votes)+1)
	for _, vote := range votes {
		item, err := attributevalue.MarshalMap(vote)
		if err != nil {
			logging.Log.Errorf("OFFLINE: failed to marshal entry: %v", err)
			return err
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.TableName),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			},
		})
	}

	items = append(items, types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(s.VoterTableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: voterID},
			},
			UpdateExpression: aws.String("SET OfflineAt.#e = :ts"),
			ConditionExpression: aws.String(
				"attribute_exists(PK) AND attribute_not_exists(OfflineAt.#e) AND attribute_not_exists(VotedAt.#e)"),
			ExpressionAttributeNames: map[string]string{"#e": electionID},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":ts": &types.AttributeValueMemberS{Value: votes[0].EnteredAt.Format(time.RFC3339Nano)},
			},
		},
	})

	_, err := s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		if isConditionalFailure(err) {
			return ErrConflict
		}
		logging.Log.Errorf("OFFLINE: ballot transaction failed for %s: %v", voterID, err)
		return err
	}
	return nil
}

func (s *DynamoOfflineVoteStorage) GetByVoterElection(ctx context.Context, voterID, electionID string) ([]*OfflineVote, error) {
	out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.TableName,
		KeyConditionExpression: aws.String("PK = :key"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":key": &types.AttributeValueMemberS{Value: BallotKey(voterID, electionID)},
		},
	})
	if err != nil {
		logging.Log.Errorf("OFFLINE: failed to query entries for %s: %v", voterID, err)
		return nil, err
	}

	var votes []*OfflineVote
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &votes); err != nil {
		logging.Log.Errorf("OFFLINE: failed to unmarshal entries for %s: %v", voterID, err)
		return nil, err
	}
	return votes, nil
}

func (s *DynamoOfflineVoteStorage) GetByElection(ctx context.Context, electionID string) ([]*OfflineVote, error) {
	var votes []*OfflineVote
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        &s.TableName,
			FilterExpression: aws.String("ElectionID = :e"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":e": &types.AttributeValueMemberS{Value: electionID},
			},
			ExclusiveStartKey: lastEvaluatedKey,
		})
		if err != nil {
			logging.Log.Errorf("OFFLINE: scan for election %s failed: %v", electionID, err)
			return nil, err
		}

		var page []*OfflineVote
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			logging.Log.Errorf("OFFLINE: failed to unmarshal entry list: %v", err)
			return nil, err
		}
		votes = append(votes, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		lastEvaluatedKey = out.LastEvaluatedKey
	}
	return votes, nil
}

func (s *DynamoOfflineVoteStorage) Delete(ctx context.Context, voterID, electionID string) error {
	existing, err := s.GetByVoterElection(ctx, voterID, electionID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return ErrNotFound
	}

	items := make([]types.TransactWriteItem, 0, len(existing)+1)
	for _, vote := range existing {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(s.TableName),
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: vote.BallotKey},
					"SK": &types.AttributeValueMemberS{Value: vote.SortKey},
				},
			},
		})
	}
	items = append(items, types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(s.VoterTableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: voterID},
			},
			UpdateExpression:         aws.String("REMOVE OfflineAt.#e"),
			ExpressionAttributeNames: map[string]string{"#e": electionID},
		},
	})

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		logging.Log.Errorf("OFFLINE: delete transaction failed for %s: %v", voterID, err)
		return err
	}
	return nil
}

func (s *DynamoOfflineVoteStorage) MarkMerged(ctx context.Context, voterID, electionID string, mergedAt time.Time) error {
	existing, err := s.GetByVoterElection(ctx, voterID, electionID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return ErrNotFound
	}

	// All rows flip together; a partial merge flag would corrupt the
	// audit trail.
	items := make([]types.TransactWriteItem, 0, len(existing))
	for _, vote := range existing {
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName: aws.String(s.TableName),
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: vote.BallotKey},
					"SK": &types.AttributeValueMemberS{Value: vote.SortKey},
				},
				UpdateExpression: aws.String("SET IsMerged = :m, MergedAt = :at"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":m":  &types.AttributeValueMemberBOOL{Value: true},
					":at": &types.AttributeValueMemberS{Value: mergedAt.Format(time.RFC3339Nano)},
				},
			},
		})
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		logging.Log.Errorf("OFFLINE: merge transaction failed for %s: %v", voterID, err)
		return err
	}
	return nil
}
