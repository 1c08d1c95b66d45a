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

type VoteStorage interface {
	// CommitBallot persists all of one voter's rows for one election and
	// flips the voter's voted flag in a single transaction. Returns
	// ErrConflict when the voter already balloted through either channel.
	CommitBallot(ctx context.Context, votes []*Vote) error
	GetByVoterElection(ctx context.Context, voterID, electionID string) ([]*Vote, error)
	GetByElection(ctx context.Context, electionID string) ([]*Vote, error)
}

type DynamoVoteStorage struct {
	Client         *dynamodb.Client
	TableName      string
	VoterTableName string
}

func (s *DynamoVoteStorage) CommitBallot(ctx context.Context, votes []*Vote) error {
	if len(votes) == 0 {
		return nil
	}
	voterID := votes[0].VoterID
	electionID := votes[0].ElectionID

	items := make([]types.TransactWriteItem, 0, len(votes)+1)
	for _, vote := range votes {
		item, err := attributevalue.MarshalMap(vote)
		if err != nil {
			logging.Log.Errorf("VOTE: failed to marshal vote: %v", err)
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

	// The voter item is the linearization point: the update fails if the
	// voter already voted online or was captured offline for this election.
	items = append(items, types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(s.VoterTableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: voterID},
			},
			UpdateExpression: aws.String("SET VotedAt.#e = :ts"),
			ConditionExpression: aws.String(
				"attribute_exists(PK) AND attribute_not_exists(VotedAt.#e) AND attribute_not_exists(OfflineAt.#e)"),
			ExpressionAttributeNames: map[string]string{"#e": electionID},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":ts": &types.AttributeValueMemberS{Value: votes[0].Timestamp.Format(time.RFC3339Nano)},
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
		logging.Log.Errorf("VOTE: ballot transaction failed for %s: %v", voterID, err)
		return err
	}
	return nil
}

func (s *DynamoVoteStorage) GetByVoterElection(ctx context.Context, voterID, electionID string) ([]*Vote, error) {
	out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.TableName,
		KeyConditionExpression: aws.String("PK = :key"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":key": &types.AttributeValueMemberS{Value: BallotKey(voterID, electionID)},
		},
	})
	if err != nil {
		logging.Log.Errorf("VOTE: failed to query ballot for %s: %v", voterID, err)
		return nil, err
	}

	var votes []*Vote
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &votes); err != nil {
		logging.Log.Errorf("VOTE: failed to unmarshal ballot for %s: %v", voterID, err)
		return nil, err
	}
	return votes, nil
}

func (s *DynamoVoteStorage) GetByElection(ctx context.Context, electionID string) ([]*Vote, error) {
	var votes []*Vote
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
			logging.Log.Errorf("VOTE: scan for election %s failed: %v", electionID, err)
			return nil, err
		}

		var page []*Vote
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			logging.Log.Errorf("VOTE: failed to unmarshal vote list: %v", err)
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
