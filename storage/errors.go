package storage

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("item not found in storage")
var ErrConflict = errors.New("conflicting item already exists in storage")

// isConditionalFailure reports whether a write was refused by a condition
// expression, either on a single item or inside a transaction.
func isConditionalFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var tc *types.TransactionCanceledException
	if errors.As(err, &tc) {
		for _, reason := range tc.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}
