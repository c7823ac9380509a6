package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
	"github.com/carehome-actionplans/internal/domain"
)

// transientCodes are DynamoDB error codes worth a user-initiated retry.
var transientCodes = map[string]bool{
	"ProvisionedThroughputExceededException": true,
	"ThrottlingException":                    true,
	"RequestLimitExceeded":                   true,
	"InternalServerError":                    true,
	"ServiceUnavailable":                     true,
	"TransactionConflictException":           true,
}

// classify wraps a raw SDK error with the matching domain sentinel. The
// original error stays in the chain.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransient, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch {
		case transientCodes[apiErr.ErrorCode()]:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrTransient, err)
		case apiErr.ErrorCode() == "AccessDeniedException":
			return fmt.Errorf("%s: %w: %w", op, domain.ErrForbidden, err)
		case apiErr.ErrorCode() == "ResourceNotFoundException":
			return fmt.Errorf("%s: table missing: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
