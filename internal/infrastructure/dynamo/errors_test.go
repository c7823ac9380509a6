package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/carehome-actionplans/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"throughput", &types.ProvisionedThroughputExceededException{Message: aws.String("x")}, domain.ErrTransient},
		{"throttling", &smithy.GenericAPIError{Code: "ThrottlingException"}, domain.ErrTransient},
		{"deadline", context.DeadlineExceeded, domain.ErrTransient},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDeniedException"}, domain.ErrForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classify("query", tc.err)
			assert.True(t, errors.Is(got, tc.want), "got %v", got)
			assert.True(t, errors.Is(got, tc.err))
		})
	}
}

func TestClassify_UnknownErrorKeepsNoSentinel(t *testing.T) {
	raw := errors.New("validation failed")
	got := classify("put", raw)

	assert.ErrorIs(t, got, raw)
	assert.False(t, errors.Is(got, domain.ErrTransient))
	assert.Contains(t, got.Error(), "put")
	assert.Nil(t, classify("put", nil))
}
