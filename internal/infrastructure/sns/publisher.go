package sns

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/carehome-actionplans/internal/domain"
)

const eventStatusChanged = "action_plan.status_changed"

// PublishAPI is the subset of the SNS client the publisher needs.
type PublishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// StatusChangedEvent is the message body for a status change.
type StatusChangedEvent struct {
	Event        string          `json:"event"`
	ActionPlanID string          `json:"action_plan_id"`
	Category     domain.Category `json:"category"`
	Status       domain.Status   `json:"status"`
	AssignedTo   string          `json:"assigned_to"`
	CreatedBy    string          `json:"created_by"`
	UpdatedBy    string          `json:"updated_by"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// Publisher emits action plan events to an SNS topic.
type Publisher struct {
	client   PublishAPI
	topicARN string
}

func NewPublisher(awsCfg aws.Config, topicARN string) *Publisher {
	return NewPublisherWithClient(sns.NewFromConfig(awsCfg), topicARN)
}

func NewPublisherWithClient(client PublishAPI, topicARN string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN}
}

func (p *Publisher) PublishStatusChanged(ctx context.Context, plan *domain.ActionPlan) error {
	body, err := json.Marshal(StatusChangedEvent{
		Event:        eventStatusChanged,
		ActionPlanID: plan.ID,
		Category:     plan.Category,
		Status:       plan.Status,
		AssignedTo:   plan.AssignedTo,
		CreatedBy:    plan.CreatedBy,
		UpdatedBy:    plan.StatusUpdatedBy,
		OccurredAt:   plan.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event":    {DataType: aws.String("String"), StringValue: aws.String(eventStatusChanged)},
			"category": {DataType: aws.String("String"), StringValue: aws.String(string(plan.Category))},
		},
	})
	if err != nil {
		return fmt.Errorf("publish status event: %w", err)
	}
	return nil
}
