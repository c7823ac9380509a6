package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/carehome-actionplans/internal/domain"
)

// ActionPlanRepo provides typed DynamoDB operations for one category's
// action plan table. Each category has its own table and its own repo.
type ActionPlanRepo struct {
	client    ItemAPI
	tableName string
	category  domain.Category
}

func NewActionPlanRepo(client ItemAPI, tableName string, category domain.Category) *ActionPlanRepo {
	return &ActionPlanRepo{client: client, tableName: tableName, category: category}
}

// Create stores a new plan. A plan for another category is refused so no
// record ever lands in the wrong partition.
func (r *ActionPlanRepo) Create(ctx context.Context, p *domain.ActionPlan) error {
	if p.Category != r.category {
		return fmt.Errorf("plan category %q in %s partition: %w", p.Category, r.category, domain.ErrUnresolvedCategory)
	}
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal action plan: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": fieldID},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("action plan %s already exists: %w", p.ID, domain.ErrConflict)
		}
		return classify("put action plan", err)
	}
	return nil
}

func (r *ActionPlanRepo) ListAssigned(ctx context.Context, assignedTo string) ([]domain.ActionPlan, error) {
	return r.queryIndex(ctx, indexAssignedTo, fieldAssignedTo, assignedTo, "")
}

func (r *ActionPlanRepo) ListCreated(ctx context.Context, createdBy string) ([]domain.ActionPlan, error) {
	return r.queryIndex(ctx, indexCreatedBy, fieldCreatedBy, createdBy, "")
}

// ListByAssignee narrows ListAssigned to one organisational unit. An empty
// scopeID means no unit filter.
func (r *ActionPlanRepo) ListByAssignee(ctx context.Context, assignedTo, scopeID string) ([]domain.ActionPlan, error) {
	return r.queryIndex(ctx, indexAssignedTo, fieldAssignedTo, assignedTo, scopeID)
}

// queryIndex reads every page of a GSI query, newest first.
func (r *ActionPlanRepo) queryIndex(ctx context.Context, index, attr, value, scopeID string) ([]domain.ActionPlan, error) {
	input := &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(index),
		KeyConditionExpression:   aws.String("#k = :k"),
		ExpressionAttributeNames: map[string]string{"#k": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":k": &types.AttributeValueMemberS{Value: value},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if scopeID != "" {
		input.FilterExpression = aws.String("#scope = :scope")
		input.ExpressionAttributeNames["#scope"] = fieldScopeID
		input.ExpressionAttributeValues[":scope"] = &types.AttributeValueMemberS{Value: scopeID}
	}

	plans := []domain.ActionPlan{}
	p := dynamodb.NewQueryPaginator(r.client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, classify("query "+index, err)
		}
		var page []domain.ActionPlan
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal action plans: %w", err)
		}
		plans = append(plans, page...)
	}
	return plans, nil
}

// unseenQuery selects the assignee's plans not yet marked viewed.
func (r *ActionPlanRepo) unseenQuery(assignedTo string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexAssignedTo),
		KeyConditionExpression: aws.String("#k = :k"),
		FilterExpression:       aws.String("#viewed = :f"),
		ExpressionAttributeNames: map[string]string{
			"#k":      fieldAssignedTo,
			"#viewed": fieldViewed,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":k": &types.AttributeValueMemberS{Value: assignedTo},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
	}
}

func (r *ActionPlanRepo) UnseenCount(ctx context.Context, assignedTo string) (int, error) {
	input := r.unseenQuery(assignedTo)
	input.Select = types.SelectCount

	total := 0
	p := dynamodb.NewQueryPaginator(r.client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return 0, classify("count unseen", err)
		}
		total += int(out.Count)
	}
	return total, nil
}

// markViewedCondition makes each acknowledgement write land at most once,
// even when a stale index read returns an already-viewed plan.
const markViewedCondition = "attribute_exists(#id) AND #viewed = :unseen"

// MarkViewed flags every unseen plan of the assignee as viewed. With nothing
// unseen it performs no writes. Plans deleted or already viewed are skipped.
func (r *ActionPlanRepo) MarkViewed(ctx context.Context, assignedTo string) error {
	input := r.unseenQuery(assignedTo)
	input.ProjectionExpression = aws.String("#id")
	input.ExpressionAttributeNames["#id"] = fieldID

	var planIDs []string
	p := dynamodb.NewQueryPaginator(r.client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return classify("query unseen", err)
		}
		for _, item := range out.Items {
			if v, ok := item[fieldID].(*types.AttributeValueMemberS); ok {
				planIDs = append(planIDs, v.Value)
			}
		}
	}

	now := time.Now().UTC()
	for _, planID := range planIDs {
		ue, err := buildUpdateExpr(map[string]interface{}{
			fieldViewed:    true,
			fieldUpdatedAt: now,
		})
		if err != nil {
			return err
		}
		ue.withCondition(
			map[string]string{"#id": fieldID, "#viewed": fieldViewed},
			map[string]types.AttributeValue{":unseen": &types.AttributeValueMemberBOOL{Value: false}},
		)
		_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(r.tableName),
			Key:                       strKey(fieldID, planID),
			UpdateExpression:          aws.String(ue.Expr),
			ConditionExpression:       aws.String(markViewedCondition),
			ExpressionAttributeNames:  ue.Names,
			ExpressionAttributeValues: ue.Values,
		})
		if err != nil {
			var ccf *types.ConditionalCheckFailedException
			if errors.As(err, &ccf) {
				continue
			}
			return classify("mark viewed", err)
		}
	}
	return nil
}

// UpdateStatus writes a new status if the plan exists, the actor is its
// assignee or creator, and the transition is allowed from the stored status.
// All three are checked atomically by the table.
func (r *ActionPlanRepo) UpdateStatus(ctx context.Context, planID string, u domain.StatusUpdate) (*domain.ActionPlan, error) {
	if u.ActorID == "" {
		return nil, fmt.Errorf("status update without actor: %w", domain.ErrUnauthorized)
	}
	allowed := domain.AllowedFrom(u.Status)
	if len(allowed) == 0 {
		return nil, fmt.Errorf("status %q: %w", u.Status, domain.ErrBadRequest)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		fieldStatus:              u.Status,
		fieldStatusUpdatedBy:     u.ActorID,
		fieldStatusUpdatedByName: u.ActorName,
		fieldUpdatedAt:           now,
	}
	if u.Comment != nil {
		updates[fieldStatusComment] = *u.Comment
	}
	if u.Status == domain.StatusCompleted {
		updates[fieldCompletedAt] = now
	}
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return nil, err
	}
	if u.Comment == nil {
		// A comment belongs to the status it was written with.
		ue.withRemove(fieldStatusComment)
	}
	cond, names, values := statusCondition(u.ActorID, allowed)
	ue.withCondition(names, values)

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           aws.String(r.tableName),
		Key:                                 strKey(fieldID, planID),
		UpdateExpression:                    aws.String(ue.Expr),
		ConditionExpression:                 aws.String(cond),
		ExpressionAttributeNames:            ue.Names,
		ExpressionAttributeValues:           ue.Values,
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, r.rejection(planID, u.ActorID, ccf.Item, func(p *domain.ActionPlan) string {
				return fmt.Sprintf("cannot move from %s to %s", p.Status, u.Status)
			})
		}
		return nil, classify("update action plan status", err)
	}
	var p domain.ActionPlan
	if err := attributevalue.UnmarshalMap(out.Attributes, &p); err != nil {
		return nil, fmt.Errorf("unmarshal action plan: %w", err)
	}
	return &p, nil
}

// statusCondition builds the guard for a status write.
func statusCondition(actorID string, allowedFrom []domain.Status) (string, map[string]string, map[string]types.AttributeValue) {
	names, values := ownerPlaceholders(actorID)
	placeholders := make([]string, len(allowedFrom))
	for i, s := range allowedFrom {
		ph := fmt.Sprintf(":from%d", i)
		placeholders[i] = ph
		values[ph] = &types.AttributeValueMemberS{Value: string(s)}
	}
	cond := fmt.Sprintf("%s AND #cur IN (%s)", ownerCondition, strings.Join(placeholders, ", "))
	return cond, names, values
}

// ownerCondition holds when the plan exists and the actor is its assignee or creator.
const ownerCondition = "attribute_exists(#id) AND (#assign = :actor OR #creator = :actor)"

func ownerPlaceholders(actorID string) (map[string]string, map[string]types.AttributeValue) {
	names := map[string]string{
		"#id":      fieldID,
		"#assign":  fieldAssignedTo,
		"#creator": fieldCreatedBy,
		"#cur":     fieldStatus,
	}
	values := map[string]types.AttributeValue{
		":actor": &types.AttributeValueMemberS{Value: actorID},
	}
	return names, values
}

// rejection explains a failed owner-guarded write from the stored item:
// missing, not the actor's plan, or in the wrong status.
func (r *ActionPlanRepo) rejection(planID, actorID string, old map[string]types.AttributeValue, conflict func(*domain.ActionPlan) string) error {
	if len(old) == 0 {
		return fmt.Errorf("action plan %s in %s: %w", planID, r.category, domain.ErrNotFound)
	}
	var p domain.ActionPlan
	if err := attributevalue.UnmarshalMap(old, &p); err != nil {
		return fmt.Errorf("unmarshal action plan: %w", err)
	}
	if p.AssignedTo != actorID && p.CreatedBy != actorID {
		return fmt.Errorf("actor %s on action plan %s: %w", actorID, planID, domain.ErrForbidden)
	}
	return fmt.Errorf("action plan %s %s: %w", planID, conflict(&p), domain.ErrConflict)
}

// Delete hard-deletes a completed plan for its assignee or creator. Both
// rules are checked by the table, so a stale client cannot delete open work.
func (r *ActionPlanRepo) Delete(ctx context.Context, planID, actorID string) error {
	if actorID == "" {
		return fmt.Errorf("delete without actor: %w", domain.ErrUnauthorized)
	}
	names, values := ownerPlaceholders(actorID)
	values[":completed"] = &types.AttributeValueMemberS{Value: string(domain.StatusCompleted)}

	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                           aws.String(r.tableName),
		Key:                                 strKey(fieldID, planID),
		ConditionExpression:                 aws.String(ownerCondition + " AND #cur = :completed"),
		ExpressionAttributeNames:            names,
		ExpressionAttributeValues:           values,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return r.rejection(planID, actorID, ccf.Item, func(p *domain.ActionPlan) string {
				return fmt.Sprintf("is %s, not completed", p.Status)
			})
		}
		return classify("delete action plan", err)
	}
	return nil
}
