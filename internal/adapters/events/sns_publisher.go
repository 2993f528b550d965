package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/core/ports/gateways"
	"github.com/SscSPs/trustbridge_backend/internal/platform/metrics"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// eventTypeAttribute lets SNS subscriptions filter on the event type.
const eventTypeAttribute = "event_type"

// snsAPI is the subset of the SNS client the publisher needs.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher publishes domain events as JSON messages to one SNS topic.
type SNSPublisher struct {
	client   snsAPI
	topicARN string
}

// NewSNSPublisher loads the default AWS credential chain for region.
func NewSNSPublisher(ctx context.Context, region, topicARN string) (*SNSPublisher, error) {
	if topicARN == "" {
		return nil, fmt.Errorf("sns topic ARN cannot be empty")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return newSNSPublisherWithClient(sns.NewFromConfig(cfg), topicARN), nil
}

func newSNSPublisherWithClient(client snsAPI, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN}
}

// Ensure SNSPublisher implements gateways.EventPublisher
var _ gateways.EventPublisher = (*SNSPublisher)(nil)

func (p *SNSPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		metrics.EventsPublished.WithLabelValues(string(event.Type), "error").Inc()
		return fmt.Errorf("failed to encode event %s: %w", event.EventID, err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			eventTypeAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Type)),
			},
		},
	})
	if err != nil {
		metrics.EventsPublished.WithLabelValues(string(event.Type), "error").Inc()
		return fmt.Errorf("failed to publish event %s to sns: %w", event.EventID, err)
	}

	metrics.EventsPublished.WithLabelValues(string(event.Type), "published").Inc()
	return nil
}
