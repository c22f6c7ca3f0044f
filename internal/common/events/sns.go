// internal/common/events/sns.go
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"matchmaking-workers/internal/common/config"
	"matchmaking-workers/internal/common/logger"
)

// SNSAPI is the subset of the SNS client used for publishing.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSPublisher struct {
	client   SNSAPI
	topicARN string
	logger   logger.Logger
}

func NewSNSPublisher(ctx context.Context, cfg config.SNSConfig, log logger.Logger) (*SNSPublisher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSNSPublisherWithClient(sns.NewFromConfig(awsCfg), cfg.TopicARN, log), nil
}

func NewSNSPublisherWithClient(client SNSAPI, topicARN string, log logger.Logger) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN, logger: log}
}

func (p *SNSPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(event.Type)},
			"category":  {DataType: aws.String("String"), StringValue: aws.String(event.Category)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	p.logger.Debug("Event published", map[string]interface{}{
		"eventId":   event.ID,
		"eventType": event.Type,
		"messageId": aws.ToString(out.MessageId),
	})
	return nil
}

// NopPublisher drops events; used when SNS is disabled.
type NopPublisher struct {
	Logger logger.Logger
}

func (p NopPublisher) Publish(_ context.Context, event Event) error {
	if p.Logger != nil {
		p.Logger.Debug("Event publishing disabled, dropping event", map[string]interface{}{
			"eventType": event.Type,
		})
	}
	return nil
}
