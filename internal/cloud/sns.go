package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSClient wraps AWS SNS for operational alerts.
type SNSClient struct {
	svc      *sns.Client
	topicArn string
	ctx      context.Context
}

func NewSNSClient(region, topicArn string) (*SNSClient, error) {
	ctx := context.Background()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &SNSClient{
		svc:      sns.NewFromConfig(cfg),
		topicArn: topicArn,
		ctx:      ctx,
	}, nil
}

// SendAlert publishes a plain alert to the configured topic.
func (c *SNSClient) SendAlert(subject, message string) error {
	input := &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	}

	if _, err := c.svc.Publish(c.ctx, input); err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}
	return nil
}

// SendRollupAlert reports a failed monthly rollup run. The scheduler retries
// on its own; this exists so an operator sees repeated failures.
func (c *SNSClient) SendRollupAlert(now time.Time, cause error) error {
	subject := "Meterhub: monthly rollup failed"
	message := fmt.Sprintf(
		"Monthly Rollup Failure\n\n"+
			"Attempted at: %s\n"+
			"Error: %v\n\n"+
			"The scheduler will retry after backoff; investigate if this repeats.",
		now.Format(time.RFC3339),
		cause,
	)
	return c.SendAlert(subject, message)
}
