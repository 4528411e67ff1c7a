package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"

	"github.com/dudhwala/milkbook/internal/domain"
)

// SNSClient publishes delivery notifications to a topic the owner's phone
// can subscribe to.
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

func (c *SNSClient) SendAlert(subject, message string) error {
	input := &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	}

	result, err := c.svc.Publish(c.ctx, input)
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}

	log.Debug().Str("message_id", aws.ToString(result.MessageId)).Msg("alert sent")
	return nil
}

// DeliveryRecorded notifies that a delivery entry was written for a customer.
func (c *SNSClient) DeliveryRecorded(acct *domain.Account, rec *domain.DeliveryRecord) error {
	subject := fmt.Sprintf("Milk delivered: %s", acct.Username)
	message := fmt.Sprintf(
		"Delivery recorded\n\n"+
			"Customer: %s\n"+
			"Quantity: %.2f L\n"+
			"Date: %s\n",
		acct.Username,
		rec.Quantity,
		rec.Date.String(),
	)

	return c.SendAlert(subject, message)
}
