package notifysales

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"lead-intake/internal/common/logger"
)

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// TopicPublisher is satisfied by aws.SNSClient.
type TopicPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Notice is the message sent to sales for one lead.
type Notice struct {
	Subject string
	Body    string
}

type ServiceDependencies struct {
	Email  EmailSender
	Topic  TopicPublisher
	Logger logger.Logger
}
