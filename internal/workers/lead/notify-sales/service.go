package notifysales

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"

	commonaws "lead-intake/internal/common/aws"
	"lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/intake"
)

type Service struct {
	config *Config
	email  EmailSender
	topic  TopicPublisher
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		email:  deps.Email,
		topic:  deps.Topic,
		logger: deps.Logger,
	}
}

// BuildNotice renders the sales summary for a stored submission.
func BuildNotice(fileName string, record intake.Record) Notice {
	b, w, m := record.Business, record.Website, record.Marketing

	var sb strings.Builder
	fmt.Fprintf(&sb, "Business: %s (%s)\n", b.BusinessName, b.BusinessDomain)
	fmt.Fprintf(&sb, "Service: %s\n", b.PrimaryService)
	fmt.Fprintf(&sb, "Location: %s\n", b.Location)
	fmt.Fprintf(&sb, "Language: %s\n", b.PrimaryLanguage)
	fmt.Fprintf(&sb, "Website features: %s\n", strings.Join(w.Features, ", "))
	if w.CurrentWebsite != "" {
		fmt.Fprintf(&sb, "Current website: %s\n", w.CurrentWebsite)
	}
	fmt.Fprintf(&sb, "Social media: %s\n", strings.Join(m.SocialMedia, ", "))
	fmt.Fprintf(&sb, "Budget: %s %s\n", m.Budget.Amount, m.Budget.Type)
	fmt.Fprintf(&sb, "KPIs: %s\n", strings.Join(m.KPIs, ", "))
	fmt.Fprintf(&sb, "\nStored as %s\n", fileName)

	return Notice{
		Subject: "New lead: " + b.BusinessName,
		Body:    sb.String(),
	}
}

// Channels returns one delivery func per enabled channel.
func (s *Service) Channels() map[string]func(context.Context, Notice) error {
	channels := map[string]func(context.Context, Notice) error{}
	if s.config.EmailEnabled && s.email != nil {
		channels["ses"] = s.sendEmail
	}
	if s.config.TopicEnabled && s.topic != nil {
		channels["sns"] = s.publish
	}
	return channels
}

func (s *Service) sendEmail(ctx context.Context, n Notice) error {
	input := commonaws.TextEmail(s.config.FromEmail, s.config.Recipients, n.Subject, n.Body)
	out, err := s.email.SendEmail(ctx, input)
	if err != nil {
		return mapAWSError(ctx, "ses", err)
	}
	s.logger.Info("Sales email sent", map[string]interface{}{
		"messageId":  aws.ToString(out.MessageId),
		"recipients": len(s.config.Recipients),
	})
	return nil
}

func (s *Service) publish(ctx context.Context, n Notice) error {
	out, err := s.topic.Publish(ctx, commonaws.TopicMessage(s.config.TopicARN, n.Subject, n.Body))
	if err != nil {
		return mapAWSError(ctx, "sns", err)
	}
	s.logger.Info("Sales topic notified", map[string]interface{}{
		"messageId": aws.ToString(out.MessageId),
	})
	return nil
}

func mapAWSError(ctx context.Context, service string, err error) error {
	if ctx.Err() != nil {
		return errors.NewTimeoutError(service, err)
	}
	return errors.NewExternalServiceError(service, err)
}
