// Package notify sends analysis-completion alerts. Long analysis runs
// take minutes; when configured, the user gets an email or SMS instead
// of watching the poll loop.
package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/config"
	commonerrors "github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/errors"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/logger"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/common/metrics"
)

// Notifier delivers a completion alert.
type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

// NoOp is used when notifications are not configured.
type NoOp struct{}

func NewNoOp() *NoOp {
	return &NoOp{}
}

func (*NoOp) Notify(context.Context, string, string) error {
	return nil
}

// Interfaces over the AWS clients for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// AWSNotifier sends email via SES and SMS via SNS according to the
// notification config.
type AWSNotifier struct {
	cfg       config.NotificationConfig
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

func NewAWSNotifier(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*AWSNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, err
	}

	return &AWSNotifier{
		cfg:       cfg,
		sesClient: ses.NewFromConfig(awsCfg),
		snsClient: sns.NewFromConfig(awsCfg),
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
	}, nil
}

// NewAWSNotifierWithClients injects the AWS clients (used by tests).
func NewAWSNotifierWithClients(cfg config.NotificationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *AWSNotifier {
	return &AWSNotifier{
		cfg:       cfg,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// Notify delivers on every enabled channel. A failure on one channel
// does not stop the other; the first failure is reported.
func (n *AWSNotifier) Notify(ctx context.Context, subject, message string) error {
	var firstErr error

	if n.cfg.Email.Enabled {
		if err := n.sendEmail(ctx, subject, message); err != nil {
			metrics.NotificationsSent.WithLabelValues("email", "failed").Inc()
			n.logger.Error("email send failed", map[string]interface{}{"error": err.Error()})
			firstErr = commonerrors.NewNotifyFailedError("email", err)
		} else {
			metrics.NotificationsSent.WithLabelValues("email", "sent").Inc()
		}
	}

	if n.cfg.SMS.Enabled {
		if err := n.sendSMS(ctx, message); err != nil {
			metrics.NotificationsSent.WithLabelValues("sms", "failed").Inc()
			n.logger.Error("SMS send failed", map[string]interface{}{"error": err.Error()})
			if firstErr == nil {
				firstErr = commonerrors.NewNotifyFailedError("sms", err)
			}
		} else {
			metrics.NotificationsSent.WithLabelValues("sms", "sent").Inc()
		}
	}

	return firstErr
}

func (n *AWSNotifier) sendEmail(ctx context.Context, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.cfg.Email.FromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{n.cfg.Email.ToEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	return err
}

func (n *AWSNotifier) sendSMS(ctx context.Context, message string) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(n.cfg.SMS.PhoneNumber),
		Message:     aws.String(message),
	})
	return err
}
