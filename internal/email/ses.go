package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESConfig holds the configuration for the SES email sender.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// SendEmailAPI is the subset of the SES v2 client used by SESSender.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender implements Sender using the AWS SES v2 API with raw MIME content,
// so attachments go through unchanged.
type SESSender struct {
	client SendEmailAPI
}

// NewSESSender creates a new SESSender. Static credentials are used when
// given, otherwise the default AWS credential chain applies.
func NewSESSender(ctx context.Context, cfg SESConfig) (*SESSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ses: failed to load AWS config: %w", err)
	}

	return &SESSender{client: sesv2.NewFromConfig(awsCfg)}, nil
}

// NewSESSenderWithClient creates a SESSender around an existing client.
func NewSESSenderWithClient(client SendEmailAPI) *SESSender {
	return &SESSender{client: client}
}

// Name returns the provider name.
func (s *SESSender) Name() string {
	return "ses"
}

// Send delivers the message through SES.
func (s *SESSender) Send(ctx context.Context, msg Message) error {
	raw, err := BuildMIME(msg)
	if err != nil {
		return fmt.Errorf("ses: failed to build message: %w", err)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses: failed to send email: %w", err)
	}

	return nil
}
