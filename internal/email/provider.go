package email

import (
	"context"
	"fmt"

	"github.com/sellwithus/storefront/internal/config"
	"github.com/sellwithus/storefront/internal/logger"
)

// NewSender builds the Sender selected by cfg.Provider.
func NewSender(ctx context.Context, cfg config.EmailConfig, log *logger.Logger) (Sender, error) {
	switch cfg.Provider {
	case "smtp":
		return NewSMTPSender(SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			TLSMode:  cfg.SMTP.TLSMode,
		})
	case "gmail":
		return NewGmailSender(ctx, GmailConfig{
			CredentialsJSON: cfg.Gmail.CredentialsJSON,
			ClientID:        cfg.Gmail.ClientID,
			ClientSecret:    cfg.Gmail.ClientSecret,
			RefreshToken:    cfg.Gmail.RefreshToken,
			SenderAddress:   cfg.From,
			SenderName:      cfg.Gmail.SenderName,
		})
	case "ses":
		return NewSESSender(ctx, SESConfig{
			Region:          cfg.SES.Region,
			AccessKeyID:     cfg.SES.AccessKeyID,
			SecretAccessKey: cfg.SES.SecretAccessKey,
		})
	case "log":
		return NewLogSender(log.WithComponent("email").Logger), nil
	default:
		return nil, fmt.Errorf("email: unknown provider %q", cfg.Provider)
	}
}
