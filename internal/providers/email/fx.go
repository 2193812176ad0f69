package email

import (
	"github.com/procurehq/procure/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
)

// NewFromConfig builds an SMTP provider when a host is configured and falls
// back to a no-op provider otherwise.
func NewFromConfig(cfg config.Config) (Provider, error) {
	if cfg.SMTPHost == "" {
		return &NoOpProvider{}, nil
	}
	return NewSMTP(Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
}
