// Package email sends transactional mail for the platform. Templates are
// compiled into the binary.
package email

import "context"

// Template names accepted by SendTemplate.
const (
	TemplateOrganizationInvite = "organization_invite"
	TemplateUserInvite         = "user_invite"
	TemplateInviteAccepted     = "invite_accepted"
	TemplateVerifyEmail        = "verify_email"
	TemplatePasswordReset      = "password_reset"
)

// OrganizationInviteData fills the organization invitation template.
type OrganizationInviteData struct {
	CompanyName      string
	OrganizationName string
	AcceptLink       string
}

// UserInviteData fills the user invitation template.
type UserInviteData struct {
	CompanyName      string
	OrganizationName string
	RoleName         string
	AcceptLink       string
}

// InviteAcceptedData fills the post-acceptance welcome template.
type InviteAcceptedData struct {
	CompanyName string
	FirstName   string
	LoginLink   string
}

// VerifyEmailData fills the mailbox verification template.
type VerifyEmailData struct {
	CompanyName string
	FirstName   string
	Code        string
}

// PasswordResetData fills the password reset template.
type PasswordResetData struct {
	CompanyName string
	FirstName   string
	ResetLink   string
}

type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
	SendTemplate(ctx context.Context, to []string, templateName string, data interface{}) error
}

// NoOpProvider discards all mail. Used when SMTP is not configured.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}

func (p *NoOpProvider) SendTemplate(ctx context.Context, to []string, templateName string, data interface{}) error {
	return nil
}
