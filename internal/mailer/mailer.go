package mailer

import "embed"

const (
	FromName                     = "Locality"
	maxRetries                   = 3
	UserWelcomeTemplate          = "user_welcome.tmpl"
	StoreVerifiedTemplate        = "store_verified.tmpl"
	RegistrationApprovedTemplate = "registration_approved.tmpl"
	RegistrationRejectedTemplate = "registration_rejected.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
