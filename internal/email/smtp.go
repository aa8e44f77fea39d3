package email

import (
	"fmt"
	"net/smtp"
)

// SMTPServerConfig holds the connection details for the club's mail relay.
type SMTPServerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string // The "From" email address
}

// EmailService sends club notifications.
type EmailService struct {
	config SMTPServerConfig
	auth   smtp.Auth
}

// NewEmailService creates a new service for sending emails.
func NewEmailService(config SMTPServerConfig) *EmailService {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)
	return &EmailService{
		config: config,
		auth:   auth,
	}
}

// SendResultsPublishedEmail notifies the sailing secretary that a
// race's results have been published and which results page to check.
func (s *EmailService) SendResultsPublishedEmail(recipientEmail, raceName, publisherName, frontendURL string) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	subject := fmt.Sprintf("Results published for '%s'", raceName)

	body := fmt.Sprintf(
		"Hi,\n\n%s has published the results for '%s'.\n\nThey are now the authoritative results for league scoring. Review them here:\n%s\n\nSailscore",
		publisherName,
		raceName,
		frontendURL,
	)

	message := []byte(
		"To: " + recipientEmail + "\r\n" +
			"From: " + s.config.Sender + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"\r\n" +
			body + "\r\n")

	if err := smtp.SendMail(addr, s.auth, s.config.Sender, []string{recipientEmail}, message); err != nil {
		return fmt.Errorf("smtp error: %w", err)
	}

	return nil
}
