// utils/email.go
package utils

import (
	"fmt"

	"github.com/keighl/postmark"

	"go-propmarket/models"
)

// EmailService handles sending emails using Postmark.
type EmailService struct {
	client *postmark.Client
	sender string
}

// NewEmailService initializes and returns a new EmailService instance.
func NewEmailService(serverToken, sender string) *EmailService {
	client := postmark.NewClient(serverToken, "")
	return &EmailService{
		client: client,
		sender: sender,
	}
}

// SendEmail sends a basic email to the specified recipient.
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendPaymentConfirmation notifies a buyer that their payment was verified.
func (es *EmailService) SendPaymentConfirmation(toEmail string, order models.Order) error {
	subject := "Payment Confirmed - Property Marketplace"
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Your payment for order <strong>%s</strong> has been verified.<br><br>Total Amount: <strong>%.2f</strong> (platform fee: %.2f)<br>Payment ID: <strong>%s</strong><br><br>Thank you for using our marketplace!",
		order.ID.Hex(),
		order.Amount,
		order.AdminMargin,
		order.PaymentID,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
