package utils

import (
	"fmt"
	"net/smtp"
	"strings"

	"tickethub/config"
	"tickethub/models"
)

// Generic Send Email
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: TicketHub <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	return nil
}

// HTML Wrapper (Professional Look)
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #5865F2; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #23272A; line-height: 1.6; }
			.content h2 { color: #23272A; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #5865F2; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>TICKETHUB</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 TicketHub. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

// 1. New Ticket Opened (To Staff)
func SendNewTicketEmail(ticket *models.Ticket) {
	subject := "New Support Ticket from " + ticket.OpenerUsername
	body := fmt.Sprintf(`
		<p>A new support ticket has been opened.</p>
		<div class="info-box">
			<ul style="list-style: none; padding: 0; margin: 0;">
				<li style="margin-bottom: 8px;"><strong>Opened by:</strong> %s</li>
				<li style="margin-bottom: 8px;"><strong>Server:</strong> %s</li>
				<li><strong>Thread:</strong> %s</li>
			</ul>
		</div>
		<p>Open the staff panel to reply.</p>
	`, ticket.OpenerUsername, ticket.ServerID, ticket.ThreadID)

	go SendEmail([]string{config.AppConfig.StaffEmail}, subject, getEmailTemplate("New Support Ticket", body))
}

// 2. Ticket Closed (To Staff)
func SendTicketClosedEmail(ticket *models.Ticket) {
	subject := "Ticket Closed: " + ticket.OpenerUsername
	body := fmt.Sprintf(`
		<p>The ticket opened by <strong>%s</strong> has been closed.</p>
		<p>The transcript remains available in the staff panel archive.</p>
	`, ticket.OpenerUsername)

	go SendEmail([]string{config.AppConfig.StaffEmail}, subject, getEmailTemplate("Ticket Closed", body))
}
