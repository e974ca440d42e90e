package mailer

import (
	"fmt"
	smtpPkg "net/smtp"
	"os"
)

type ItfMailer interface {
	SendCommentNotification(authorEmail, postTitle, commenterName, comment string) error
}

type mailer struct {
	auth smtpPkg.Auth
	mail string
	host string
	port string
}

func New() ItfMailer {
	mail := os.Getenv("SMTP_MAIL")
	password := os.Getenv("SMTP_PASSWORD")
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	auth := smtpPkg.PlainAuth("", mail, password, host)

	return &mailer{auth: auth, mail: mail, host: host, port: port}
}

// SendCommentNotification tells a post author that someone commented on
// their post.
func (m *mailer) SendCommentNotification(authorEmail, postTitle, commenterName, comment string) error {
	to := []string{authorEmail}

	message := []byte(fmt.Sprintf(
		"To: %s\r\nSubject: New comment on \"%s\"\r\n\r\n%s commented on your post \"%s\":\r\n\r\n%s",
		authorEmail, postTitle, commenterName, postTitle, comment))

	if err := smtpPkg.SendMail(m.host+":"+m.port, m.auth, m.mail, to, message); err != nil {
		return err
	}

	return nil
}
