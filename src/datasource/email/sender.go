package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/jordan-wright/email"

	"DelayInsight/src/config"
)

// SendReport mails the rendered workbook to the configured recipients.
func SendReport(cfg *config.Config, reportPath string) error {
	sc := cfg.SendEmail
	if len(sc.Recipients) == 0 {
		return fmt.Errorf("send report: no recipients configured")
	}

	if _, err := os.Stat(reportPath); err != nil {
		return fmt.Errorf("send report: %w", err)
	}

	e := email.NewEmail()
	e.From = fmt.Sprintf("Delay Report <%s>", sc.Username)
	e.To = sc.Recipients
	e.Subject = sc.Subject
	e.Text = []byte("Attached: the departure delay vs. weather report.")

	if _, err := e.AttachFile(reportPath); err != nil {
		return fmt.Errorf("attach report: %w", err)
	}

	smtpAddr := sc.Server
	if !strings.Contains(smtpAddr, ":") {
		smtpAddr += ":465"
	}
	host := strings.Split(smtpAddr, ":")[0]

	err := e.SendWithTLS(
		smtpAddr,
		smtp.PlainAuth("", sc.Username, sc.Password, host),
		&tls.Config{ServerName: host},
	)
	if err != nil {
		return fmt.Errorf("send report via %s: %w", smtpAddr, err)
	}
	return nil
}
