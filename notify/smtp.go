package notify

import (
	"context"
	"strings"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/cartops/proctools/config"
	"github.com/cartops/proctools/errors"
)

// SMTPMailer delivers messages through an SMTP host with opportunistic
// STARTTLS. Credentials are optional; some hosts authenticate by IP.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger *zap.SugaredLogger
}

// NewSMTPMailer creates an SMTP mailer from configuration.
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.SugaredLogger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// Send delivers the message via SMTP.
func (s *SMTPMailer) Send(ctx context.Context, message Message) error {
	msg := gomail.NewMsg()

	from := message.From
	if from == "" {
		from = s.cfg.FromAddress
	}
	if err := msg.From(from); err != nil {
		return errors.Wrapf(err, "set sender %s", from)
	}

	to, copyAddrs, blindCopy := message.Recipients()
	if len(to)+len(copyAddrs)+len(blindCopy) == 0 {
		return errors.New("message has no recipients")
	}
	if err := msg.To(to...); err != nil {
		return errors.Wrap(err, "set recipients")
	}
	if err := msg.Cc(copyAddrs...); err != nil {
		return errors.Wrap(err, "set copy recipients")
	}
	if err := msg.Bcc(blindCopy...); err != nil {
		return errors.Wrap(err, "set blind-copy recipients")
	}
	if replyTo := ExtractEmailAddresses(message.ReplyTo); len(replyTo) > 0 {
		msg.SetGenHeader(gomail.HeaderReplyTo, strings.Join(replyTo, ", "))
	}

	msg.Subject(message.Subject)
	bodyType := gomail.TypeTextPlain
	if message.HTML {
		bodyType = gomail.TypeTextHTML
	}
	msg.SetBodyString(bodyType, message.Body)
	for _, path := range message.AttachmentPaths {
		msg.AttachFile(path)
	}

	options := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	// Only bother to log in if username & password provided.
	if s.cfg.Username != "" && s.cfg.Password != "" {
		options = append(options,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	client, err := gomail.NewClient(s.cfg.Host, options...)
	if err != nil {
		return errors.Wrapf(err, "connect SMTP host %s", s.cfg.Host)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Wrapf(err, "send mail via %s", s.cfg.Host)
	}
	if s.logger != nil {
		s.logger.Infow("Mail sent",
			"host", s.cfg.Host,
			"subject", message.Subject,
			"recipients", len(to)+len(copyAddrs)+len(blindCopy),
		)
	}
	return nil
}
