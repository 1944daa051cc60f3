package notify

import (
	"context"
	"encoding/base64"
	"mime"
	"os"
	"path/filepath"

	sendgridgo "github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/cartops/proctools/config"
	"github.com/cartops/proctools/errors"
)

// SendGridMailer delivers messages through the SendGrid API.
type SendGridMailer struct {
	client     *sendgridgo.Client
	senderName string
	logger     *zap.SugaredLogger
}

// NewSendGridMailer creates a SendGrid mailer from configuration.
func NewSendGridMailer(cfg config.SendGridConfig, logger *zap.SugaredLogger) *SendGridMailer {
	return &SendGridMailer{
		client:     sendgridgo.NewSendClient(cfg.APIKey),
		senderName: cfg.SenderName,
		logger:     logger,
	}
}

// Send delivers the message via SendGrid.
func (c *SendGridMailer) Send(ctx context.Context, message Message) error {
	to, copyAddrs, blindCopy := message.Recipients()
	if len(to)+len(copyAddrs)+len(blindCopy) == 0 {
		return errors.New("message has no recipients")
	}

	personalization := sgmail.NewPersonalization()
	for _, addr := range to {
		personalization.AddTos(sgmail.NewEmail(addr, addr))
	}
	for _, addr := range copyAddrs {
		personalization.AddCCs(sgmail.NewEmail(addr, addr))
	}
	for _, addr := range blindCopy {
		personalization.AddBCCs(sgmail.NewEmail(addr, addr))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(c.senderName, message.From))
	m.Subject = message.Subject
	m.AddPersonalizations(personalization)
	if replyTo := ExtractEmailAddresses(message.ReplyTo); len(replyTo) > 0 {
		m.SetReplyTo(sgmail.NewEmail(replyTo[0], replyTo[0]))
	}
	contentType := "text/plain"
	if message.HTML {
		contentType = "text/html"
	}
	m.AddContent(sgmail.NewContent(contentType, message.Body))

	attachments, err := sendgridAttachments(message.AttachmentPaths)
	if err != nil {
		return err
	}
	m.AddAttachment(attachments...)

	resp, err := c.client.SendWithContext(ctx, m)
	if err != nil {
		if c.logger != nil {
			c.logger.Errorw("send email error", "error", err)
		}
		return errors.Wrap(err, "send mail via SendGrid")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if c.logger != nil {
			c.logger.Errorw("send email error",
				"status_code", resp.StatusCode,
				"response", resp.Body,
			)
		}
		return errors.Newf("SendGrid rejected message: status %d", resp.StatusCode)
	}

	if c.logger != nil {
		c.logger.Infow("Mail sent",
			"subject", message.Subject,
			"recipients", len(to)+len(copyAddrs)+len(blindCopy),
		)
	}
	return nil
}

// sendgridAttachments reads attachment files into the base64 inline form the
// SendGrid API requires.
func sendgridAttachments(paths []string) ([]*sgmail.Attachment, error) {
	attachments := make([]*sgmail.Attachment, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read attachment %q", path)
		}
		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		attachment := sgmail.NewAttachment()
		attachment.SetContent(base64.StdEncoding.EncodeToString(content))
		attachment.SetFilename(filepath.Base(path))
		attachment.SetType(contentType)
		attachment.SetDisposition("attachment")
		attachments = append(attachments, attachment)
	}
	return attachments, nil
}
