package notify

import (
	"context"
	"fmt"
	"strings"
)

// Message is one outgoing email. Address fields accept any representation
// ExtractEmailAddresses understands; mailers normalize them before sending.
type Message struct {
	From            string
	To              any
	Copy            any
	BlindCopy       any
	ReplyTo         any
	Subject         string
	Body            string
	HTML            bool
	AttachmentPaths []string
}

// Recipients returns the normalized to/copy/blind-copy address lists.
func (m Message) Recipients() (to, copy, blindCopy []string) {
	return ExtractEmailAddresses(m.To),
		ExtractEmailAddresses(m.Copy),
		ExtractEmailAddresses(m.BlindCopy)
}

// Mailer delivers messages. Implementations cover SMTP and SendGrid.
type Mailer interface {
	Send(ctx context.Context, message Message) error
}

// LinksBody returns an HTML body listing the URLs as links, optionally
// ordered, wrapped by the given before/after HTML fragments.
func LinksBody(linkURLs []string, ordered bool, bodyBefore, bodyAfter string) string {
	var b strings.Builder
	b.WriteString(bodyBefore)
	listTag := "ul"
	if ordered {
		listTag = "ol"
	}
	fmt.Fprintf(&b, "<%s>", listTag)
	for _, url := range linkURLs {
		fmt.Fprintf(&b, `<li><a href=%q>%s</a></li>`, url, url)
	}
	fmt.Fprintf(&b, "</%s>", listTag)
	b.WriteString(bodyAfter)
	return b.String()
}

// SendLinksEmail sends an email whose body is a listing of URLs.
func SendLinksEmail(ctx context.Context, mailer Mailer, message Message, linkURLs []string, ordered bool) error {
	message.Body = LinksBody(linkURLs, ordered, message.Body, "")
	message.HTML = true
	return mailer.Send(ctx, message)
}
