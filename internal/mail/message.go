// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package mail

import (
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/samber/oops"
	gomail "github.com/wneessen/go-mail"
)

//go:embed templates
var templateFS embed.FS

var (
	htmlLayout = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/layout.html"))
	textLayout = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/layout.txt"))
)

// Kind names a message type. It is also the metrics label.
type Kind string

// Message kinds.
const (
	KindVerification  Kind = "verification"
	KindPasswordReset Kind = "password_reset"
)

type content struct {
	Title  string
	Body   string
	Button string
	Link   string
}

var contents = map[Kind]content{
	KindVerification: {
		Title:  "Verify your email",
		Body:   "Thanks for signing up. Click the button below to verify your email address and finish setting up your account.",
		Button: "Verify email",
	},
	KindPasswordReset: {
		Title:  "Reset your password",
		Body:   "We received a request to reset your password. Click the button below to choose a new password. If you didn't request this, you can ignore this email.",
		Button: "Reset password",
	},
}

// Subject returns the subject line for kind.
func Subject(kind Kind) string {
	return contents[kind].Title
}

// buildMessage renders kind for link into a multipart message with a plain
// text body and an HTML alternative.
func buildMessage(kind Kind, from, to, link string) (*gomail.Msg, error) {
	c, ok := contents[kind]
	if !ok {
		return nil, oops.Code("MAIL_UNKNOWN_KIND").With("kind", string(kind)).Errorf("unknown message kind")
	}
	c.Link = link

	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, oops.Code("MAIL_INVALID_FROM").With("from", from).Wrap(err)
	}
	if err := msg.To(to); err != nil {
		return nil, oops.Code("MAIL_INVALID_TO").Wrap(err)
	}
	msg.Subject(c.Title)
	if err := msg.SetBodyTextTemplate(textLayout, c); err != nil {
		return nil, oops.Code("MAIL_RENDER_FAILED").With("kind", string(kind)).Wrap(err)
	}
	if err := msg.AddAlternativeHTMLTemplate(htmlLayout, c); err != nil {
		return nil, oops.Code("MAIL_RENDER_FAILED").With("kind", string(kind)).Wrap(err)
	}
	return msg, nil
}
