package email

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"
)

const invitationText = `Hello,

{{.InviterName}} invited you to join the task "{{.TaskTitle}}".

To accept the invitation and create your account, open this link:
{{.Link}}

This link expires in {{.ExpiresInDays}} days.

The {{.AppName}} team`

const invitationHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">You have been invited to a task</h2>
    <p>Hello,</p>
    <p><strong>{{.InviterName}}</strong> invited you to join the task "<strong>{{.TaskTitle}}</strong>".</p>
    <p style="text-align: center; margin: 30px 0;">
      <a href="{{.Link}}" style="background-color: #2563eb; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Accept the invitation</a>
    </p>
    <p style="color: #666; font-size: 14px;">This link expires in {{.ExpiresInDays}} days.</p>
    <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
    <p style="color: #999; font-size: 12px;">The {{.AppName}} team</p>
  </div>
</body>
</html>`

const welcomeText = `Hello {{.FirstName}},

Your {{.AppName}} account has been created.

You can now sign in and see the tasks assigned to you:
{{.Link}}

The {{.AppName}} team`

const welcomeHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Welcome to {{.AppName}}!</h2>
    <p>Hello <strong>{{.FirstName}}</strong>,</p>
    <p>Your account has been created. You can now sign in and see the tasks assigned to you.</p>
    <p style="text-align: center; margin: 30px 0;">
      <a href="{{.Link}}" style="background-color: #2563eb; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Sign in</a>
    </p>
    <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
    <p style="color: #999; font-size: 12px;">The {{.AppName}} team</p>
  </div>
</body>
</html>`

type template struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

func mustTemplate(name, text, html string) template {
	return template{
		text: texttemplate.Must(texttemplate.New(name).Parse(text)),
		html: htmltemplate.Must(htmltemplate.New(name).Parse(html)),
	}
}

func (t template) render(data any) (string, string, error) {
	var text, html bytes.Buffer
	if err := t.text.Execute(&text, data); err != nil {
		return "", "", fmt.Errorf("render %s text: %w", t.text.Name(), err)
	}
	if err := t.html.Execute(&html, data); err != nil {
		return "", "", fmt.Errorf("render %s html: %w", t.html.Name(), err)
	}
	return text.String(), html.String(), nil
}

var (
	invitationTmpl = mustTemplate("invitation", invitationText, invitationHTML)
	welcomeTmpl    = mustTemplate("welcome", welcomeText, welcomeHTML)
)

// Notifier renders the application's emails and hands them to a Sender.
type Notifier struct {
	sender        Sender
	frontendURL   string
	appName       string
	invitationTTL time.Duration
}

func NewNotifier(sender Sender, frontendURL, appName string, invitationTTL time.Duration) *Notifier {
	return &Notifier{
		sender:        sender,
		frontendURL:   strings.TrimRight(frontendURL, "/"),
		appName:       appName,
		invitationTTL: invitationTTL,
	}
}

type Invitation struct {
	To          string
	InviterName string
	TaskTitle   string
	Token       string
}

// InvitationLink is the frontend page that accepts the invitation.
func (n *Notifier) InvitationLink(token string) string {
	return n.frontendURL + "/accept-invite?token=" + url.QueryEscape(token)
}

func (n *Notifier) SendInvitation(ctx context.Context, inv Invitation) error {
	text, html, err := invitationTmpl.render(map[string]any{
		"InviterName":   inv.InviterName,
		"TaskTitle":     inv.TaskTitle,
		"Link":          n.InvitationLink(inv.Token),
		"ExpiresInDays": int(n.invitationTTL.Hours() / 24),
		"AppName":       n.appName,
	})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		To:      inv.To,
		Subject: "Invitation to join a task: " + inv.TaskTitle,
		Text:    text,
		HTML:    html,
	})
}

func (n *Notifier) SendWelcome(ctx context.Context, to, firstName string) error {
	text, html, err := welcomeTmpl.render(map[string]any{
		"FirstName": firstName,
		"Link":      n.frontendURL + "/login",
		"AppName":   n.appName,
	})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		To:      to,
		Subject: "Welcome to " + n.appName,
		Text:    text,
		HTML:    html,
	})
}
