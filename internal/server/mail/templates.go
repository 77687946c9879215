package mail

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
)

type mailKind string

const (
	verificationMail mailKind = "verification"
	resetMail        mailKind = "reset"
)

type mailData struct {
	Name    string
	Code    string
	Minutes int
}

const htmlLayout = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>{{.Title}}</h2>
    <p>Hello {{.Name}},</p>
    <p>{{.Lead}}</p>
    <div style="font-size: 28px; font-weight: bold; letter-spacing: 3px;">{{.Code}}</div>
    <p>This code is valid for {{.Minutes}} minutes.</p>
    <p style="font-size: 12px; color: #6b7280;">{{.Footer}}</p>
  </div>
</body>
</html>`

const textLayout = `Hello {{.Name}},

{{.Lead}}

    {{.Code}}

This code is valid for {{.Minutes}} minutes.

{{.Footer}}
`

type layoutData struct {
	mailData
	Title  string
	Lead   string
	Footer string
}

var (
	htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(htmlLayout))
	textTmpl = texttemplate.Must(texttemplate.New("text").Parse(textLayout))
)

var contents = map[mailKind]struct {
	subject, title, lead, footer string
}{
	verificationMail: {
		subject: "Verify your email address",
		title:   "Email verification",
		lead:    "Use the code below to verify your email address.",
		footer:  "If you did not create an account, you can ignore this email.",
	},
	resetMail: {
		subject: "Reset your password",
		title:   "Password reset",
		lead:    "Use the code below to reset your password.",
		footer:  "If you did not ask to reset your password, you can ignore this email.",
	},
}

func render(kind mailKind, data mailData) (Message, error) {
	c := contents[kind]
	d := layoutData{mailData: data, Title: c.title, Lead: c.lead, Footer: c.footer}

	var text, html bytes.Buffer
	if err := textTmpl.Execute(&text, d); err != nil {
		return Message{}, err
	}
	if err := htmlTmpl.Execute(&html, d); err != nil {
		return Message{}, err
	}

	return Message{Subject: c.subject, Text: text.String(), HTML: html.String()}, nil
}
