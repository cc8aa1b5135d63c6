package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Message is the contract handed to the dispatcher: recipients, subject, a
// template name and the context map the template renders with.
type Message struct {
	To           []string
	Subject      string
	TemplateName string
	Context      map[string]interface{}
}

// Sender delivers a rendered message.
type Sender interface {
	Send(msg Message) error
}

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Render produces the HTML body for the message's template.
func Render(msg Message) (string, error) {
	buf := &bytes.Buffer{}
	if err := templates.ExecuteTemplate(buf, msg.TemplateName+".html", msg.Context); err != nil {
		return "", fmt.Errorf("render template %s: %w", msg.TemplateName, err)
	}
	return buf.String(), nil
}
