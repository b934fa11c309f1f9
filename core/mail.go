package core

import (
	"net/mail"

	"github.com/pkg/errors"
)

type (
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName    string // without ext
		TemplateData    interface{}
		FrontendBaseURL string
		TextContent     string
		HTMLContent     string

		// delivery tracking, passed on to providers that support it
		Categories []string
		Args       map[string]string
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) getContextData() ContextData {
	return ContextData{
		FrontendBaseURL: m.FrontendBaseURL,
		Data:            m.TemplateData,
	}
}

func (m *EmailMessage) Render() error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
	}
	if m.TemplateName == "" {
		return nil
	}
	if !emailTemplates.has(m.TemplateName) {
		return errors.Errorf("unknown email template %q", m.TemplateName)
	}

	if m.BodyStr == "" {
		txt, ok, err := emailTemplates.render(m.TemplateName, ".txt", m.getContextData())
		if err != nil {
			return err
		}
		if ok {
			m.TextContent = txt
		}
	}
	html, ok, err := emailTemplates.render(m.TemplateName, ".gohtml", m.getContextData())
	if err != nil {
		return err
	}
	if ok {
		m.HTMLContent = html
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }
