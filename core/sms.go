package core

import (
	"context"

	"github.com/pkg/errors"
)

type (
	SMSMessage struct {
		To      string // E.164 phone number
		BodyStr string

		TemplateName    string
		TemplateData    interface{}
		FrontendBaseURL string
		Content         string
	}

	// SMSService is any service that can deliver text messages.
	SMSService interface {
		Send(ctx context.Context, msg *SMSMessage) error
	}
)

func (m *SMSMessage) Render() error {
	if m.BodyStr != "" {
		m.Content = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}
	content, ok, err := smsTemplates.render(m.TemplateName, ".txt", ContextData{
		FrontendBaseURL: m.FrontendBaseURL,
		Data:            m.TemplateData,
	})
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("unknown sms template %q", m.TemplateName)
	}
	m.Content = content
	return nil
}

func (m *SMSMessage) HasRecipient() bool { return m.To != "" }
func (m *SMSMessage) HasContent() bool   { return m.Content != "" }
