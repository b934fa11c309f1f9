package notifysvc

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/CovEducation/Website-sub000/core"
)

var (
	errNoEmail = errors.New("recipient has no email address")
	errNoPhone = errors.New("recipient has no phone number")
)

// Dispatcher delivers notifications on the recipient's preferred channel.
// Recipients preferring sms without a phone number fall back to email.
type Dispatcher struct {
	mailSvc         core.EmailService
	smsSvc          core.SMSService
	frontendBaseURL string
}

var _ core.Notifier = (*Dispatcher)(nil)

func NewDispatcher(conf *core.Config, mailSvc core.EmailService, smsSvc core.SMSService) *Dispatcher {
	return &Dispatcher{
		mailSvc:         mailSvc,
		smsSvc:          smsSvc,
		frontendBaseURL: conf.FrontendBaseURL,
	}
}

func (d *Dispatcher) Notify(ctx context.Context, n core.Notification) error {
	if n.Recipient.Channel == core.ChannelSMS && n.Recipient.Phone != "" {
		return d.sendSMS(ctx, n)
	}
	if n.Recipient.Email == "" {
		if n.Recipient.Phone != "" {
			return d.sendSMS(ctx, n)
		}
		return errNoEmail
	}
	return d.sendEmail(n)
}

func (d *Dispatcher) sendEmail(n core.Notification) error {
	msg := &core.EmailMessage{
		To:              []mail.Address{{Name: n.Recipient.Name, Address: n.Recipient.Email}},
		Subject:         n.Subject,
		TemplateName:    n.Template,
		TemplateData:    n.Data,
		FrontendBaseURL: d.frontendBaseURL,
		Categories:      []string{n.Template},
		Args:            map[string]string{"recipient_id": n.Recipient.ID},
	}
	// render up front so template errors reach the caller; services send asynchronously
	if err := msg.Render(); err != nil {
		return errors.Wrap(err, "rendering email")
	}
	d.mailSvc.SendMessages(msg)
	return nil
}

func (d *Dispatcher) sendSMS(ctx context.Context, n core.Notification) error {
	if n.Recipient.Phone == "" {
		return errNoPhone
	}
	msg := &core.SMSMessage{
		To:              n.Recipient.Phone,
		TemplateName:    n.Template,
		TemplateData:    n.Data,
		FrontendBaseURL: d.frontendBaseURL,
	}
	return errors.Wrap(d.smsSvc.Send(ctx, msg), "sending sms")
}
