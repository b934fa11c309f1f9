package smssvc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/CovEducation/Website-sub000/core"
)

type twilioService struct {
	client *twilio.RestClient
	from   string
}

var _ core.SMSService = (*twilioService)(nil)

func NewTwilioService(conf *core.Config) *twilioService {
	return &twilioService{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: conf.Twilio.AccountSID,
			Password: conf.Twilio.AuthToken,
		}),
		from: conf.Twilio.From,
	}
}

func (svc *twilioService) Send(ctx context.Context, msg *core.SMSMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := msg.Render(); err != nil {
		return errors.Wrap(err, "rendering sms")
	}
	if !msg.HasRecipient() || !msg.HasContent() {
		return errors.New("sms has no recipient or no content")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetFrom(svc.from)
	params.SetBody(msg.Content)

	if _, err := svc.client.Api.CreateMessage(params); err != nil {
		return errors.Wrap(err, "sending sms")
	}
	return nil
}
