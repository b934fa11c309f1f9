package smssvc

import (
	"context"
	"log"
	"sync"

	"github.com/pkg/errors"

	"github.com/CovEducation/Website-sub000/core"
)

type consoleService struct {
	from          string
	disableOutput bool

	mu   sync.Mutex
	sent []core.SMSMessage
}

var _ core.SMSService = (*consoleService)(nil)

// NewConsoleService prints text messages instead of sending them.
func NewConsoleService(conf *core.Config) *consoleService {
	return &consoleService{from: conf.Twilio.From}
}

// NewConsoleServiceMock records text messages silently, for tests.
func NewConsoleServiceMock() *consoleService {
	return &consoleService{from: "+15005550006", disableOutput: true}
}

func (svc *consoleService) Send(ctx context.Context, msg *core.SMSMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := msg.Render(); err != nil {
		return errors.Wrap(err, "rendering sms")
	}
	if !msg.HasRecipient() || !msg.HasContent() {
		return errors.New("sms has no recipient or no content")
	}

	if !svc.disableOutput {
		log.Printf("SMS From: %s To: %s\n%s\n", svc.from, msg.To, msg.Content)
	}
	svc.mu.Lock()
	svc.sent = append(svc.sent, *msg)
	svc.mu.Unlock()
	return nil
}

// SentMessages returns a copy of every message delivered so far.
func (svc *consoleService) SentMessages() []core.SMSMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	sent := make([]core.SMSMessage, len(svc.sent))
	copy(sent, svc.sent)
	return sent
}
