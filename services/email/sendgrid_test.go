package emailsvc

import (
	"net/mail"
	"testing"

	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CovEducation/Website-sub000/core"
)

func requestedMessage() core.EmailMessage {
	return core.EmailMessage{
		To:           []mail.Address{{Name: "Mo", Address: "mo@test.cd"}, {Name: "Mia", Address: "mia@test.cd"}},
		Subject:      "New mentorship request",
		TemplateName: "mentorship_requested",
		TextContent:  "Hi Mo",
		HTMLContent:  "<p>Hi Mo</p>",
		Categories:   []string{"mentorship_requested"},
		Args:         map[string]string{"recipient_id": "mentor-1"},
	}
}

func TestSendgridService_prepare(t *testing.T) {
	svc := sendgridService{
		from:       sgmail.NewEmail("CovEducation", "noreply@coveducation.test"),
		subjPrefix: "[CovEducation] ",
		category:   "coveducation",
	}

	m := svc.prepare(requestedMessage())

	require.Len(t, m.Personalizations, 2)
	for i, addr := range []string{"mo@test.cd", "mia@test.cd"} {
		p := m.Personalizations[i]
		require.Len(t, p.To, 1)
		assert.Equal(t, addr, p.To[0].Address)
		assert.Equal(t, "[CovEducation] New mentorship request", p.Subject)
		assert.Equal(t, "mentor-1", p.CustomArgs["recipient_id"])
	}
	assert.Equal(t, []string{"coveducation", "mentorship_requested"}, m.Categories)

	require.Len(t, m.Content, 2)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	assert.Equal(t, "text/html", m.Content[1].Type)

	t.Run("text only", func(t *testing.T) {
		msg := requestedMessage()
		msg.HTMLContent = ""
		m := svc.prepare(msg)
		require.Len(t, m.Content, 1)
		assert.Equal(t, "text/plain", m.Content[0].Type)
	})
}
