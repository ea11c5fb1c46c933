package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMTPSenderAuth(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantAuth bool
	}{
		{name: "credentials configured", username: "mailer@example.com", wantAuth: true},
		{name: "no credentials skips auth", username: "", wantAuth: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSMTPSender("smtp.example.com", 465, tt.username, "secret", "noreply@example.com")
			if tt.wantAuth {
				assert.NotNil(t, s.auth())
			} else {
				assert.Nil(t, s.auth())
			}
		})
	}
}
