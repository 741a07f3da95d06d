package notification

import (
	"errors"
	"testing"

	"github.com/marianecozta/Pomodoro/internal/config"
	"github.com/marianecozta/Pomodoro/internal/domain"
)

func TestNotifier_Notify(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.NotificationConfig
		wantSent bool
	}{
		{"enabled", &config.NotificationConfig{Enabled: true}, true},
		{"disabled", &config.NotificationConfig{Enabled: false}, false},
		{"nil config", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(tt.cfg)
			var gotTitle, gotMessage string
			sent := false
			n.send = func(title, message string) error {
				sent = true
				gotTitle, gotMessage = title, message
				return nil
			}

			if err := n.Notify(domain.ExpiryMessage); err != nil {
				t.Fatalf("Notify() error = %v", err)
			}
			if sent != tt.wantSent {
				t.Fatalf("sent = %v, want %v", sent, tt.wantSent)
			}
			if sent && (gotTitle != Title || gotMessage != "Tempo finalizado!") {
				t.Errorf("sent %q / %q", gotTitle, gotMessage)
			}
		})
	}
}

func TestNotifier_PropagatesError(t *testing.T) {
	n := New(&config.NotificationConfig{Enabled: true})
	n.send = func(string, string) error { return errors.New("no dbus") }

	if err := n.Notify("x"); err == nil {
		t.Error("Notify() should return the delivery error")
	}
}
