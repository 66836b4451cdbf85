package notification

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zorak1103/conman/internal/config"
)

func TestNewNotifier(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.NotificationConfig
		wantEnabled bool
		wantErr     bool
	}{
		{
			name: "notifications disabled",
			cfg:  config.NotificationConfig{},
		},
		{
			name: "notifications disabled with URL set",
			cfg:  config.NotificationConfig{ShoutrrURL: "slack://token@channel"},
		},
		{
			name:    "notifications enabled without URL",
			cfg:     config.NotificationConfig{Enabled: true, ShoutrrURL: "  "},
			wantErr: true,
		},
		{
			name:        "notifications enabled with URL",
			cfg:         config.NotificationConfig{Enabled: true, ShoutrrURL: "slack://token@channel"},
			wantEnabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier, err := NewNotifier(tt.cfg)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			require.NotNil(t, notifier)
			assert.Equal(t, tt.wantEnabled, notifier.IsEnabled())
		})
	}
}

func TestNotifier_SendAction(t *testing.T) {
	var gotURL, gotMessage string
	n := &Notifier{
		enabled:     true,
		shoutrrrURL: "generic://hooks.example.com",
		send: func(url, message string) error {
			gotURL, gotMessage = url, message
			return nil
		},
	}

	err := n.SendAction(ActionEvent{
		Action:     "remove",
		Kind:       "container",
		ID:         "abc123",
		RemoteAddr: "10.0.0.7",
		Time:       time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "generic://hooks.example.com", gotURL)
	assert.Contains(t, gotMessage, "container abc123 removed")
	assert.Contains(t, gotMessage, "2025-03-01 12:30:00")
	assert.Contains(t, gotMessage, "10.0.0.7")
}

func TestNotifier_SendAction_SendFailure(t *testing.T) {
	n := &Notifier{
		enabled:     true,
		shoutrrrURL: "discord://token@id",
		send:        func(_, _ string) error { return errors.New("timeout") },
	}

	err := n.SendAction(ActionEvent{Action: "remove", Kind: "service", ID: "svc1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "via discord")
	assert.Contains(t, err.Error(), "svc1")
}

func TestNotifier_SendAction_Disabled(t *testing.T) {
	called := false
	n := &Notifier{send: func(_, _ string) error { called = true; return nil }}

	assert.NoError(t, n.SendAction(ActionEvent{Action: "remove"}))
	assert.False(t, called)

	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.SendAction(ActionEvent{Action: "remove"}))
	assert.False(t, nilNotifier.IsEnabled())
}

func TestFormatAction(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		event    ActionEvent
		contains []string
		excludes []string
	}{
		{
			name:     "success",
			event:    ActionEvent{Action: "remove", Kind: "service", ID: "s1", Time: ts},
			contains: []string{"service s1 removed", "2025-01-02 03:04:05"},
			excludes: []string{"Error", "Requested by"},
		},
		{
			name:     "failure",
			event:    ActionEvent{Action: "remove", Kind: "container", ID: "c1", Time: ts, Err: errors.New("conflict")},
			contains: []string{"remove of container c1 failed", "Error: conflict"},
		},
		{
			name:     "action not ending in e",
			event:    ActionEvent{Action: "restart", Kind: "container", ID: "c2", Time: ts},
			contains: []string{"container c2 restarted"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := FormatAction(tt.event)
			for _, s := range tt.contains {
				assert.Contains(t, msg, s)
			}
			for _, s := range tt.excludes {
				assert.False(t, strings.Contains(msg, s), "unexpected %q in %q", s, msg)
			}
		})
	}
}
