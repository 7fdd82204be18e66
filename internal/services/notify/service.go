// Package notify is the single channel for user-visible error reports.
// Errors are always logged; when a desktop notification helper is
// available they are additionally surfaced there. A failing notification
// never fails the caller.
package notify

import (
	"os/exec"

	"github.com/rs/zerolog"
)

// Service defines the interface for error notifications.
type Service interface {
	Error(profileName, message string)
}

// Sender delivers one notification to the user.
type Sender interface {
	Send(summary, body string) error
}

// ExecSender delivers notifications through the notify-send helper.
type ExecSender struct {
	Path string
}

// Send runs the helper with the given summary and body.
func (e *ExecSender) Send(summary, body string) error {
	return exec.Command(e.Path, "--urgency=critical", summary, body).Run()
}

// Impl implements the notify Service interface.
type Impl struct {
	sender Sender
	logger zerolog.Logger
}

// New creates a notify service. When no desktop notification helper is
// installed, notifications degrade to log output only.
func New(logger zerolog.Logger) *Impl {
	s := &Impl{logger: logger}
	if path, err := exec.LookPath("notify-send"); err == nil {
		s.sender = &ExecSender{Path: path}
	}
	return s
}

// NewWithSender creates a notify service with a custom sender (for
// testing).
func NewWithSender(logger zerolog.Logger, sender Sender) *Impl {
	return &Impl{sender: sender, logger: logger}
}

// Error reports a profile-scoped error to the user.
func (s *Impl) Error(profileName, message string) {
	s.logger.Error().Str("profile", profileName).Msg(message)

	if s.sender == nil {
		return
	}
	if err := s.sender.Send("Backup schedule error: "+profileName, message); err != nil {
		s.logger.Debug().Err(err).Msg("desktop notification failed")
	}
}
