package team

import (
	"context"
	"log/slog"
)

type InviteMessage struct {
	To          string
	TeamName    string
	InviterName string
	Role        Role
	Link        string
}

// Mailer delivers invitation links. Delivery failures are reported to the
// caller but never undo the invitation itself.
type Mailer interface {
	SendInvite(ctx context.Context, msg InviteMessage) error
}

// LogMailer writes the invitation to the structured log instead of sending it.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) SendInvite(ctx context.Context, msg InviteMessage) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "team invitation",
		"to", msg.To,
		"team", msg.TeamName,
		"inviter", msg.InviterName,
		"role", msg.Role,
		"link", msg.Link,
	)
	return nil
}
