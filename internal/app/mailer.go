package app

import (
	"context"
	"fmt"
	"log/slog"
)

// logResetMailer stands in for real mail delivery: it logs the reset
// link instead of sending it. Deployments with an SMTP relay swap in a
// real handler.ResetMailer here.
type logResetMailer struct {
	baseURL string
}

func newLogResetMailer(baseURL string) *logResetMailer {
	return &logResetMailer{baseURL: baseURL}
}

// SendResetLink logs the reset link for the operator to hand over.
func (m *logResetMailer) SendResetLink(ctx context.Context, email, token string) error {
	slog.Info("password reset link issued",
		slog.String("email", email),
		slog.String("link", fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, token)),
	)
	return nil
}
