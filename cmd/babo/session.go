// cmd/babo/session.go
package main

import (
	"context"

	"github.com/jason-s-yu/babo/internal/session"
	"github.com/spf13/cobra"
)

// roomClient is the part of the HTTP client the session-scoped commands use.
type roomClient interface {
	StartGame(ctx context.Context, code, token string, foolCount int, category string) error
	ResetGame(ctx context.Context, code, token string) error
	LeaveRoom(ctx context.Context, code, token string) (bool, error)
	KickPlayer(ctx context.Context, code, token, nickname string) error
}

// withSession loads the stored credentials for code and runs fn with a client and a
// bounded context.
func withSession(cfg *Config, cmd *cobra.Command, code string, fn func(ctx context.Context, cl roomClient, creds session.Credentials) error) error {
	cl, err := cfg.client()
	if err != nil {
		return err
	}
	store, err := cfg.store()
	if err != nil {
		return err
	}
	creds, err := membership(store, code)
	if err != nil {
		return err
	}
	ctx, cancel := cfg.withTimeout(cmd)
	defer cancel()
	return fn(ctx, cl, creds)
}
