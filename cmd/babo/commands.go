// cmd/babo/commands.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jason-s-yu/babo/internal/models"
	"github.com/jason-s-yu/babo/internal/room"
	"github.com/jason-s-yu/babo/internal/roomsync"
	"github.com/jason-s-yu/babo/internal/session"
	"github.com/spf13/cobra"
)

// withTimeout bounds a single request-response command.
func (c *Config) withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), c.timeout)
}

// membership loads the stored credentials for a room or explains how to get them.
func membership(store session.Store, code string) (session.Credentials, error) {
	creds, err := session.Load(store, code)
	if errors.Is(err, session.ErrNotMember) {
		return creds, fmt.Errorf("no session for room %s, join it first", code)
	}
	return creds, err
}

func createCmd(cfg *Config) *cobra.Command {
	var nickname string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new room and become its host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := cfg.client()
			if err != nil {
				return err
			}
			store, err := cfg.store()
			if err != nil {
				return err
			}
			ctx, cancel := cfg.withTimeout(cmd)
			defer cancel()

			token := session.NewToken()
			code, err := cl.CreateRoom(ctx, nickname, token)
			if err != nil {
				return err
			}
			if err := session.Save(store, session.Credentials{Code: code, Token: token, Nickname: strings.TrimSpace(nickname)}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "room %s created, share the code with your friends\n", code)
			return nil
		},
	}
	cmd.Flags().StringVarP(&nickname, "nickname", "n", "", "your nickname, 1 to 6 characters")
	_ = cmd.MarkFlagRequired("nickname")
	return cmd
}

func joinCmd(cfg *Config) *cobra.Command {
	var nickname string
	cmd := &cobra.Command{
		Use:   "join CODE",
		Short: "Join a waiting room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			cl, err := cfg.client()
			if err != nil {
				return err
			}
			store, err := cfg.store()
			if err != nil {
				return err
			}
			ctx, cancel := cfg.withTimeout(cmd)
			defer cancel()

			token := session.NewToken()
			if err := cl.JoinRoom(ctx, code, nickname, token); err != nil {
				return err
			}
			if err := session.Save(store, session.Credentials{Code: code, Token: token, Nickname: strings.TrimSpace(nickname)}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "joined room %s as %s\n", code, nickname)
			return nil
		},
	}
	cmd.Flags().StringVarP(&nickname, "nickname", "n", "", "your nickname, 1 to 6 characters")
	_ = cmd.MarkFlagRequired("nickname")
	return cmd
}

func startCmd(cfg *Config) *cobra.Command {
	var fools int
	var category string
	cmd := &cobra.Command{
		Use:   "start CODE",
		Short: "Deal roles and words (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cfg, cmd, args[0], func(ctx context.Context, cl roomClient, creds session.Credentials) error {
				if err := cl.StartGame(ctx, creds.Code, creds.Token, fools, category); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "round started")
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&fools, "fools", "f", 1, "number of fools")
	cmd.Flags().StringVarP(&category, "category", "c", "", "topic category; empty picks a random curated pair")
	return cmd
}

func resetCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "reset CODE",
		Short: "End the round and return to the waiting room (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cfg, cmd, args[0], func(ctx context.Context, cl roomClient, creds session.Credentials) error {
				if err := cl.ResetGame(ctx, creds.Code, creds.Token); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "round reset")
				return nil
			})
		},
	}
}

func leaveCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "leave CODE",
		Short: "Leave a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cfg.store()
			if err != nil {
				return err
			}
			return withSession(cfg, cmd, args[0], func(ctx context.Context, cl roomClient, creds session.Credentials) error {
				deleted, err := cl.LeaveRoom(ctx, creds.Code, creds.Token)
				if errors.Is(err, room.ErrPlayerNotFound) || errors.Is(err, room.ErrRoomNotFound) {
					// already removed or the room is gone, so only the local credentials remain
					if err := session.Clear(store, creds.Code); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "you were no longer in room %s\n", creds.Code)
					return nil
				}
				if err != nil {
					return err
				}
				if err := session.Clear(store, creds.Code); err != nil {
					return err
				}
				if deleted {
					fmt.Fprintf(cmd.OutOrStdout(), "left room %s, it was closed\n", creds.Code)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "left room %s\n", creds.Code)
				}
				return nil
			})
		},
	}
}

func kickCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "kick CODE NICKNAME",
		Short: "Remove a player from a waiting room (host only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cfg, cmd, args[0], func(ctx context.Context, cl roomClient, creds session.Credentials) error {
				if err := cl.KickPlayer(ctx, creds.Code, creds.Token, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "kicked %s\n", args[1])
				return nil
			})
		},
	}
}

func categoriesCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the curated topic categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := cfg.client()
			if err != nil {
				return err
			}
			ctx, cancel := cfg.withTimeout(cmd)
			defer cancel()
			cats, err := cl.Categories(ctx)
			if err != nil {
				return err
			}
			for _, c := range cats {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func watchCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch CODE",
		Short: "Follow a room until it closes or you are removed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := cfg.client()
			if err != nil {
				return err
			}
			store, err := cfg.store()
			if err != nil {
				return err
			}
			p, err := roomsync.Load(cl, store, args[0], cfg.logger())
			if errors.Is(err, session.ErrNotMember) {
				return fmt.Errorf("no session for room %s, join it first", args[0])
			}
			if err != nil {
				return err
			}
			p.SetInterval(cfg.interval)

			out := cmd.OutOrStdout()
			outcome, err := p.Run(cmd.Context(), func(v roomsync.View) {
				printView(out, p.Credentials().Nickname, v)
			})
			switch outcome {
			case roomsync.RoomDeleted:
				fmt.Fprintln(out, "the room was closed")
			case roomsync.Removed:
				fmt.Fprintln(out, "you were removed from the room")
			}
			if cmd.Context().Err() != nil {
				// interrupted or timed out by the caller
				return nil
			}
			return err
		},
	}
}

func printView(w io.Writer, me string, v roomsync.View) {
	names := make([]string, len(v.Roster))
	for i, p := range v.Roster {
		names[i] = p.Nickname
		if p.IsHost {
			names[i] += "*"
		}
	}
	fmt.Fprintf(w, "[%s] players: %s\n", v.Status, strings.Join(names, ", "))
	if v.Status == models.StatusPlaying && v.Topic != nil {
		fmt.Fprintf(w, "%s, your word is: %s\n", me, *v.Topic)
	}
	if v.IsHost && v.Status == models.StatusWaiting {
		fmt.Fprintln(w, "you are the host; run `babo start` when everyone is in")
	}
}
