// internal/client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jason-s-yu/babo/internal/models"
	"github.com/jason-s-yu/babo/internal/room"
	"github.com/jason-s-yu/babo/internal/roomsync"
)

// DefaultTimeout bounds every request made by a Client built with New.
const DefaultTimeout = 5 * time.Second

const sessionHeader = "X-Session-Token"

// APIError is an error response the server did not map to a known sentinel.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client talks to the room API over HTTP.
type Client struct {
	base *url.URL
	http *http.Client
}

var _ roomsync.Fetcher = (*Client)(nil)

// New returns a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string) (*Client, error) {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: DefaultTimeout})
}

func NewWithHTTPClient(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	return &Client{base: u, http: hc}, nil
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// decodeError turns an error response into the matching room sentinel where one exists.
func decodeError(resp *http.Response) error {
	var body errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err := json.Unmarshal(data, &body); err != nil {
		body.Error = strings.TrimSpace(string(data))
	}
	if sentinel := room.FromCode(body.Code); sentinel != nil {
		return sentinel
	}
	return &APIError{Status: resp.StatusCode, Code: body.Code, Message: body.Error}
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(sessionHeader, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func roomPath(code, action string) string {
	return "/rooms/" + url.PathEscape(code) + "/" + action
}

type joinRequest struct {
	Nickname     string `json:"nickname"`
	SessionToken string `json:"session_token"`
}

// CreateRoom opens a room with the caller as host and returns its code.
func (c *Client) CreateRoom(ctx context.Context, nickname, token string) (string, error) {
	var out struct {
		Code string `json:"code"`
	}
	if err := c.do(ctx, http.MethodPost, "/rooms", "", joinRequest{Nickname: nickname, SessionToken: token}, &out); err != nil {
		return "", err
	}
	return out.Code, nil
}

func (c *Client) JoinRoom(ctx context.Context, code, nickname, token string) error {
	return c.do(ctx, http.MethodPost, roomPath(code, "join"), "", joinRequest{Nickname: nickname, SessionToken: token}, nil)
}

func (c *Client) StartGame(ctx context.Context, code, token string, foolCount int, category string) error {
	in := struct {
		FoolCount int    `json:"fool_count"`
		Category  string `json:"category,omitempty"`
	}{foolCount, category}
	return c.do(ctx, http.MethodPost, roomPath(code, "start"), token, in, nil)
}

func (c *Client) ResetGame(ctx context.Context, code, token string) error {
	return c.do(ctx, http.MethodPost, roomPath(code, "reset"), token, nil, nil)
}

// LeaveRoom leaves the room and reports whether it was deleted as a result.
func (c *Client) LeaveRoom(ctx context.Context, code, token string) (bool, error) {
	var out struct {
		RoomDeleted bool `json:"room_deleted"`
	}
	if err := c.do(ctx, http.MethodPost, roomPath(code, "leave"), token, nil, &out); err != nil {
		return false, err
	}
	return out.RoomDeleted, nil
}

func (c *Client) KickPlayer(ctx context.Context, code, token, nickname string) error {
	in := struct {
		Nickname string `json:"nickname"`
	}{nickname}
	return c.do(ctx, http.MethodPost, roomPath(code, "kick"), token, in, nil)
}

func (c *Client) Roster(ctx context.Context, code string) ([]models.RosterEntry, error) {
	var out struct {
		Players []models.RosterEntry `json:"players"`
	}
	if err := c.do(ctx, http.MethodGet, roomPath(code, "players"), "", nil, &out); err != nil {
		return nil, err
	}
	return out.Players, nil
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out struct {
		Categories []string `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/categories", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// RoomState implements roomsync.Fetcher. A missing room or seat is reported as
// roomsync.ErrRoomGone or roomsync.ErrPlayerGone.
func (c *Client) RoomState(ctx context.Context, code, token string) (*models.RoomState, error) {
	var state models.RoomState
	err := c.do(ctx, http.MethodGet, roomPath(code, "state"), token, nil, &state)
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return nil, roomsync.ErrRoomGone
	case errors.Is(err, room.ErrPlayerNotFound):
		return nil, roomsync.ErrPlayerGone
	case err != nil:
		return nil, err
	}
	return &state, nil
}
