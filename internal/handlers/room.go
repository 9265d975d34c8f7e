// internal/handlers/room.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jason-s-yu/babo/internal/models"
	"github.com/jason-s-yu/babo/internal/room"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
)

// SessionHeader carries the caller's session token on room-scoped requests.
const SessionHeader = "X-Session-Token"

const maxBodyBytes = 4 << 10

// CategoryLister lists the categories offered for generated word pairs.
type CategoryLister interface {
	Categories() []string
}

// RoomServer holds what the room endpoints need.
type RoomServer struct {
	Rooms  *room.Service
	Words  CategoryLister
	Logger *logrus.Logger
}

func NewRoomServer(rooms *room.Service, words CategoryLister, logger *logrus.Logger) *RoomServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RoomServer{Rooms: rooms, Words: words, Logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func statusFor(err error) int {
	switch room.Kind(err) {
	case room.KindValidation:
		return http.StatusBadRequest
	case room.KindNotFound:
		return http.StatusNotFound
	case room.KindConflict:
		return http.StatusConflict
	case room.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a service error onto a status code and a JSON body. Internal errors
// are logged and replaced with a generic message.
func (s *RoomServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.Logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("request failed")
		msg = "operation failed"
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: room.Code(err)})
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Code: "bad_request"})
}

type joinRequest struct {
	Nickname     string `json:"nickname"`
	SessionToken string `json:"session_token"`
}

// sessionToken prefers the body token and falls back to the header.
func (j joinRequest) sessionToken(r *http.Request) string {
	if j.SessionToken != "" {
		return j.SessionToken
	}
	return r.Header.Get(SessionHeader)
}

type createRoomResponse struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id"`
}

// CreateRoomHandler opens a new room with the caller as host.
//
// Request payload:
//
//	{"nickname": "민수", "session_token": "..."}
//
// Response payload (201):
//
//	{"code": "4821", "player_id": "..."}
func CreateRoomHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinRequest
		if err := decodeBody(w, r, &req); err != nil {
			badRequest(w, "invalid request payload")
			return
		}
		rm, host, err := s.Rooms.CreateRoom(r.Context(), req.Nickname, req.sessionToken(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, createRoomResponse{Code: rm.Code, PlayerID: host.ID.String()})
	}
}

type joinRoomResponse struct {
	PlayerID string `json:"player_id"`
}

// JoinRoomHandler seats the caller in a waiting room.
func JoinRoomHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinRequest
		if err := decodeBody(w, r, &req); err != nil {
			badRequest(w, "invalid request payload")
			return
		}
		p, err := s.Rooms.JoinRoom(r.Context(), r.PathValue("code"), req.Nickname, req.sessionToken(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, joinRoomResponse{PlayerID: p.ID.String()})
	}
}

type startRequest struct {
	FoolCount int    `json:"fool_count"`
	Category  string `json:"category"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// StartGameHandler deals roles and words. Only the host may start.
func StartGameHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startRequest
		if err := decodeBody(w, r, &req); err != nil {
			badRequest(w, "invalid request payload")
			return
		}
		err := s.Rooms.StartGame(r.Context(), r.PathValue("code"), r.Header.Get(SessionHeader), req.FoolCount, req.Category)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "playing"})
	}
}

// ResetGameHandler returns the room to waiting. Only the host may reset.
func ResetGameHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Rooms.ResetGame(r.Context(), r.PathValue("code"), r.Header.Get(SessionHeader)); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "waiting"})
	}
}

type leaveResponse struct {
	RoomDeleted bool    `json:"room_deleted"`
	NewHostID   *string `json:"new_host_id,omitempty"`
}

// LeaveRoomHandler removes the caller from the room.
func LeaveRoomHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.Rooms.LeaveRoom(r.Context(), r.PathValue("code"), r.Header.Get(SessionHeader))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp := leaveResponse{RoomDeleted: res.RoomDeleted}
		if res.NewHost != nil {
			id := res.NewHost.String()
			resp.NewHostID = &id
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type kickRequest struct {
	Nickname string `json:"nickname"`
}

type kickResponse struct {
	Kicked string `json:"kicked"`
}

// KickPlayerHandler lets the host remove a player by nickname.
func KickPlayerHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req kickRequest
		if err := decodeBody(w, r, &req); err != nil {
			badRequest(w, "invalid request payload")
			return
		}
		if err := s.Rooms.KickPlayer(r.Context(), r.PathValue("code"), r.Header.Get(SessionHeader), req.Nickname); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, kickResponse{Kicked: req.Nickname})
	}
}

// RoomStateHandler is the polling endpoint: room status, the caller's seat, the roster.
func RoomStateHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := s.Rooms.RoomState(r.Context(), r.PathValue("code"), r.Header.Get(SessionHeader))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, state)
	}
}

type rosterResponse struct {
	Players []models.RosterEntry `json:"players"`
}

func ListPlayersHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Rooms.Roster(r.Context(), r.PathValue("code"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rosterResponse{Players: players})
	}
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

func ListCategoriesHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, categoriesResponse{Categories: s.Words.Categories()})
	}
}

const qrSize = 320

// RoomQRHandler serves a PNG QR code of the room code so players at the table can scan it.
func RoomQRHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("code")
		if _, err := s.Rooms.Roster(r.Context(), code); err != nil {
			s.writeError(w, r, err)
			return
		}
		png, err := qrcode.Encode(code, qrcode.Medium, qrSize)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}
