package httpx

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"
)

type joinRequest struct {
	Email string `json:"email"`
}

type entryResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Position  int64     `json:"position"`
}

// handleWaitlist implements POST /api/waitlist for JSON clients and the
// no-script form on the index page.
func (h *Handler) handleWaitlist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, msgMethod)
		return
	}
	if h.MaxBody > 0 {
		if r.ContentLength > h.MaxBody {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBody)
	}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/x-www-form-urlencoded":
		h.handleJoinForm(w, r)
	case "application/json", "":
		h.handleJoinJSON(w, r)
	default:
		writeError(w, http.StatusUnsupportedMediaType, msgUnsupportedCT)
	}
}

func (h *Handler) handleJoinJSON(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	e, err := h.Service.Join(r.Context(), req.Email)
	if err != nil {
		mapServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, apiResponse{Success: true, Message: msgAdded, ID: e.ID.String()})
}

// handleJoinForm re-renders the index page with a flash message.
func (h *Handler) handleJoinForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	email := r.PostFormValue("email")
	e, err := h.Service.Join(r.Context(), email)
	if err != nil {
		code, msg, fields := serviceErrorStatus(err)
		logServiceError(r.Context(), code, err)
		view := h.indexView(r)
		view.Email = email
		view.FlashError = true
		view.Flash = msg
		if len(fields) > 0 {
			view.Flash = fields[0].Message
		}
		h.renderIndex(w, code, view)
		return
	}
	view := h.indexView(r)
	view.Flash = "You have signed up for our waitlist!"
	view.ID = e.ID.String()
	h.renderIndex(w, http.StatusOK, view)
}

// handleEntry implements GET and DELETE /api/waitlist/{id}.
func (h *Handler) handleEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet:
		e, pos, err := h.Service.Lookup(r.Context(), id)
		if err != nil {
			mapServiceError(r.Context(), w, err)
			return
		}
		writeJSON(w, http.StatusOK, entryResponse{ID: e.ID.String(), CreatedAt: e.CreatedAt.UTC(), Position: pos})
	case http.MethodDelete:
		if err := h.Service.Leave(r.Context(), id); err != nil {
			mapServiceError(r.Context(), w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, DELETE")
		writeError(w, http.StatusMethodNotAllowed, msgMethod)
	}
}
