package users

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"example.com/ya-note/internal/auth"
	"example.com/ya-note/internal/routes"
)

type Handlers struct {
	svc      *Service
	sessions *auth.Sessions
}

func NewHandlers(svc *Service, sessions *auth.Sessions) *Handlers {
	return &Handlers{svc: svc, sessions: sessions}
}

func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// Register mounts login, logout and signup on r. Logout only answers POST.
func (h *Handlers) Register(r chi.Router) {
	r.Get(routes.Pattern(routes.UsersLogin), h.loginForm)
	r.Post(routes.Pattern(routes.UsersLogin), h.login)
	r.Post(routes.Pattern(routes.UsersLogout), h.logout)
	r.Get(routes.Pattern(routes.UsersSignup), h.signupForm)
	r.Post(routes.Pattern(routes.UsersSignup), h.signup)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Next     string `json:"next"`
}

type signupRequest struct {
	Username  string `json:"username"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

func (h *Handlers) loginForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"form": map[string]string{"username": "", "password": ""},
		"next": r.URL.Query().Get("next"),
	})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req, func() {
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		req.Next = r.PostForm.Get("next")
	}); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Next == "" {
		req.Next = r.URL.Query().Get("next")
	}

	u, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"form":   map[string]string{"username": req.Username},
			"errors": map[string]string{"__all__": "Please enter a correct username and password."},
		})
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}

	if _, err := h.sessions.Login(w, u.ID, u.Username); err != nil {
		serverError(w, r, err)
		return
	}
	hlog.FromRequest(r).Info().Int64("user_id", u.ID).Msg("user logged in")

	target := routes.MustReverse(routes.NotesHome)
	if routes.SafeNext(req.Next) {
		target = req.Next
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"page": "logged_out"})
}

func (h *Handlers) signupForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"form": map[string]string{"username": "", "password1": "", "password2": ""},
	})
}

func (h *Handlers) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decode(w, r, &req, func() {
		req.Username = r.PostForm.Get("username")
		req.Password1 = r.PostForm.Get("password1")
		req.Password2 = r.PostForm.Get("password2")
	}); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	u, err := h.svc.Register(r.Context(), req.Username, req.Password1, req.Password2)
	if field, msg, ok := signupError(err); ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"form":   map[string]string{"username": req.Username},
			"errors": map[string]string{field: msg},
		})
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().Int64("user_id", u.ID).Msg("user signed up")
	http.Redirect(w, r, routes.MustReverse(routes.UsersLogin), http.StatusFound)
}

func signupError(err error) (field, msg string, ok bool) {
	switch {
	case errors.Is(err, ErrInvalidUsername):
		return "username", "Enter a valid username of at most 150 letters, digits and @/./+/-/_ characters.", true
	case errors.Is(err, ErrAlreadyExists):
		return "username", "A user with that username already exists.", true
	case errors.Is(err, ErrPasswordTooShort):
		return "password1", "This password is too short. It must contain at least 8 characters.", true
	case errors.Is(err, ErrPasswordTooLong):
		return "password1", "This password is too long. It must contain at most 72 bytes.", true
	case errors.Is(err, ErrPasswordMismatch):
		return "password2", "The two password fields didn't match.", true
	}
	return "", "", false
}

const maxBodyBytes = 1 << 20

// decode reads a JSON body into v, or parses a urlencoded body and calls fromForm.
// Bodies over maxBodyBytes are rejected.
func decode(w http.ResponseWriter, r *http.Request, v any, fromForm func()) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		return json.NewDecoder(r.Body).Decode(v)
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	fromForm()
	return nil
}

func serverError(w http.ResponseWriter, r *http.Request, err error) {
	hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("users handler failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
