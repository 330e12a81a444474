package notes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"example.com/ya-note/internal/auth"
	"example.com/ya-note/internal/routes"
)

type Handlers struct {
	store Store
}

// Store is an abstraction over the notes storage.
// It allows unit-testing handlers without a real database.
type Store interface {
	Create(ctx context.Context, authorID int64, f Fields) (Note, error)
	Get(ctx context.Context, authorID int64, slug string) (Note, error)
	List(ctx context.Context, authorID int64) ([]Note, error)
	Update(ctx context.Context, authorID int64, slug string, f Fields) (Note, error)
	Delete(ctx context.Context, authorID int64, slug string) error
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}

func NewHandlers(store Store) *Handlers {
	return &Handlers{store: store}
}

func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// Register mounts the note pages on r. Everything except home requires login.
func (h *Handlers) Register(r chi.Router) {
	r.Get(routes.Pattern(routes.NotesHome), h.home)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireLogin)

		r.Get(routes.Pattern(routes.NotesList), h.list)
		r.Get(routes.Pattern(routes.NotesSuccess), h.success)

		r.Get(routes.Pattern(routes.NotesAdd), h.addForm)
		r.Post(routes.Pattern(routes.NotesAdd), h.create)

		r.Get(routes.Pattern(routes.NotesDetail), h.detail)

		r.Get(routes.Pattern(routes.NotesEdit), h.editForm)
		r.Post(routes.Pattern(routes.NotesEdit), h.update)

		r.Get(routes.Pattern(routes.NotesDelete), h.confirmDelete)
		r.Post(routes.Pattern(routes.NotesDelete), h.delete)
	})
}

func (h *Handlers) home(w http.ResponseWriter, r *http.Request) {
	var user any
	if id, ok := auth.FromContext(r.Context()); ok {
		user = id.Username
	}
	writeJSON(w, http.StatusOK, map[string]any{"page": "home", "user": user})
}

func (h *Handlers) success(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"page": "success"})
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	id := requester(r)
	items, err := h.store.List(r.Context(), id.UserID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"object_list": items})
}

func (h *Handlers) addForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"form": Fields{}})
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	id := requester(r)

	in, err := decodeFields(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	form := clean(in)
	if form.Valid() {
		if err := h.checkSlug(r.Context(), &form, 0); err != nil {
			serverError(w, r, err)
			return
		}
	}
	if !form.Valid() {
		writeForm(w, form)
		return
	}

	n, err := h.store.Create(r.Context(), id.UserID, form.Fields)
	if errors.Is(err, ErrSlugTaken) {
		form.addError("slug", form.Slug+SlugWarning)
		writeForm(w, form)
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().Str("slug", n.Slug).Int64("author_id", n.AuthorID).Msg("note created")
	http.Redirect(w, r, routes.MustReverse(routes.NotesSuccess), http.StatusFound)
}

func (h *Handlers) detail(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ownNote(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"note": n})
}

func (h *Handlers) editForm(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ownNote(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"form": Fields{Title: n.Title, Text: n.Text, Slug: n.Slug},
		"note": n,
	})
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ownNote(w, r)
	if !ok {
		return
	}

	in, err := decodeFields(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	form := clean(in)
	if form.Valid() {
		if err := h.checkSlug(r.Context(), &form, n.ID); err != nil {
			serverError(w, r, err)
			return
		}
	}
	if !form.Valid() {
		writeForm(w, form)
		return
	}

	_, err = h.store.Update(r.Context(), n.AuthorID, n.Slug, form.Fields)
	switch {
	case errors.Is(err, ErrSlugTaken):
		form.addError("slug", form.Slug+SlugWarning)
		writeForm(w, form)
		return
	case errors.Is(err, ErrNotFound):
		notFound(w)
		return
	case err != nil:
		serverError(w, r, err)
		return
	}

	http.Redirect(w, r, routes.MustReverse(routes.NotesSuccess), http.StatusFound)
}

func (h *Handlers) confirmDelete(w http.ResponseWriter, r *http.Request) {
	n, ok := h.ownNote(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"note": n})
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	id := requester(r)

	err := h.store.Delete(r.Context(), id.UserID, chi.URLParam(r, "slug"))
	if errors.Is(err, ErrNotFound) {
		notFound(w)
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().Str("slug", chi.URLParam(r, "slug")).Int64("author_id", id.UserID).Msg("note deleted")
	http.Redirect(w, r, routes.MustReverse(routes.NotesSuccess), http.StatusFound)
}

// ownNote loads the note named by the URL for the requester. A note owned by
// someone else is reported as not found.
func (h *Handlers) ownNote(w http.ResponseWriter, r *http.Request) (Note, bool) {
	id := requester(r)
	n, err := h.store.Get(r.Context(), id.UserID, chi.URLParam(r, "slug"))
	if errors.Is(err, ErrNotFound) {
		notFound(w)
		return Note{}, false
	}
	if err != nil {
		serverError(w, r, err)
		return Note{}, false
	}
	return n, true
}

func (h *Handlers) checkSlug(ctx context.Context, form *Form, excludeID int64) error {
	taken, err := h.store.SlugExists(ctx, form.Slug, excludeID)
	if err != nil {
		return err
	}
	if taken {
		form.addError("slug", form.Slug+SlugWarning)
	}
	return nil
}

// requester is only called behind auth.RequireLogin.
func requester(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}

func writeForm(w http.ResponseWriter, f Form) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"form": f.Fields, "errors": f.Errors})
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

func serverError(w http.ResponseWriter, r *http.Request, err error) {
	hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("notes handler failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
