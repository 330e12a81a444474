package notes

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"example.com/ya-note/internal/stringsx"
)

const (
	MaxTitleLength = 100
	MaxSlugLength  = 100

	maxBodyBytes = 1 << 20

	// SlugWarning is appended to a colliding slug in the form error.
	SlugWarning = " - such a slug already exists, please choose a unique value!"
)

var (
	errInvalidForm = errors.New("invalid form body")
	slugPattern    = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Form is what the add and edit pages render: current values plus field errors.
type Form struct {
	Fields
	Errors map[string]string `json:"errors,omitempty"`
}

func (f *Form) addError(field, msg string) {
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}
	f.Errors[field] = msg
}

func (f *Form) Valid() bool { return len(f.Errors) == 0 }

// decodeFields reads a note form from a urlencoded or JSON body.
// Any author field is ignored. Bodies over maxBodyBytes are rejected.
func decodeFields(w http.ResponseWriter, r *http.Request) (Fields, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var f Fields
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			return Fields{}, errInvalidForm
		}
		return f, nil
	}
	if err := r.ParseForm(); err != nil {
		return Fields{}, errInvalidForm
	}
	return Fields{
		Title: r.PostForm.Get("title"),
		Text:  r.PostForm.Get("text"),
		Slug:  r.PostForm.Get("slug"),
	}, nil
}

// clean trims and validates the fields and fills in a missing slug.
// Slug uniqueness is checked separately against the store.
func clean(in Fields) Form {
	f := Form{Fields: Fields{
		Title: strings.TrimSpace(in.Title),
		Text:  strings.TrimSpace(in.Text),
		Slug:  strings.TrimSpace(in.Slug),
	}}

	switch {
	case stringsx.IsEmpty(f.Title):
		f.addError("title", "This field is required.")
	case stringsx.Length(f.Title) > MaxTitleLength:
		f.addError("title", "Ensure this value has at most 100 characters.")
	}
	if stringsx.IsEmpty(f.Text) {
		f.addError("text", "This field is required.")
	}

	switch {
	case f.Slug == "":
		if _, bad := f.Errors["title"]; !bad {
			f.Slug = DeriveSlug(f.Title)
		}
	case stringsx.Length(f.Slug) > MaxSlugLength:
		f.addError("slug", "Ensure this value has at most 100 characters.")
	case !slugPattern.MatchString(f.Slug):
		f.addError("slug", "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	}
	return f
}

// DeriveSlug transliterates title into a URL-safe slug of at most MaxSlugLength
// characters. The result is never empty.
func DeriveSlug(title string) string {
	s := strings.Trim(stringsx.Clip(slug.Make(title), MaxSlugLength), "-_")
	if s == "" {
		s = "note-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	return s
}
