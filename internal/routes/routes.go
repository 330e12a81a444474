package routes

import (
	"fmt"
	"net/url"
	"strings"
)

type Name string

const (
	NotesHome    Name = "notes:home"
	NotesList    Name = "notes:list"
	NotesAdd     Name = "notes:add"
	NotesDetail  Name = "notes:detail"
	NotesEdit    Name = "notes:edit"
	NotesDelete  Name = "notes:delete"
	NotesSuccess Name = "notes:success"

	UsersLogin  Name = "users:login"
	UsersLogout Name = "users:logout"
	UsersSignup Name = "users:signup"

	Health Name = "health"
)

// Patterns are chi route patterns; {slug} is the only parameter in use.
var patterns = map[Name]string{
	NotesHome:    "/",
	NotesList:    "/notes/",
	NotesAdd:     "/add/",
	NotesDetail:  "/note/{slug}/",
	NotesEdit:    "/edit/{slug}/",
	NotesDelete:  "/delete/{slug}/",
	NotesSuccess: "/done/",

	UsersLogin:  "/auth/login/",
	UsersLogout: "/auth/logout/",
	UsersSignup: "/auth/signup/",

	Health: "/health",
}

// Pattern returns the chi pattern registered for name.
func Pattern(name Name) string {
	p, ok := patterns[name]
	if !ok {
		panic(fmt.Sprintf("routes: unknown route %q", name))
	}
	return p
}

// Reverse builds the path for name, substituting args into its parameters in order.
func Reverse(name Name, args ...string) (string, error) {
	p, ok := patterns[name]
	if !ok {
		return "", fmt.Errorf("routes: unknown route %q", name)
	}

	var b strings.Builder
	used := 0
	for {
		open := strings.IndexByte(p, '{')
		if open < 0 {
			b.WriteString(p)
			break
		}
		end := strings.IndexByte(p[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("routes: malformed pattern %q", patterns[name])
		}
		if used >= len(args) {
			return "", fmt.Errorf("routes: %q expects more than %d argument(s)", name, len(args))
		}
		if args[used] == "" {
			return "", fmt.Errorf("routes: empty argument %d for %q", used, name)
		}
		b.WriteString(p[:open])
		b.WriteString(url.PathEscape(args[used]))
		used++
		p = p[open+end+1:]
	}
	if used != len(args) {
		return "", fmt.Errorf("routes: %q takes %d argument(s), got %d", name, used, len(args))
	}
	return b.String(), nil
}

func MustReverse(name Name, args ...string) string {
	p, err := Reverse(name, args...)
	if err != nil {
		panic(err)
	}
	return p
}

// LoginRedirect returns the login path carrying next as its return target.
// Slashes in next stay literal so the query reads like the requested path.
func LoginRedirect(next string) string {
	login := MustReverse(UsersLogin)
	if next == "" {
		return login
	}
	q := strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
	return login + "?next=" + q
}

// SafeNext reports whether next is a local path that may be redirected to after login.
func SafeNext(next string) bool {
	if next == "" || next[0] != '/' {
		return false
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return false
	}
	u, err := url.Parse(next)
	return err == nil && u.Scheme == "" && u.Host == ""
}
