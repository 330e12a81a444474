package routes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReverse_Table(t *testing.T) {
	tests := []struct {
		name Name
		args []string
		want string
	}{
		{NotesHome, nil, "/"},
		{NotesList, nil, "/notes/"},
		{NotesAdd, nil, "/add/"},
		{NotesDetail, []string{"note1"}, "/note/note1/"},
		{NotesEdit, []string{"note_slug1"}, "/edit/note_slug1/"},
		{NotesDelete, []string{"a-b"}, "/delete/a-b/"},
		{NotesSuccess, nil, "/done/"},
		{UsersLogin, nil, "/auth/login/"},
		{UsersLogout, nil, "/auth/logout/"},
		{UsersSignup, nil, "/auth/signup/"},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			got, err := Reverse(tt.name, tt.args...)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestReverse_Errors(t *testing.T) {
	_, err := Reverse("notes:missing")
	require.Error(t, err)

	_, err = Reverse(NotesDetail)
	require.Error(t, err)

	_, err = Reverse(NotesDetail, "")
	require.Error(t, err)

	_, err = Reverse(NotesList, "extra")
	require.Error(t, err)

	require.Panics(t, func() { MustReverse(NotesEdit) })
}

func TestReverse_EscapesSlug(t *testing.T) {
	got, err := Reverse(NotesDetail, "a b/c")
	require.NoError(t, err)
	require.Equal(t, "/note/a%20b%2Fc/", got)
}

func TestLoginRedirect(t *testing.T) {
	require.Equal(t, "/auth/login/", LoginRedirect(""))
	require.Equal(t, "/auth/login/?next=/add/", LoginRedirect("/add/"))
	require.Equal(t, "/auth/login/?next=/note/note1/", LoginRedirect("/note/note1/"))
	require.Equal(t, "/auth/login/?next=/notes/%3Fx%3D1%26y%3D2", LoginRedirect("/notes/?x=1&y=2"))
}

func TestSafeNext(t *testing.T) {
	require.True(t, SafeNext("/notes/"))
	require.True(t, SafeNext("/note/x/?a=1"))
	require.False(t, SafeNext(""))
	require.False(t, SafeNext("notes/"))
	require.False(t, SafeNext("//evil.example/"))
	require.False(t, SafeNext("/\\evil.example"))
	require.False(t, SafeNext("https://evil.example/"))
}
