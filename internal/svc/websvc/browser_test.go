package websvc_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/fishpizzaria/internal/svc/websvc"
)

func TestResponseCookieStore_EncodesValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "jwt", value: "eyJh.eyJz-_.sig", want: "eyJh.eyJz-_.sig"},
		{name: "separators", value: `a;b\c`, want: "a%3Bb%5Cc"},
		{name: "quote and space", value: `"x y"`, want: "%22x%20y%22"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			cookies := websvc.NewResponseCookieStore(rec, true)

			require.NoError(t, cookies.SetCookie("token", tt.value, websvc.CookieOptions{MaxAge: 60, Path: "/"}))

			written := rec.Result().Cookies()
			require.Len(t, written, 1)
			assert.Equal(t, tt.want, written[0].Value)
			assert.True(t, written[0].Secure)
			assert.True(t, written[0].HttpOnly)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(written[0])

			got, ok := websvc.CookieValue(req, "token")
			require.True(t, ok)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestCookieValue_Missing(t *testing.T) {
	t.Parallel()

	_, ok := websvc.CookieValue(httptest.NewRequest(http.MethodGet, "/", nil), "token")
	assert.False(t, ok)
}

func TestRedirectNavigator(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	nav := websvc.NewRedirectNavigator(rec, httptest.NewRequest(http.MethodPost, "/signin", nil))

	require.NoError(t, nav.Navigate(context.Background(), "/dashboard"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}
