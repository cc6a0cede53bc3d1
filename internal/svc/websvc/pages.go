package websvc

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

const (
	DashboardTitle = "FishPizzaria - Dashboard"
	SignInTitle    = "FishPizzaria - Faça seu login"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pages renders the HTML views of the web front.
type Pages struct {
	tmpl *template.Template
}

type pageData struct {
	Title string
	Email string
}

// NewPages parses the embedded page templates.
func NewPages() (*Pages, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Pages{tmpl: tmpl}, nil
}

// Dashboard renders the dashboard view. It is shown whether or not a user
// is signed in.
func (p *Pages) Dashboard(w io.Writer) error {
	return p.tmpl.ExecuteTemplate(w, "dashboard", pageData{Title: DashboardTitle})
}

// SignIn renders the sign-in form, prefilled with email.
func (p *Pages) SignIn(w io.Writer, email string) error {
	return p.tmpl.ExecuteTemplate(w, "signin", pageData{Title: SignInTitle, Email: email})
}
