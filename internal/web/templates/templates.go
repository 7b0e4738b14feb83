// Package templates renders the gateway's server-side HTML pages
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/cityhunt/cityhunt/internal/client"
	"github.com/cityhunt/cityhunt/internal/model"
	"github.com/cityhunt/cityhunt/internal/web/middleware"
)

//go:embed *.html
var files embed.FS

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"login", "admin_login", "hunt", "admin"} {
		pages[name] = template.Must(template.ParseFS(files, "base.html", name+".html"))
	}
}

// Render writes the named page to w
func Render(w io.Writer, page string, data any) error {
	tmpl, ok := pages[page]
	if !ok {
		return fmt.Errorf("unknown page: %s", page)
	}
	return tmpl.ExecuteTemplate(w, "base.html", data)
}

// PageData is the fields every page shares
type PageData struct {
	Title string
	Flash *middleware.FlashMessage
}

// LoginData renders the player login page
type LoginData struct {
	PageData
	Email string
	Phone string
	Error string
}

// AdminLoginData renders the operator login page
type AdminLoginData struct {
	PageData
	Username string
	Error    string
}

// HuntData renders the player's hunt screen
type HuntData struct {
	PageData
	Contact          string
	Completed        bool
	Step             *model.Step
	Progress         *model.Progress
	RevealedLocation string
}

// Percent returns hunt completion as a 0-100 integer
func (d HuntData) Percent() int {
	if d.Completed {
		return 100
	}
	if d.Progress == nil {
		return 0
	}
	return d.Progress.Percent()
}

// AdminData renders the operator dashboard
type AdminData struct {
	PageData
	Username string
	Users    []client.AdminUser
	Stats    *client.StatsResponse
}
