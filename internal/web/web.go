// Package web holds the HTML templates and static assets of the storefront
// and the gin renderer that serves them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin/render"
	"github.com/shopspring/decimal"

	"vnfurniture/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Pages are the routable screens; each is parsed together with the layout.
var Pages = []string{"home", "login", "signup", "admin", "cart", "profile"}

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Kind    string // "success" or "error"
	Message string
}

// View is the data every page template receives.
type View struct {
	Title            string
	User             *models.User
	CanManageCatalog bool
	CartCount        int
	Flashes          []Flash
	Data             any
}

// Renderer implements gin's render.HTMLRender over one template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return "$" + d.StringFixed(2) },
	"label": func(c models.Category) string { return c.Label() },
	// inline images we generated ourselves
	"dataURI": func(s string) template.URL { return template.URL(s) },
}

// NewRenderer parses every page with the shared layout and navbar.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(Pages))}
	for _, page := range Pages {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/navbar.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		panic("web: unknown page " + name)
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}

// Static serves the embedded static assets.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
