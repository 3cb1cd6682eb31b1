package web

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vnfurniture/internal/models"
)

func renderPage(t *testing.T, r *Renderer, page string, view View) string {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, r.Instance(page, view).Render(w))
	return w.Body.String()
}

func TestRendererParsesEveryPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	for _, page := range Pages {
		assert.Contains(t, r.pages, page)
	}
	assert.Panics(t, func() { r.Instance("missing", nil) })
}

func TestNavbar(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	data := struct{ Email string }{}

	anon := renderPage(t, r, "login", View{Title: "Login", Data: data})
	assert.Contains(t, anon, `href="/signup"`)
	assert.NotContains(t, anon, "Sign Out")
	assert.Contains(t, anon, `<span class="badge">0</span>`)

	customer := renderPage(t, r, "login", View{Title: "Login", User: &models.User{Email: "a@b.c"}, Data: data})
	assert.Contains(t, customer, "Sign Out")
	assert.NotContains(t, customer, `href="/admin"`)

	admin := renderPage(t, r, "login", View{Title: "Login", User: &models.User{Email: "a@b.c"}, CanManageCatalog: true, Data: data})
	assert.Contains(t, admin, `href="/admin"`)
}

func TestHomeRendersProducts(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	img := "http://cdn.test/products/product-images/a.png"
	data := struct {
		Filters  []models.Category
		Selected models.Category
		Products []models.Product
	}{
		Filters:  append([]models.Category{models.CategoryAll}, models.Categories()...),
		Selected: models.CategoryBedroom,
		Products: []models.Product{{ID: uuid.New(), Name: "Bed <king>", Price: decimal.RequireFromString("499"), ImageURL: &img}},
	}

	html := renderPage(t, r, "home", View{Title: "Home", Flashes: []Flash{{Kind: "error", Message: "Nope"}}, Data: data})
	assert.Contains(t, html, "Bed &lt;king&gt;")
	assert.Contains(t, html, "$499.00")
	assert.Contains(t, html, `class="pill pill-active">Bedroom`)
	assert.Contains(t, html, "Living room")
	assert.Contains(t, html, `toast-error`)
}

func TestStaticServesDropzone(t *testing.T) {
	f, err := Static().Open("dropzone.js")
	require.NoError(t, err)
	defer f.Close()
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Please upload an image file")
}
