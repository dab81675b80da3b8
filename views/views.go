package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"movieflex/config"
	"movieflex/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Name identifies a page view.
type Name string

const (
	Home        Name = "home"
	Movies      Name = "movies"
	Series      Name = "series"
	MovieDetail Name = "movie"
	ShowDetail  Name = "tv"
	Search      Name = "search"
	About       Name = "about"
)

// Preparation says when a view's templates are parsed.
type Preparation int

const (
	Eager Preparation = iota // at start-up
	Lazy                     // on first navigation
)

// Route maps a URL pattern to a view.
type Route struct {
	Pattern string
	View    Name
	Prep    Preparation
}

// Routes is the navigation table. Detail ids must be numeric.
var Routes = []Route{
	{Pattern: "/", View: Home, Prep: Eager},
	{Pattern: "/movies", View: Movies, Prep: Eager},
	{Pattern: "/series", View: Series, Prep: Eager},
	{Pattern: "/movie/{id:[0-9]+}", View: MovieDetail, Prep: Lazy},
	{Pattern: "/tv/{id:[0-9]+}", View: ShowDetail, Prep: Lazy},
	{Pattern: "/search", View: Search, Prep: Lazy},
	{Pattern: "/search/{query}", View: Search, Prep: Lazy},
	{Pattern: "/about", View: About, Prep: Lazy},
}

// sharedTemplates are parsed into every view.
var sharedTemplates = []string{"templates/layout.html", "templates/partials.html"}

// Page is the data every view renders with.
type Page struct {
	Theme config.ThemeSettings
	Title string
	Path  string
	Query string
	Data  any
}

type view struct {
	once sync.Once
	mu   sync.RWMutex
	tmpl *template.Template
	err  error
}

func (v *view) prepare(load func() (*template.Template, error)) (*template.Template, error) {
	v.once.Do(func() {
		tmpl, err := load()
		v.mu.Lock()
		v.tmpl, v.err = tmpl, err
		v.mu.Unlock()
	})
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tmpl, v.err
}

func (v *view) ready() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tmpl != nil
}

// Renderer owns the parsed view templates and the theme they render with.
type Renderer struct {
	fsys  fs.FS
	theme config.ThemeSettings
	funcs template.FuncMap
	views map[Name]*view
}

// New prepares eager views immediately and fails if any of them is broken.
func New(theme config.ThemeSettings) (*Renderer, error) {
	return NewWithFS(templateFS, theme)
}

func NewWithFS(fsys fs.FS, theme config.ThemeSettings) (*Renderer, error) {
	r := &Renderer{
		fsys:  fsys,
		theme: theme,
		funcs: funcMap(),
		views: make(map[Name]*view),
	}
	for _, route := range Routes {
		if _, ok := r.views[route.View]; !ok {
			r.views[route.View] = &view{}
		}
	}
	for _, route := range Routes {
		if route.Prep != Eager {
			continue
		}
		if _, err := r.prepare(route.View); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Renderer) Theme() config.ThemeSettings {
	return r.theme
}

// Prepared reports whether a view's templates have been parsed.
func (r *Renderer) Prepared(name Name) bool {
	v, ok := r.views[name]
	return ok && v.ready()
}

func (r *Renderer) prepare(name Name) (*template.Template, error) {
	v, ok := r.views[name]
	if !ok {
		return nil, fmt.Errorf("unknown view %q", name)
	}
	return v.prepare(func() (*template.Template, error) {
		started := time.Now()
		files := append(append([]string{}, sharedTemplates...), "templates/"+string(name)+".html")
		tmpl, err := template.New(string(name)).Funcs(r.funcs).ParseFS(r.fsys, files...)
		if err != nil {
			log.Printf("[views] prepare %s failed: %v", name, err)
			return nil, fmt.Errorf("prepare view %s: %w", name, err)
		}
		log.Printf("[views] prepared %s in %s", name, time.Since(started).Round(time.Microsecond))
		return tmpl, nil
	})
}

// Render writes a full HTML page for the view. The view is prepared on
// first use.
func (r *Renderer) Render(w io.Writer, name Name, page Page) error {
	tmpl, err := r.prepare(name)
	if err != nil {
		return err
	}
	page.Theme = r.theme
	return tmpl.ExecuteTemplate(w, "base", page)
}

var cssColor = regexp.MustCompile(`^#[0-9a-fA-F]{3,8}$`)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"color": func(c string) template.CSS {
			if cssColor.MatchString(strings.TrimSpace(c)) {
				return template.CSS(strings.TrimSpace(c))
			}
			return template.CSS("#000000")
		},
		"imageURL": func(img *models.Image) string {
			if img == nil {
				return ""
			}
			return img.URL
		},
		"plural": func(n int, singular string) string {
			if n > 1 {
				return fmt.Sprintf("%d %ss", n, singular)
			}
			return fmt.Sprintf("%d %s", n, singular)
		},
		"round": func(f float64) int {
			return int(math.Round(f))
		},
		"date": func(iso string) string {
			t, err := time.Parse("2006-01-02", iso)
			if err != nil {
				return iso
			}
			return t.Format("02/01/2006")
		},
		"country": func(codes []string) string {
			if len(codes) == 0 {
				return "FR"
			}
			return codes[0]
		},
		"certification": func(adult bool) string {
			if adult {
				return "R"
			}
			return "PG"
		},
		"genres": func(genres []models.Genre) []string {
			names := make([]string, 0, len(genres))
			for _, g := range genres {
				if g.Name != "" {
					names = append(names, g.Name)
				}
			}
			return names
		},
	}
}
