package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/buker/latamai/internal/backend"
	"github.com/buker/latamai/internal/chat"
	"github.com/buker/latamai/internal/markdown"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// ThemeStorageKey is the localStorage key holding the web theme mode.
const ThemeStorageKey = "latamai-theme-mode"

type navLink struct {
	Href  string
	Label string
}

type coverageItem struct {
	Title string
	Text  string
}

var (
	landingNav = []navLink{
		{Href: "#coverage", Label: "Cobertura"},
		{Href: "#how", Label: "Como funciona"},
		{Href: "#countries", Label: "Paises"},
	}

	landingCoverage = []coverageItem{
		{Title: "Cultura", Text: "Contexto de tradiciones, lenguas, patrimonio y expresiones sociales en LATAM."},
		{Title: "Biodiversidad", Text: "Fauna, flora, ecosistemas y riesgos ambientales con enfoque regional comparativo."},
		{Title: "Indicadores", Text: "HDI, desarrollo humano y variables socioeconomicas con trazabilidad de fuentes."},
		{Title: "Defensa", Text: "Panorama institucional y capacidades publicas en fuerzas armadas de la region."},
	}

	landingSteps = []string{
		"El backend recupera contexto relevante segun tema y pais.",
		"El chat responde en formato claro, con fuentes y fecha de corte.",
	}

	// Countries lists the target countries of the assistant.
	Countries = []string{
		"Argentina", "Bolivia", "Brasil", "Chile", "Colombia", "Costa Rica", "Cuba",
		"Ecuador", "El Salvador", "Guatemala", "Haiti", "Honduras", "Jamaica", "Mexico",
		"Nicaragua", "Panama", "Paraguay", "Peru", "Republica Dominicana", "Uruguay", "Venezuela",
	}
)

type pageData struct {
	Title       string
	Description string
	StorageKey  string

	Nav       []navLink
	Coverage  []coverageItem
	Steps     []string
	Countries []string

	Greeting       template.HTML
	GreetingText   string
	QuickPrompts   []string
	FallbackError  string
	ConnectionLost string
}

func parsePages() (*template.Template, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	return tmpl, nil
}

func newPageData() pageData {
	return pageData{
		Title:          "LatamAI Web",
		Description:    "Agente de IA de texto especializado en Latinoamerica: paises, biodiversidad, cultura, comida y defensa.",
		StorageKey:     ThemeStorageKey,
		Nav:            landingNav,
		Coverage:       landingCoverage,
		Steps:          landingSteps,
		Countries:      Countries,
		Greeting:       template.HTML(markdown.HTML(markdown.Render(chat.Greeting))),
		GreetingText:   chat.Greeting,
		QuickPrompts:   chat.QuickPrompts,
		FallbackError:  backend.MsgChatGenericFallback,
		ConnectionLost: backend.MsgConnectionFallback,
	}
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "landing.html")
}

func (s *Server) handleChatPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "chat.html")
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.ExecuteTemplate(w, name, newPageData()); err != nil {
		s.logger.Error("failed to render page", "page", name, "err", err, "request_id", RequestID(r.Context()))
	}
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}
