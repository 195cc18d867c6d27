package handler

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// SEOHandler serves the generated site artifacts. robots.txt is computed per
// request host so staging and preview deployments stay out of search indexes;
// only the canonical domain gets crawled.
type SEOHandler struct {
	canonicalHost string
	pages         []string
}

func NewSEOHandler(canonicalHost string) *SEOHandler {
	return &SEOHandler{
		canonicalHost: canonicalHost,
		pages: []string{
			"/",
			"/courses",
			"/about",
			"/contact",
			"/login",
			"/signup",
		},
	}
}

func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	host := requestHost(r)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if host != h.canonicalHost {
		fmt.Fprintf(w, "User-agent: *\nDisallow: /\n")
		return
	}

	fmt.Fprintf(w, "User-agent: *\nAllow: /\nDisallow: /api/\nDisallow: /dashboard\n\n")
	fmt.Fprintf(w, "Sitemap: https://%s/sitemap.xml\n", h.canonicalHost)
}

func (h *SEOHandler) Sitemap(w http.ResponseWriter, _ *http.Request) {
	lastmod := time.Now().UTC().Format("2006-01-02")

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")

	fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>`+"\n")
	fmt.Fprint(w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`+"\n")
	for _, page := range h.pages {
		fmt.Fprintf(w, "  <url><loc>https://%s%s</loc><lastmod>%s</lastmod></url>\n",
			h.canonicalHost, page, lastmod)
	}
	fmt.Fprint(w, "</urlset>\n")
}

func requestHost(r *http.Request) string {
	host := r.Host
	if stripped, _, err := net.SplitHostPort(host); err == nil {
		host = stripped
	}
	return strings.ToLower(host)
}
