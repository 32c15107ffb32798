package handlers

import (
	"fmt"
	"net/http"
)

// PageHandler serves the minimal server-rendered shells. All real UI lives
// in the web client; these pages exist so the session middleware has
// something to guard.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	writePage(w, "Mino", `<p>Design in your live product.</p><p><a href="/login">Sign in</a></p>`)
}

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	writePage(w, "Sign in", `
<form method="post" action="/auth/login?provider=github"><button type="submit">Continue with GitHub</button></form>
<form method="post" action="/auth/login?provider=google"><button type="submit">Continue with Google</button></form>
<form method="post" action="/auth/dev-login"><button type="submit">Dev login</button></form>`)
}

func (h *PageHandler) Projects(w http.ResponseWriter, r *http.Request) {
	writePage(w, "Projects", `<div id="app" data-page="projects"></div>`)
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprint(w, "<!doctype html><html><head><title>Not found</title></head><body><h1>Not found</h1><p>This page does not exist.</p></body></html>")
}

func (h *PageHandler) AuthError(w http.ResponseWriter, r *http.Request) {
	writePage(w, "Something went wrong", `<p>We could not sign you in. Please try again.</p><p><a href="/login">Back to sign in</a></p>`)
}

func writePage(w http.ResponseWriter, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!doctype html><html><head><title>%s</title></head><body><h1>%s</h1>%s</body></html>", title, title, body)
}
