// Package templates holds the templ components of the web GUI.
package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so components can emit
// markup without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) int(n int) {
	h.raw(strconv.Itoa(n))
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

type navLink struct {
	Href  string
	Label string
}

var navLinks = []navLink{
	{"/", "Home"},
	{"/app/assess", "Assess"},
	{"/app/history", "History"},
	{"/app/fairness", "Fairness"},
}

// Layout wraps body in the shared page chrome. active is the href of the
// current navigation entry.
func Layout(title, active string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(` | CreditPanel</title><link rel="stylesheet" href="/static/style.css"></head><body>`)
		h.raw(`<header class="topbar"><span class="brand">CreditPanel</span><nav>`)
		for _, l := range navLinks {
			h.raw(`<a href="`)
			h.text(l.Href)
			h.raw(`"`)
			if l.Href == active {
				h.raw(` class="active" aria-current="page"`)
			}
			h.raw(`>`)
			h.text(l.Label)
			h.raw(`</a>`)
		}
		h.raw(`</nav></header><main>`)
		h.component(ctx, body)
		h.raw(`</main><script src="/static/app.js" defer></script></body></html>`)
		return h.err
	})
}
