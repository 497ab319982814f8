package web

import "embed"

// StaticFS holds the embedded static assets (stylesheet and form script).
//
//go:embed static/*
var StaticFS embed.FS

// fairnessMarkdown is the source of the fairness page.
//
//go:embed content/fairness.md
var fairnessMarkdown string
