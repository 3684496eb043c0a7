package web

import "embed"

// TemplatesFS embeds the dashboard and error page templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the chart script and stylesheet.
//
//go:embed static/*
var StaticFS embed.FS
