package web

import "embed"

// Templates embeds HTML templates.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static embeds static assets.
//
//go:embed static/**/*
var Static embed.FS

// Locales embeds the translation catalogs, one YAML file per locale.
//
//go:embed locales/*.yaml
var Locales embed.FS
