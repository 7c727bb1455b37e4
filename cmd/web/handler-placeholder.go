package main

import (
	"fmt"
	"html"
	"net/http"
	"strconv"
)

const (
	defaultPlaceholderSize = 100
	maxPlaceholderSize     = 1000
	maxPlaceholderText     = 40
)

func placeholderDimension(r *http.Request, key string) int {
	n, err := strconv.Atoi(trimmedQuery(r, key))
	if err != nil || n <= 0 {
		return defaultPlaceholderSize
	}
	return min(n, maxPlaceholderSize)
}

// placeholderSVG renders the stand-in image for characters and comics without a catalog thumbnail.
func (app *application) placeholderSVG(w http.ResponseWriter, r *http.Request) {
	width := placeholderDimension(r, "width")
	height := placeholderDimension(r, "height")
	text := []rune(trimmedQuery(r, "text"))
	if len(text) > maxPlaceholderText {
		text = text[:maxPlaceholderText]
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
		`<rect width="100%%" height="100%%" fill="#e5e7eb"/>`+
		`<text x="50%%" y="50%%" dominant-baseline="middle" text-anchor="middle" font-family="sans-serif" `+
		`font-size="12" fill="#6b7280">%s</text></svg>`,
		width, height, width, height, html.EscapeString(string(text)))
}
