// Package site serves the embedded age-group chart page.
package site

import (
	"context"
	"net/http"
)

// Register mounts the chart page and its assets at the root of mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", http.FileServer(FS()))
}
