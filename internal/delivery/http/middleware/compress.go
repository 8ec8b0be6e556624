package middleware

import (
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/websocket"
)

// Compress gzips responses. Websocket upgrades bypass it since the gzip
// writer cannot be hijacked.
func Compress(next http.Handler) http.Handler {
	gz := gziphandler.GzipHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}
