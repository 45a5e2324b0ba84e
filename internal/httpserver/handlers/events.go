package handlers

import (
	"fmt"
	"net/http"

	"github.com/curioapp/curio/internal/httpserver/deps"
	"github.com/curioapp/curio/internal/store"
)

// Events streams change notifications as server-sent events. The widget
// uses them to reproject the bookmark and collection panels without
// polling. An optional "topic" query parameter narrows the stream.
func Events(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		var topics []store.Topic
		for _, t := range r.URL.Query()["topic"] {
			topics = append(topics, store.Topic(t))
		}

		sub := d.Store.Subscribe(topics...)
		defer sub.Close()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		// Initial comment so proxies open the stream right away.
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case topic, ok := <-sub.C:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: %s\ndata: {}\n\n", topic)
				flusher.Flush()
			}
		}
	}
}
