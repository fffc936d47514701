package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
)

type identityEntry struct {
	UserID      string  `json:"userId"`
	DisplayName *string `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

func main() {
	var (
		port    = flag.String("port", "9099", "port to listen on")
		data    = flag.String("data", "mock-identities.json", "path to mock data file")
		verbose = flag.Bool("log", false, "enable request logging")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	// Keyed by bearer token.
	var payload map[string]identityEntry
	if err := json.Unmarshal(file, &payload); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/identity/resolve", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		entry, ok := payload[token]
		if !ok {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		if *verbose {
			log.Printf("resolved token for user %s", entry.UserID)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entry); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	addr := ":" + *port
	log.Printf("mock identity provider listening on %s", addr)
	log.Printf("loaded %d mock identities", len(payload))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
