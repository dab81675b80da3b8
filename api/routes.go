package api

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"runtime"
	"time"

	"github.com/gorilla/mux"

	"movieflex/handlers"
	"movieflex/views"
)

// NewRouter returns a router that matches on the encoded path, so search
// queries containing a slash stay in one segment.
func NewRouter() *mux.Router {
	r := mux.NewRouter().UseEncodedPath()
	r.Use(accessLogMiddleware)
	return r
}

// accessLogMiddleware logs one line per request.
func accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[http] %s %s %d %s", r.Method, r.URL.RequestURI(), rec.status, time.Since(started).Round(time.Millisecond))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// localhostOnlyMiddleware restricts access to localhost requests only
func localhostOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			http.Error(w, "Debug endpoints only accessible from localhost", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts the JSON API under /api and the HTML views at the root.
// livePages reports the number of open detail pages for the runtime stats.
func Register(
	r *mux.Router,
	siteHandler *handlers.SiteHandler,
	metadataHandler *handlers.MetadataHandler,
	livePages func() int,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	api.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api.HandleFunc("/home", metadataHandler.Home).Methods(http.MethodGet)
	api.HandleFunc("/movies", metadataHandler.Movies).Methods(http.MethodGet)
	api.HandleFunc("/series", metadataHandler.Series).Methods(http.MethodGet)
	api.HandleFunc("/search", metadataHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/search", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/titles/{kind}/{id:[0-9]+}", metadataHandler.Title).Methods(http.MethodGet)
	api.HandleFunc("/titles/{kind}/{id:[0-9]+}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/pages/{pageID}", metadataHandler.Page).Methods(http.MethodGet)
	api.HandleFunc("/pages/{pageID}", metadataHandler.ClosePage).Methods(http.MethodDelete)
	api.HandleFunc("/pages/{pageID}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/pages/{pageID}/seasons/{season:[0-9]+}", metadataHandler.SeasonEpisodes).Methods(http.MethodGet)
	api.HandleFunc("/pages/{pageID}/seasons/{season:[0-9]+}", handleOptions).Methods(http.MethodOptions)

	pprofRouter := api.PathPrefix("/debug/pprof").Subrouter()
	pprofRouter.Use(localhostOnlyMiddleware)
	pprofRouter.HandleFunc("/", pprof.Index)
	pprofRouter.HandleFunc("/cmdline", pprof.Cmdline)
	pprofRouter.HandleFunc("/profile", pprof.Profile)
	pprofRouter.HandleFunc("/symbol", pprof.Symbol)
	pprofRouter.HandleFunc("/trace", pprof.Trace)
	pprofRouter.HandleFunc("/allocs", pprof.Handler("allocs").ServeHTTP)
	pprofRouter.HandleFunc("/block", pprof.Handler("block").ServeHTTP)
	pprofRouter.HandleFunc("/goroutine", pprof.Handler("goroutine").ServeHTTP)
	pprofRouter.HandleFunc("/heap", pprof.Handler("heap").ServeHTTP)
	pprofRouter.HandleFunc("/mutex", pprof.Handler("mutex").ServeHTTP)
	pprofRouter.HandleFunc("/threadcreate", pprof.Handler("threadcreate").ServeHTTP)

	runtimeRouter := api.PathPrefix("/debug/runtime").Subrouter()
	runtimeRouter.Use(localhostOnlyMiddleware)
	runtimeRouter.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		stats := map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"heapAlloc":  m.HeapAlloc,
			"heapInuse":  m.HeapInuse,
			"numGC":      m.NumGC,
			"numCPU":     runtime.NumCPU(),
		}
		if livePages != nil {
			stats["pages"] = livePages()
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	}).Methods(http.MethodGet)

	for _, route := range views.Routes {
		r.HandleFunc(route.Pattern, siteHandler.Handler(route.View)).Methods(http.MethodGet, http.MethodHead)
	}
}
