package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jit-sim/jit-sim/sim/layout"
)

const banner = "Bem-vindo à Simulação Just-In-Time!"

var serveAddr string // Listen address of the HTTP server

// serveCmd exposes layout runs over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve POST /simular over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)
		srv := &http.Server{
			Addr:              serveAddr,
			Handler:           newHandler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		logrus.Infof("Listening on %s", serveAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Server failed: %v", err)
		}
	},
}

// simulateRequest is the body of POST /simular.
type simulateRequest struct {
	Layout     string            `json:"layout"`
	Parametros layout.Parameters `json:"parametros"`
}

func newHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, banner)
	})
	mux.HandleFunc("POST /simular", handleSimulate)
	return recoverPanics(mux)
}

func handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	logrus.Debugf("simulate request: layout=%q params=%v", req.Layout, req.Parametros.Keys())

	res, err := layout.Run(req.Layout, req.Parametros)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, layout.ErrConfiguration) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// recoverPanics turns an invariant violation inside one run into a 500
// instead of taking the server down.
func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logrus.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, v)
				writeError(w, http.StatusInternalServerError, fmt.Errorf("%v", v))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"erro": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("writing response: %v", err)
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":5000", "Listen address")
	serveCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
}
