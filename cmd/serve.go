package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/serp-hawk/outreach-cli/internal/gate"
	"github.com/serp-hawk/outreach-cli/internal/pipeline"
	"github.com/serp-hawk/outreach-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the outreach HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := newRouter(env.Pipeline, env.Store, cfg.Render.Dir)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(p *pipeline.Pipeline, st store.Store, staticDir string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "outreach-cli",
		})
	})

	r.Post("/draft-lead", func(w http.ResponseWriter, req *http.Request) {
		var body pipeline.DraftLeadRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.WebsiteURL == "" || body.CompanyName == "" || body.PrimaryEmail == "" {
			writeError(w, http.StatusBadRequest, "company_name, website_url and primary_email are required")
			return
		}

		result, err := p.DraftLead(req.Context(), body)
		if err != nil {
			writeGateError(w, err)
			return
		}
		resp := map[string]any{"success": true, "draft": result.Draft}
		if result.Warning != "" {
			resp["warning"] = result.Warning
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Post("/send-lead", func(w http.ResponseWriter, req *http.Request) {
		var body pipeline.SendLeadRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.WebsiteURL == "" || body.PrimaryEmail == "" {
			writeError(w, http.StatusBadRequest, "website_url and primary_email are required")
			return
		}

		if err := p.SendLead(req.Context(), body); err != nil {
			writeGateError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	r.Post("/generate", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			URLs        []string `json:"urls"`
			Concurrency int      `json:"concurrency,omitempty"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(body.URLs) == 0 {
			writeError(w, http.StatusBadRequest, "urls is required")
			return
		}

		items := p.Generate(req.Context(), body.URLs, body.Concurrency)
		writeJSON(w, http.StatusOK, items)
	})

	r.Post("/send", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			EmailData *struct {
				ToEmail string `json:"to_email"`
				Subject string `json:"subject"`
				Body    string `json:"body"`
			} `json:"email_data"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.EmailData == nil || body.EmailData.ToEmail == "" {
			writeError(w, http.StatusBadRequest, "email_data with to_email is required")
			return
		}

		if err := p.SendAdHoc(req.Context(), body.EmailData.ToEmail, body.EmailData.Subject, body.EmailData.Body); err != nil {
			writeGateError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	r.Get("/activities", func(w http.ResponseWriter, req *http.Request) {
		limit := 10
		if raw := req.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		activities, err := st.ListActivities(req.Context(), limit)
		if err != nil {
			zap.L().Error("list activities failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list activities")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"activities": activities})
	})

	// Generated summary cards.
	fs := http.StripPrefix("/static/generated_images/", http.FileServer(http.Dir(staticDir)))
	r.Get("/static/generated_images/*", fs.ServeHTTP)

	return r
}

// writeGateError maps eligibility failures onto HTTP statuses: duplicates
// conflict, rate limits throttle, everything else is a server error.
func writeGateError(w http.ResponseWriter, err error) {
	var dup *gate.DuplicateProspectError
	var rate *gate.RateLimitExceededError
	switch {
	case errors.As(err, &dup):
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "error": dup.Error()})
	case errors.As(err, &rate):
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"success": false, "error": rate.Error()})
	default:
		zap.L().Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
