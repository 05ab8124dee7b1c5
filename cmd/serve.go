package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/broker-finder/internal/config"
	"github.com/sells-group/broker-finder/internal/dedupe"
	"github.com/sells-group/broker-finder/internal/forward"
	"github.com/sells-group/broker-finder/internal/model"
	"github.com/sells-group/broker-finder/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for searches, comparisons, and forwarding",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newMux(env, cfg.Search.MaxRadiusKm),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newMux builds the API routes.
func newMux(env *pipelineEnv, maxRadiusKm int) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/search", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Location string `json:"location"`
			Radius   int    `json:"radius"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Location == "" {
			writeError(w, http.StatusBadRequest, "location is required")
			return
		}
		if req.Radius < 1 || req.Radius > maxRadiusKm {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("radius must be between 1 and %d km", maxRadiusKm))
			return
		}

		result, err := env.Pipeline.Run(r.Context(), req.Location, req.Radius)
		if eris.Is(err, pipeline.ErrLocationNotFound) {
			writeError(w, http.StatusNotFound, "location not resolvable")
			return
		}
		if err != nil {
			zap.L().Error("api: search failed",
				zap.String("location", req.Location),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "search failed")
			return
		}
		env.Cache.Put(result)
		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("GET /api/results/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid result id")
			return
		}
		result, ok := env.Cache.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "result not found")
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("POST /api/compare", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ResultID string                       `json:"result_id"`
			Existing []model.ImportedBrokerRecord `json:"existing"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, ok := lookupResult(env.Cache, req.ResultID)
		if !ok {
			writeError(w, http.StatusNotFound, "result not found")
			return
		}

		duplicates, fresh := dedupe.Partition(result.Brokers, req.Existing)
		writeJSON(w, http.StatusOK, map[string]any{
			"result_id":  result.ID,
			"duplicates": emptyIfNil(duplicates),
			"new":        emptyIfNil(fresh),
		})
	})

	mux.HandleFunc("POST /api/forward", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ResultID string `json:"result_id"`
			Format   string `json:"format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, ok := lookupResult(env.Cache, req.ResultID)
		if !ok {
			writeError(w, http.StatusNotFound, "result not found")
			return
		}

		formatName := req.Format
		if formatName == "" {
			formatName = env.Settings.Forward().Format
		}
		format := forward.ParseFormat(formatName)
		payloads := make([]map[string]any, len(result.Brokers))
		for i, b := range result.Brokers {
			payloads[i] = forward.BuildPayload(b, format)
		}
		writeJSON(w, http.StatusOK, env.Forwarder.SendBatch(r.Context(), payloads))
	})

	mux.HandleFunc("GET /api/settings", func(w http.ResponseWriter, r *http.Request) {
		s := env.Settings.Forward()
		writeJSON(w, http.StatusOK, map[string]any{
			"url":              s.URL,
			"format":           s.Format,
			"timeout_secs":     s.TimeoutSecs,
			"retries":          s.Retries,
			"has_bearer_token": s.BearerToken != "",
			"has_api_key":      s.APIKey != "",
		})
	})

	mux.HandleFunc("PUT /api/settings", func(w http.ResponseWriter, r *http.Request) {
		var req config.ForwardConfig
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := env.Settings.UpdateForward(req); err != nil {
			zap.L().Error("api: settings update failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not persist settings")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	})

	return mux
}

// lookupResult finds a cached result by id, or the latest when id is empty.
func lookupResult(cache *pipeline.Cache, id string) (*pipeline.Result, bool) {
	if id == "" {
		return cache.Latest()
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, false
	}
	return cache.Get(parsed)
}

func emptyIfNil(brokers []model.EnrichedBroker) []model.EnrichedBroker {
	if brokers == nil {
		return []model.EnrichedBroker{}
	}
	return brokers
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
