package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/jeonse-risk/internal/extract"
	"github.com/sells-group/jeonse-risk/internal/model"
	"github.com/sells-group/jeonse-risk/internal/ocr"
	"github.com/sells-group/jeonse-risk/internal/pipeline"
	"github.com/sells-group/jeonse-risk/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the assessment HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp(ctx, "serve", true)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env, cfg.Server.CORSOrigins, cfg.Server.MaxUploadMB),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// assessRequest is the JSON body of POST /assessments.
type assessRequest struct {
	Text             string                   `json:"text"`
	Tables           []extract.Table          `json:"tables,omitempty"`
	Address          string                   `json:"address,omitempty"`
	Deposit          int64                    `json:"deposit"`
	BuildingAgeYears *int                     `json:"building_age_years"`
	Valuation        *model.PropertyValuation `json:"valuation,omitempty"`
	Save             bool                     `json:"save,omitempty"`
}

type assessResponse struct {
	ID     string           `json:"id,omitempty"`
	Report *pipeline.Report `json:"report"`
}

type server struct {
	env       *appEnv
	maxUpload int64
}

// newRouter builds the HTTP API over env.
func newRouter(env *appEnv, origins []string, maxUploadMB int) http.Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	s := &server{env: env, maxUpload: int64(maxUploadMB) << 20}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(env.Registry, promhttp.HandlerOpts{}))
	r.Get("/regions", s.handleRegions)
	r.Route("/assessments", func(r chi.Router) {
		r.Post("/", s.handleAssess)
		r.Get("/", s.handleList)
		r.Get("/{id}", s.handleGet)
	})
	return r
}

func (s *server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.env.Engine.Regions().Regions())
}

func (s *server) handleAssess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	var req assessRequest
	var err error
	if isMultipart(r) {
		req, err = s.decodeUpload(r)
	} else {
		err = json.NewDecoder(r.Body).Decode(&req)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text or file is required")
		return
	}

	rep, err := s.env.Analyzer.Analyze(r.Context(), pipeline.Request{
		Text:             req.Text,
		Tables:           req.Tables,
		Address:          req.Address,
		ProposedDeposit:  req.Deposit,
		BuildingAgeYears: req.BuildingAgeYears,
		Valuation:        req.Valuation,
	})
	if err != nil {
		if r.Context().Err() != nil {
			writeError(w, http.StatusServiceUnavailable, "request cancelled")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := assessResponse{Report: rep}
	if req.Save {
		if s.env.Store == nil {
			writeError(w, http.StatusServiceUnavailable, "store not configured")
			return
		}
		rec, err := s.env.Store.SaveAssessment(r.Context(), rep)
		if err != nil {
			zap.L().Error("save assessment", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "save failed")
			return
		}
		resp.ID = rec.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeUpload reads a multipart form with a "file" certificate and the
// request fields as form values.
func (s *server) decodeUpload(r *http.Request) (assessRequest, error) {
	var req assessRequest
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		return req, err
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		return req, err
	}
	defer file.Close() //nolint:errcheck

	tmp, err := os.CreateTemp("", "jeonse-upload-*"+filepath.Ext(hdr.Filename))
	if err != nil {
		return req, err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close() //nolint:errcheck
		return req, err
	}
	if err := tmp.Close(); err != nil {
		return req, err
	}

	doc, err := ocr.ReadDocument(r.Context(), s.env.OCR, tmp.Name())
	if err != nil {
		return req, err
	}
	req.Text = doc.Text
	req.Tables = doc.Tables
	req.Address = r.FormValue("address")
	req.Save = r.FormValue("save") == "true"
	if v := r.FormValue("deposit"); v != "" {
		if req.Deposit, err = strconv.ParseInt(v, 10, 64); err != nil {
			return req, eris.Errorf("invalid deposit %q", v)
		}
	}
	if v := r.FormValue("building_age_years"); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil {
			return req, eris.Errorf("invalid building_age_years %q", v)
		}
		req.BuildingAgeYears = &age
	}
	return req, nil
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	if s.env.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "store not configured")
		return
	}
	rec, err := s.env.Store.GetAssessment(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "assessment not found")
		return
	}
	if err != nil {
		zap.L().Error("get assessment", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.env.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "store not configured")
		return
	}
	q := r.URL.Query()
	filter := store.ListFilter{
		RiskLevel: model.RiskLevel(q.Get("risk_level")),
		Address:   q.Get("address"),
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	recs, err := s.env.Store.ListAssessments(r.Context(), filter)
	if err != nil {
		zap.L().Error("list assessments", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
