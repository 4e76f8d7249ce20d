package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"knowbase/internal/config"
	"knowbase/internal/ingest"
	"knowbase/internal/models"
	"knowbase/internal/providers"
	"knowbase/internal/rag"
	"knowbase/internal/storage"
	"knowbase/internal/util"
	"knowbase/internal/vector"
	"knowbase/internal/websearch"
	"knowbase/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

type Server struct {
	cfg          config.Config
	db           *storage.DB
	chunkRepo    *storage.ChunkRepo
	feedbackRepo *storage.FeedbackRepo
	pipeline     *rag.Pipeline
	ingestor     *ingest.Ingestor
	providers    *providers.Manager
	temporal     tclient.Client
}

func NewServer(cfg config.Config) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	pm, err := providers.NewManager(cfg)
	if err != nil {
		panic(err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		panic(err)
	}
	chunkRepo := storage.NewChunkRepo(db)
	searcher := vector.NewSearcher(db.Pool)
	search := websearch.NewDuckDuckGoClient(cfg.SearchBaseURL)
	embedder, _ := pm.EmbedProviderByIndex(pm.PreferredEmbedOrder()[0])
	return &Server{
		cfg:          cfg,
		db:           db,
		chunkRepo:    chunkRepo,
		feedbackRepo: storage.NewFeedbackRepo(db),
		pipeline:     rag.NewPipeline(cfg, pm, searcher, search),
		ingestor:     ingest.NewIngestor(cfg, chunkRepo, embedder),
		providers:    pm,
		temporal:     tc,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/feedback", s.handleFeedback)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/domains/", s.handleDomainScoped)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleUpload saves the posted files under the domain's upload folder and
// indexes them synchronously so the response can carry the chunk count.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if err := r.ParseMultipartForm(128 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}
	domain := strings.TrimSpace(strings.ToLower(r.FormValue("domain")))
	if domain == "" {
		domain = "general"
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		if single, ok := firstSingleFile(r.MultipartForm.File); ok {
			files = append(files, single)
		}
	}
	if len(files) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
		return
	}

	inDir := filepath.Join(s.cfg.UploadRoot, domain)
	if err := util.EnsureDir(inDir); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	saved := make([]string, 0, len(files))
	names := make([]string, 0, len(files))
	for _, fh := range files {
		path, err := saveUploadedFile(inDir, fh)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		saved = append(saved, path)
		names = append(names, filepath.Base(path))
	}

	total, err := s.ingestor.IngestFiles(r.Context(), saved, domain)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"domain":         domain,
		"files":          names,
		"chunks_indexed": total,
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("question is required"))
		return
	}

	answer, err := s.pipeline.Ask(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, rag.ErrNoIndex) {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Question string `json:"question"`
			Rating   int    `json:"rating"`
			Comments string `json:"comments"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
			return
		}
		req.Question = strings.TrimSpace(req.Question)
		if req.Question == "" {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("question is required"))
			return
		}
		if req.Rating < 1 || req.Rating > 5 {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("rating must be between 1 and 5"))
			return
		}
		f := models.Feedback{
			FeedbackID: uuid.NewString(),
			Question:   req.Question,
			Rating:     req.Rating,
			Comments:   req.Comments,
		}
		if err := s.feedbackRepo.Insert(r.Context(), f); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"feedback_id": f.FeedbackID, "status": "recorded"})
	case http.MethodGet:
		items, err := s.feedbackRepo.ListRecent(r.Context(), 50)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"feedback": items})
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	counts, err := s.chunkRepo.CountByCollection(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	perDomain := make(map[string]int, len(s.cfg.Domains))
	total := 0
	for _, d := range s.cfg.Domains {
		n := counts[storage.CollectionName(d)]
		perDomain[d] = n
		total += n
	}
	writeJSON(w, http.StatusOK, map[string]any{"domains": perDomain, "total_chunks": total})
}

func (s *Server) handleDomainScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/domains/"), "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	domain := strings.ToLower(parts[0])
	if !s.knownDomain(domain) {
		writeErr(w, http.StatusNotFound, fmt.Errorf("unknown domain: %s", domain))
		return
	}

	switch parts[1] {
	case "reindex":
		if r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		wfID := "ingest-" + domain
		we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
			ID:                                       wfID,
			TaskQueue:                                s.cfg.TemporalTaskQueue,
			WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
			WorkflowExecutionErrorWhenAlreadyStarted: true,
		}, workflows.BatchIngestWorkflow, workflows.BatchIngestInput{
			Domain:                domain,
			InputDir:              filepath.Join(s.cfg.UploadRoot, domain),
			ChunkSize:             s.cfg.ChunkSize,
			ChunkOverlap:          s.cfg.ChunkOverlap,
			MaxConcurrentChildren: s.cfg.IngestMaxBatch,
		})
		if err != nil {
			writeErr(w, http.StatusConflict, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"workflow_id": we.GetID(), "run_id": we.GetRunID()})
	case "progress":
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		var prog workflows.BatchIngestProgress
		resp, err := s.temporal.QueryWorkflow(r.Context(), "ingest-"+domain, "", workflows.QueryGetProgress)
		if err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		if err := resp.Get(&prog); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, prog)
	default:
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
	}
}

func (s *Server) knownDomain(domain string) bool {
	for _, d := range s.cfg.Domains {
		if d == domain {
			return true
		}
	}
	return false
}

func saveUploadedFile(dstDir string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	finalPath := util.SafeJoin(dstDir, fh.Filename)
	tmp, err := os.CreateTemp(dstDir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return "", fmt.Errorf("atomic move upload: %w", err)
	}
	return finalPath, nil
}

func firstSingleFile(m map[string][]*multipart.FileHeader) (*multipart.FileHeader, bool) {
	for _, v := range m {
		if len(v) > 0 {
			return v[0], true
		}
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "KB-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500:
		switch {
		case strings.Contains(raw, "no vector index"):
			return apiError{
				Code:    "KB-IDX-5003",
				Message: "No vector index is available. Upload documents first.",
			}
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "KB-DB-5001",
				Message: "Database schema is not initialized. Run migrations and retry.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "KB-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		case status == http.StatusBadGateway:
			return apiError{
				Code:    "KB-API-5020",
				Message: "Upstream model provider is unavailable. Retry shortly.",
			}
		default:
			return apiError{
				Code:    "KB-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "KB-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "KB-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusConflict:
		code = "KB-API-4009"
		msg = "Operation conflicts with current state. Retry after checking status."
	case status == http.StatusMethodNotAllowed:
		code = "KB-API-4005"
		msg = "This endpoint does not support the requested method."
	}
	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
