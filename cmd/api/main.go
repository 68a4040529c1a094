package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/marcoribeirogray/grupo-ofertas-api/internal/types"
	"github.com/marcoribeirogray/grupo-ofertas-api/offer"
	"github.com/marcoribeirogray/grupo-ofertas-api/storage"
	"github.com/marcoribeirogray/grupo-ofertas-api/utils"
)

// APIResponse is the envelope for every JSON endpoint.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OfferPreviewResponse is the payload returned by the preview endpoint.
type OfferPreviewResponse struct {
	Title         string                `json:"title"`
	Store         string                `json:"store"`
	AffiliateURL  string                `json:"affiliate_url"`
	ShortURL      string                `json:"short_url"`
	Price         string                `json:"price,omitempty"`
	PriceOriginal string                `json:"price_original,omitempty"`
	Benefits      []string              `json:"benefits"`
	Image         string                `json:"image,omitempty"`
	Text          string                `json:"text"`
	Metadata      types.ProductMetadata `json:"metadata"`
}

// Server holds the API server state.
type Server struct {
	logger  *logrus.Logger
	config  *types.Config
	store   storage.Store
	builder *offer.Builder
}

// NewServer wires configuration, storage and the offer builder.
func NewServer(ctx context.Context) (*Server, error) {
	// Load .env file if present
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	config := types.ConfigFromEnv()

	store, err := storage.OpenSQLite(ctx, config.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureDefaultIntegrations(ctx, store, config); err != nil {
		store.Close()
		return nil, err
	}

	var fetcher utils.Fetcher
	if config.UseHeadlessBrowser {
		fetcher = utils.NewBrowserClient(config, logger)
	} else {
		fetcher = utils.NewHTTPClient(config, logger)
	}

	return &Server{
		logger:  logger,
		config:  config,
		store:   store,
		builder: offer.NewBuilder(config, logger, fetcher, store),
	}, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}

func (s *Server) sendData(w http.ResponseWriter, data any) {
	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func (s *Server) sendError(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, APIResponse{Success: false, Error: message})
}

// handlePreview builds an offer for a product URL and returns the
// rendered text plus the generation context.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req offer.BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.sendError(w, "url is required", http.StatusBadRequest)
		return
	}

	s.logger.Infof("Preview request for %s", req.URL)

	ctx, cancel := context.WithTimeout(r.Context(), s.config.Timeout)
	defer cancel()

	result, err := s.builder.Build(ctx, req)
	if err != nil {
		s.logger.Warnf("Build failed for %s: %v", req.URL, err)
		status := http.StatusInternalServerError
		if errors.Is(err, offer.ErrMetadataUnavailable) {
			status = http.StatusBadGateway
		}
		s.sendError(w, err.Error(), status)
		return
	}

	s.sendData(w, OfferPreviewResponse{
		Title:         result.Context.GetString("title"),
		Store:         result.Context.GetString("store"),
		AffiliateURL:  result.AffiliateURL,
		ShortURL:      result.Context.GetString("short_url"),
		Price:         result.Context.GetString("price"),
		PriceOriginal: result.Context.GetString("price_original"),
		Benefits:      result.Context.GetStrings("benefits"),
		Image:         result.Context.GetString("image"),
		Text:          result.Text,
		Metadata:      result.Metadata,
	})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rules, err := s.store.ListRules(r.Context())
		if err != nil {
			s.sendError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if rules == nil {
			rules = []types.Rule{}
		}
		s.sendData(w, rules)
	case http.MethodPost:
		var rule types.Rule
		if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
			s.sendError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if rule.Name == "" {
			s.sendError(w, "name is required", http.StatusBadRequest)
			return
		}
		created, err := s.store.CreateRule(r.Context(), rule)
		if err != nil {
			s.sendError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.sendData(w, created)
	default:
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRuleByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/rules/")
	if id == "" {
		s.sendError(w, "rule id is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rule, ok, err := s.store.GetRule(r.Context(), id)
		if err != nil {
			s.sendError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !ok {
			s.sendError(w, "rule not found", http.StatusNotFound)
			return
		}
		s.sendData(w, rule)
	case http.MethodPut:
		var rule types.Rule
		if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
			s.sendError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		rule.ID = id
		updated, err := s.store.UpdateRule(r.Context(), rule)
		if err != nil {
			s.storageError(w, err)
			return
		}
		s.sendData(w, updated)
	case http.MethodDelete:
		if err := s.store.DeleteRule(r.Context(), id); err != nil {
			s.storageError(w, err)
			return
		}
		s.sendData(w, map[string]string{"deleted": id})
	default:
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		templates, err := s.store.ListTemplates(r.Context())
		if err != nil {
			s.sendError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if templates == nil {
			templates = []types.Template{}
		}
		s.sendData(w, templates)
	case http.MethodPost:
		var tpl types.Template
		if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
			s.sendError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if tpl.Slug == "" || tpl.Body == "" {
			s.sendError(w, "slug and body are required", http.StatusBadRequest)
			return
		}
		created, err := s.store.CreateTemplate(r.Context(), tpl)
		if err != nil {
			s.sendError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.sendData(w, created)
	default:
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleTemplateByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/templates/")
	if id == "" {
		s.sendError(w, "template id is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var tpl types.Template
		if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
			s.sendError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		tpl.ID = id
		updated, err := s.store.UpdateTemplate(r.Context(), tpl)
		if err != nil {
			s.storageError(w, err)
			return
		}
		s.sendData(w, updated)
	case http.MethodDelete:
		if err := s.store.DeleteTemplate(r.Context(), id); err != nil {
			s.storageError(w, err)
			return
		}
		s.sendData(w, map[string]string{"deleted": id})
	default:
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleIntegrations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	integrations, err := s.store.ListIntegrations(r.Context())
	if err != nil {
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if integrations == nil {
		integrations = []types.Integration{}
	}
	s.sendData(w, integrations)
}

func (s *Server) handleIntegrationByProvider(w http.ResponseWriter, r *http.Request) {
	provider := types.StoreID(strings.TrimPrefix(r.URL.Path, "/api/integrations/"))
	if provider == "" {
		s.sendError(w, "provider is required", http.StatusBadRequest)
		return
	}
	if _, ok := types.SupportedStores[provider]; !ok {
		s.sendError(w, "unsupported provider", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		integration, ok, err := s.store.GetIntegration(r.Context(), provider)
		if err != nil {
			s.sendError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !ok {
			s.sendError(w, "integration not found", http.StatusNotFound)
			return
		}
		s.sendData(w, integration)
	case http.MethodPut:
		var integration types.Integration
		if err := json.NewDecoder(r.Body).Decode(&integration); err != nil {
			s.sendError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		integration.Provider = provider
		stored, err := s.store.UpsertIntegration(r.Context(), integration)
		if err != nil {
			s.sendError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.sendData(w, stored)
	default:
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) storageError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		s.sendError(w, "record not found", http.StatusNotFound)
		return
	}
	s.sendError(w, err.Error(), http.StatusInternalServerError)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// Start registers the routes and serves until the listener fails.
func (s *Server) Start(port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/offers/preview", s.handlePreview)
	mux.HandleFunc("/api/rules", s.handleRules)
	mux.HandleFunc("/api/rules/", s.handleRuleByID)
	mux.HandleFunc("/api/templates", s.handleTemplates)
	mux.HandleFunc("/api/templates/", s.handleTemplateByID)
	mux.HandleFunc("/api/integrations", s.handleIntegrations)
	mux.HandleFunc("/api/integrations/", s.handleIntegrationByProvider)
	mux.HandleFunc("/health", s.handleHealth)

	s.logger.Infof("Starting API server on port %s", port)
	s.logger.Info("Available endpoints:")
	s.logger.Info("  POST /api/offers/preview  - Build an offer announcement")
	s.logger.Info("  CRUD /api/rules           - Transformation rules")
	s.logger.Info("  CRUD /api/templates       - Announcement templates")
	s.logger.Info("  CRUD /api/integrations    - Affiliate integrations")
	s.logger.Info("  GET  /health              - Health check")

	return http.ListenAndServe(":"+port, mux)
}

// Close releases server resources.
func (s *Server) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Warnf("Failed to close store: %v", err)
	}
}

func main() {
	serverPort := "8080"
	if envPort := os.Getenv("API_PORT"); envPort != "" {
		serverPort = envPort
	}

	server, err := NewServer(context.Background())
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	defer server.Close()

	log.Fatal(server.Start(serverPort))
}
