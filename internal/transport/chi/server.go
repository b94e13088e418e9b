// Package chi exposes the catalog over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shoplens/catalog/internal/domain"
	domsearch "github.com/shoplens/catalog/internal/domain/search"
	cataloguc "github.com/shoplens/catalog/internal/usecase/catalog"
	healthuc "github.com/shoplens/catalog/internal/usecase/health"
	searchuc "github.com/shoplens/catalog/internal/usecase/search"
)

// noMatchesMessage is part of the search response contract.
const noMatchesMessage = "No products found matching your criteria"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server is the HTTP API over the catalog and search use cases.
type Server struct {
	catalog       *cataloguc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	catalog *cataloguc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		catalog: catalog,
		search:  search,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "Product not found"),
		validationHandler,
	}
	return s
}

// APIRoutes mounts the product endpoints. Kept separate from OpsRoutes so the
// composition root can rate limit the API without throttling probes.
func (s *Server) APIRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", s.ListProducts)
		r.Post("/", s.CreateProduct)
		r.Post("/search", s.SearchProducts)
		r.Get("/{id}", s.GetProduct)
		r.Put("/{id}", s.UpdateProduct)
		r.Delete("/{id}", s.DeleteProduct)
	})
}

// OpsRoutes mounts health and metrics.
func (s *Server) OpsRoutes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
}

type listResponse struct {
	Total       int64            `json:"total"`
	CurrentPage int              `json:"currentPage"`
	TotalPages  int              `json:"totalPages"`
	Products    []domain.Product `json:"products"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Query            string                `json:"query"`
	SearchAttributes *domsearch.Attributes `json:"searchAttributes,omitempty"`
	Total            int                   `json:"total,omitempty"`
	Products         []domain.Product      `json:"products"`
	Message          string                `json:"message,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ListProducts handles GET /api/products.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit")
	page := queryInt(r, "page")

	result, err := s.catalog.List(r.Context(), limit, page)
	if err != nil {
		s.handleDomainError(w, err, "Failed to fetch products")
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Total:       result.Total,
		CurrentPage: result.CurrentPage,
		TotalPages:  result.TotalPages,
		Products:    result.Products,
	})
}

// GetProduct handles GET /api/products/{id}.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err, "Failed to fetch product")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// CreateProduct handles POST /api/products.
func (s *Server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.catalog.Create(r.Context(), &p); err != nil {
		s.handleDomainError(w, err, "Failed to create product")
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

// UpdateProduct handles PUT /api/products/{id}.
func (s *Server) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updated, err := s.catalog.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.handleDomainError(w, err, "Failed to update product")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteProduct handles DELETE /api/products/{id}.
func (s *Server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err, "Failed to delete product")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Product deleted successfully"})
}

// SearchProducts handles POST /api/products/search.
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	result, err := s.search.Search(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, err, "Failed to search products")
		return
	}

	if len(result.Products) == 0 {
		writeJSON(w, http.StatusOK, searchResponse{
			Query:    result.Query,
			Products: []domain.Product{},
			Message:  noMatchesMessage,
		})
		return
	}

	attrs := result.Attributes
	writeJSON(w, http.StatusOK, searchResponse{
		Query:            result.Query,
		SearchAttributes: &attrs,
		Total:            len(result.Products),
		Products:         result.Products,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// queryInt parses an integer query parameter; missing or malformed values
// become 0, which the use case replaces with its default.
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, message)
		return true
	}
}

// validationHandler surfaces the validation detail. Validation errors carry
// only sentinel text, never internals.
func validationHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidProduct) {
		return false
	}
	writeError(w, http.StatusBadRequest, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error, internalMessage string) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, internalMessage)
}
