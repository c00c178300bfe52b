package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"whatsorders/internal/constants"
	"whatsorders/internal/errors"
	"whatsorders/internal/middleware"
	"whatsorders/internal/models"
	"whatsorders/internal/notify"
	"whatsorders/internal/service"
	"whatsorders/internal/tracing"
	"whatsorders/internal/validation"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Server struct {
	router     *mux.Router
	logger     *logrus.Logger
	cfg        *models.Config
	ingestion  *service.IngestionService
	messages   *service.MessageService
	assignment *service.AssignmentService
	aliases    *service.AliasAdminService
	hub        *notify.Hub
	server     *http.Server
}

func NewServer(cfg *models.Config, ingestion *service.IngestionService, messages *service.MessageService, assignment *service.AssignmentService, aliases *service.AliasAdminService, hub *notify.Hub, logger *logrus.Logger) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		logger:     logger,
		cfg:        cfg,
		ingestion:  ingestion,
		messages:   messages,
		assignment: assignment,
		aliases:    aliases,
		hub:        hub,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.ObservabilityMiddleware(s.logger))

	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/messages/ingest", s.handleIngestBatch()).Methods(http.MethodPost)
	api.HandleFunc("/messages/{externalID}", s.handleGetMessage()).Methods(http.MethodGet)
	api.HandleFunc("/messages/{externalID}", s.handleSoftDelete()).Methods(http.MethodDelete)
	api.HandleFunc("/messages/{externalID}/company", s.handleAssignCompany()).Methods(http.MethodPut)
	api.HandleFunc("/messages/{externalID}/company", s.handleClearAssignment()).Methods(http.MethodDelete)
	api.HandleFunc("/chats/{chatKey}/messages", s.handleListMessages()).Methods(http.MethodGet)
	api.HandleFunc("/aliases", s.handleRegisterAlias()).Methods(http.MethodPost)
	api.HandleFunc("/aliases", s.handleListAliases()).Methods(http.MethodGet)
	api.HandleFunc("/events", s.hub.ServeHTTP).Methods(http.MethodGet)
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Server.IdleTimeoutSec) * time.Second,
	}

	s.logger.Infof("Starting server on port %d", s.cfg.Server.Port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// messageView annotates a stored message with its effective company for
// API responses.
type messageView struct {
	*models.Message
	EffectiveCompanyID *int64 `json:"effectiveCompanyId,omitempty"`
}

func newMessageView(m *models.Message) messageView {
	return messageView{Message: m, EffectiveCompanyID: m.EffectiveCompanyID()}
}

// Handler implementations

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

func (s *Server) handleIngestBatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, constants.MaxRequestBodyBytes)

		var req models.IngestBatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, errors.NewInvalidMessageError("body", "malformed JSON payload"))
			return
		}

		if err := validation.ValidateBatchSize(len(req.Messages)); err != nil {
			s.writeError(w, r, err)
			return
		}

		results := s.ingestion.IngestBatch(r.Context(), req.Messages)
		s.writeJSON(w, http.StatusOK, models.IngestBatchResponse{Results: results})
	}
}

func (s *Server) handleGetMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		externalID := mux.Vars(r)["externalID"]

		msg, err := s.messages.GetMessage(r.Context(), externalID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.writeJSON(w, http.StatusOK, newMessageView(msg))
	}
}

func (s *Server) handleListMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatKey := mux.Vars(r)["chatKey"]
		includeDeleted, _ := strconv.ParseBool(r.URL.Query().Get("include_deleted"))

		msgs, err := s.messages.ListMessages(r.Context(), chatKey, includeDeleted)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		views := make([]messageView, 0, len(msgs))
		for _, m := range msgs {
			views = append(views, newMessageView(m))
		}
		s.writeJSON(w, http.StatusOK, map[string]interface{}{"messages": views})
	}
}

func (s *Server) handleSoftDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		externalID := mux.Vars(r)["externalID"]

		if err := s.messages.SoftDeleteMessage(r.Context(), externalID); err != nil {
			s.writeError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type assignCompanyRequest struct {
	CompanyID int64 `json:"companyId"`
}

func (s *Server) handleAssignCompany() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		externalID := mux.Vars(r)["externalID"]

		var req assignCompanyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, errors.NewValidationError("body", "", "malformed JSON payload"))
			return
		}

		msg, err := s.assignment.AssignCompany(r.Context(), externalID, req.CompanyID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.writeJSON(w, http.StatusOK, newMessageView(msg))
	}
}

func (s *Server) handleClearAssignment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		externalID := mux.Vars(r)["externalID"]

		msg, err := s.assignment.ClearAssignment(r.Context(), externalID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.writeJSON(w, http.StatusOK, newMessageView(msg))
	}
}

type registerAliasRequest struct {
	Alias     string `json:"alias"`
	CompanyID int64  `json:"companyId"`
}

func (s *Server) handleRegisterAlias() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerAliasRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, errors.NewValidationError("body", "", "malformed JSON payload"))
			return
		}

		alias, err := s.aliases.RegisterAlias(r.Context(), req.Alias, req.CompanyID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.writeJSON(w, http.StatusCreated, alias)
	}
}

func (s *Server) handleListAliases() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		aliases, err := s.aliases.ListAliases(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]interface{}{"aliases": aliases})
	}
}

// response helpers

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestInfo := tracing.GetRequestInfo(r.Context())

	status := errors.HTTPStatusCode(err)
	switch {
	case status >= 500:
		s.logger.WithFields(logrus.Fields{
			"request_id": requestInfo.RequestID,
			"url":        r.URL.Path,
		}).WithError(err).Error("Request failed")
	case errors.IsNotFound(err):
		s.logger.WithFields(logrus.Fields{
			"request_id": requestInfo.RequestID,
			"url":        r.URL.Path,
		}).Debug("Requested resource not found")
	}

	s.writeJSON(w, status, errors.ToHTTPResponse(err, requestInfo.RequestID))
}
