package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"imagegen-service/internal/infra/logging"
	"imagegen-service/internal/usecase"
)

// Server exposes the job/batch tool operations over HTTP.
type Server struct {
	jobUC   usecase.JobUseCase
	batchUC usecase.BatchUseCase
	saveUC  usecase.SaveUseCase
	log     *zerolog.Logger
}

func NewServer(jobUC usecase.JobUseCase, batchUC usecase.BatchUseCase, saveUC usecase.SaveUseCase, log *zerolog.Logger) *Server {
	return &Server{jobUC: jobUC, batchUC: batchUC, saveUC: saveUC, log: log}
}

// Router builds the chi mux with all tool routes mounted under /api/v1.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", s.handleSubmitJob)
			r.Get("/", s.handleListJobs)
			r.Get("/{jobID}", s.handleGetJob)
			r.Post("/{jobID}/save", s.handleSaveJob)
		})
		r.Route("/batches", func(r chi.Router) {
			r.Post("/", s.handleSubmitBatch)
			r.Get("/", s.handleListBatches)
			r.Get("/{batchID}", s.handleGetBatch)
			r.Post("/{batchID}/save", s.handleSaveBatch)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// traceMiddleware tags every request with a trace id for log correlation.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
