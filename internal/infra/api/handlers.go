package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"imagegen-service/internal/domain"
	"imagegen-service/internal/domain/model"
	"imagegen-service/internal/usecase"
)

// promptDisplayLimit caps prompt length in listing/summary payloads.
const promptDisplayLimit = 50

type submitJobRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
	Model       string `json:"model"`
}

type jobResponse struct {
	JobID       string     `json:"job_id"`
	Status      string     `json:"status"`
	Prompt      string     `json:"prompt"`
	AspectRatio string     `json:"aspect_ratio"`
	Model       string     `json:"model"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

type saveJobRequest struct {
	Path string `json:"path"`
}

type submitBatchRequest struct {
	Prompts     []submitJobRequest `json:"prompts"`
	AspectRatio string             `json:"aspect_ratio"`
	Model       string             `json:"model"`
}

type batchMemberResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Prompt string `json:"prompt"`
	Error  string `json:"error,omitempty"`
}

type batchStatusResponse struct {
	BatchID     string                `json:"batch_id"`
	Status      string                `json:"status"`
	TotalCount  int                   `json:"total_count"`
	Counts      batchCountsResponse   `json:"counts"`
	CreatedAt   time.Time             `json:"created_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	Jobs        []batchMemberResponse `json:"jobs"`
}

type batchCountsResponse struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

type saveBatchRequest struct {
	Directory      string `json:"directory"`
	FilenamePrefix string `json:"filename_prefix"`
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	var req submitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	job, err := s.jobUC.Submit(r.Context(), req.Prompt, req.AspectRatio, req.Model)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(job.Status),
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobUC.Get(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResponse(job, false))
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobUC.List(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	items := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		items = append(items, toJobResponse(j, true))
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": items})
}

func (s *Server) handleSaveJob(w http.ResponseWriter, r *http.Request) {
	var req saveJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	path, err := s.saveUC.SaveJob(r.Context(), chi.URLParam(r, "jobID"), req.Path)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": true, "path": path})
}

func (s *Server) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	var req submitBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	items := make([]usecase.BatchItem, 0, len(req.Prompts))
	for _, p := range req.Prompts {
		items = append(items, usecase.BatchItem{Prompt: p.Prompt, AspectRatio: p.AspectRatio, Model: p.Model})
	}
	batch, err := s.batchUC.Submit(r.Context(), items, usecase.BatchDefaults{
		AspectRatio: req.AspectRatio,
		Model:       req.Model,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"batch_id":    batch.ID,
		"job_ids":     batch.JobIDs,
		"total_count": batch.TotalCount,
	})
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	view, err := s.batchUC.Status(r.Context(), chi.URLParam(r, "batchID"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchResponse(view))
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	views, err := s.batchUC.List(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	items := make([]batchStatusResponse, 0, len(views))
	for _, v := range views {
		items = append(items, toBatchResponse(v))
	}
	writeJSON(w, http.StatusOK, map[string]any{"batches": items})
}

func (s *Server) handleSaveBatch(w http.ResponseWriter, r *http.Request) {
	var req saveBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := s.saveUC.SaveBatch(r.Context(), chi.URLParam(r, "batchID"), req.Directory, req.FilenamePrefix)
	if err != nil {
		s.respondError(w, err)
		return
	}
	saved := make([]map[string]string, 0, len(res.Saved))
	for _, it := range res.Saved {
		saved = append(saved, map[string]string{"job_id": it.JobID, "path": it.Path})
	}
	failed := make([]map[string]string, 0, len(res.Failed))
	for _, it := range res.Failed {
		failed = append(failed, map[string]string{"job_id": it.JobID, "error": it.Reason})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": res.Success,
		"saved":   saved,
		"failed":  failed,
	})
}

// ---- helpers ----

func toJobResponse(j *model.Job, truncate bool) jobResponse {
	prompt := j.Prompt
	if truncate {
		prompt = truncatePrompt(prompt)
	}
	resp := jobResponse{
		JobID:       j.ID,
		Status:      string(j.Status),
		Prompt:      prompt,
		AspectRatio: j.AspectRatio,
		Model:       j.Model,
		CreatedAt:   j.CreatedAt,
		Error:       j.LastError,
	}
	if !j.CompletedAt.IsZero() {
		t := j.CompletedAt
		resp.CompletedAt = &t
	}
	return resp
}

func toBatchResponse(v *usecase.BatchView) batchStatusResponse {
	members := make([]batchMemberResponse, 0, len(v.Members))
	for _, m := range v.Members {
		members = append(members, batchMemberResponse{
			JobID:  m.JobID,
			Status: string(m.Status),
			Prompt: truncatePrompt(m.Prompt),
			Error:  m.Error,
		})
	}
	resp := batchStatusResponse{
		BatchID:    v.Batch.ID,
		Status:     string(v.Status),
		TotalCount: v.Batch.TotalCount,
		Counts: batchCountsResponse{
			Pending:    v.Counts.Pending,
			Processing: v.Counts.Processing,
			Completed:  v.Counts.Completed,
			Failed:     v.Counts.Failed,
		},
		CreatedAt: v.Batch.CreatedAt,
		Jobs:      members,
	}
	if !v.Batch.CompletedAt.IsZero() {
		t := v.Batch.CompletedAt
		resp.CompletedAt = &t
	}
	return resp
}

func truncatePrompt(s string) string {
	runes := []rune(s)
	if len(runes) <= promptDisplayLimit {
		return s
	}
	return string(runes[:promptDisplayLimit]) + "..."
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
