package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/orglink/internal/match"
	"github.com/sells-group/orglink/internal/model"
	"github.com/sells-group/orglink/internal/similarity"
	"github.com/sells-group/orglink/internal/store"
)

const maxBodyBytes = 1 << 20

type pairRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

type scoreResponse struct {
	Score float64 `json:"score"`
}

type selectRequest struct {
	Mode       model.Mode        `json:"mode"`
	Target     string            `json:"target"`
	Threshold  *float64          `json:"threshold,omitempty"`
	Candidates []model.Candidate `json:"candidates"`
}

type selectResponse struct {
	Matched   bool             `json:"matched"`
	Score     float64          `json:"score"`
	Index     int              `json:"index"`
	Candidate *model.Candidate `json:"candidate"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) addressSimilarity(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{Score: similarity.Address(req.A, req.B)})
}

func (s *Server) nameSimilarity(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{Score: similarity.Name(req.A, req.B)})
}

func (s *Server) selectCandidate(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decode(w, r, &req) {
		return
	}
	mode, err := model.ParseMode(string(req.Mode))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var sel match.Selector[model.Candidate]
	switch mode {
	case model.ModeName:
		sel = match.ByName(s.opts.NameThreshold)
	default:
		sel = match.ByLocation(s.opts.AddressThreshold)
	}
	if req.Threshold != nil {
		sel.Threshold = *req.Threshold
	}

	res, err := sel.Select(req.Target, req.Candidates)
	if err != nil {
		if eris.Is(err, match.ErrInvalidThreshold) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		zap.L().Error("api: select", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "select failed")
		return
	}

	out := selectResponse{Matched: res.Matched, Score: res.Score, Index: res.Index}
	if res.Matched {
		c := res.Candidate
		out.Candidate = &c
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{Status: model.RunStatus(r.URL.Query().Get("status"))}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = n
	}

	runs, err := s.opts.Store.ListRuns(r.Context(), filter)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.opts.Store.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	stats, err := s.opts.Store.RunStats(r.Context(), run.ID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		*model.Run
		Stats model.RunStats `json:"stats"`
	}{run, stats})
}

func (s *Server) listResults(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if _, err := s.opts.Store.GetRun(r.Context(), runID); err != nil {
		s.storeError(w, err)
		return
	}
	results, err := s.opts.Store.ListResults(r.Context(), runID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if results == nil {
		results = []model.LinkResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if eris.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	zap.L().Error("api: store", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "store error")
}
