package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/craneplan/pkg/buildinfo"
	"github.com/matzehuels/craneplan/pkg/cache"
	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/manifest"
	"github.com/matzehuels/craneplan/pkg/pipeline"
	"github.com/matzehuels/craneplan/pkg/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	var req BalanceRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	grid, err := manifest.Parse(strings.NewReader(req.Manifest))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.defaults
	opts.Refresh = req.Refresh
	resp, err := s.plan(r.Context(), pipeline.KindBalance, req, func(ctx context.Context) (*pipeline.Plan, bool, error) {
		return s.runner.RunBalance(ctx, grid, opts)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	grid, err := manifest.Parse(strings.NewReader(req.Manifest))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.defaults
	opts.Refresh = req.Refresh
	resp, err := s.plan(r.Context(), pipeline.KindLoad, req, func(ctx context.Context) (*pipeline.Plan, bool, error) {
		return s.runner.RunLoad(ctx, grid, req.request(), opts)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// plan runs fn once per distinct request, archives the plan and returns
// the response shared by every caller waiting on the same request. The
// search outlives a caller that disconnects; it is bounded by the server's
// request timeout instead.
func (s *Server) plan(ctx context.Context, kind string, req any, fn func(context.Context) (*pipeline.Plan, bool, error)) (*PlanResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	key := kind + ":" + cache.Hash(body)

	v, err, shared := s.flight.Do(key, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		plan, hit, err := fn(runCtx)
		if err != nil {
			return nil, err
		}
		if err := s.store.Save(runCtx, plan); err != nil {
			s.logger.Warn("archive plan", "id", plan.ID, "err", err)
		}
		return &PlanResponse{Plan: plan, Steps: plan.Steps(), Cached: hit}, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("shared search result", "kind", kind)
	}
	return v.(*PlanResponse), nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := store.Query{Kind: r.URL.Query().Get("kind")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errs.New(errs.ErrCodeInvalidRequest, "limit must be a non-negative integer"))
			return
		}
		q.Limit = n
	}
	plans, err := s.store.List(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if plans == nil {
		plans = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	plan, err := s.lookup(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PlanResponse{Plan: plan, Steps: plan.Steps()})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	plan, err := s.lookup(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req VerifyRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var grid *manifest.Grid
	if req.Manifest != "" {
		grid, err = manifest.Parse(strings.NewReader(req.Manifest))
	} else {
		grid, err = s.runner.Inbound(r.Context(), plan.ManifestHash)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	layout := s.defaults.Layout
	if layout.ShipRows == 0 {
		opts := s.defaults
		opts.SetDefaults()
		layout = opts.Layout
	}
	final, err := pipeline.Verify(layout, grid, plan)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{Valid: true, TotalTime: final.Cost(), Moves: len(final.Moves())})
}

func (s *Server) lookup(r *http.Request) (*pipeline.Plan, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, errs.New(errs.ErrCodeInvalidRequest, "invalid plan id %q", chi.URLParam(r, "id"))
	}
	return s.store.Get(r.Context(), id)
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidRequest, err, "decode request body")
	}
	return s.validate.Struct(dst)
}
