package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"jumpbot/internal/dispatch"
	"jumpbot/internal/engine"
	"jumpbot/internal/graph"
)

// --- Routing ---

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := strings.TrimSpace(q.Get("from")), strings.TrimSpace(q.Get("to"))
	if from == "" || to == "" {
		writeError(w, 400, "from and to are required")
		return
	}
	st, err := graph.ParseStrategy(q.Get("strategy"))
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	query := engine.PairQuery{From: from, To: to, Strategy: st, WithPath: queryBool(r, "path")}

	d, _ := s.dispatcher()
	writeJSON(w, s.observe(r.Context(), "pair", query, func(context.Context) (interface{}, string) {
		res := d.Engine().Pair(query)
		return res, string(res.Outcome)
	}))
}

type multiRequest struct {
	Stops    []string       `json:"stops"`
	Strategy graph.Strategy `json:"strategy"`
	Path     bool           `json:"path"`
}

func (s *Server) handleMultiRoute(w http.ResponseWriter, r *http.Request) {
	var req multiRequest
	if !decodeBody(w, r, &req) {
		return
	}
	query := engine.MultiQuery{Stops: req.Stops, Strategy: req.Strategy, WithPath: req.Path}

	d, _ := s.dispatcher()
	var runErr error
	result := s.observe(r.Context(), "multi", query, func(context.Context) (interface{}, string) {
		res, err := d.Engine().MultiStop(query)
		if err != nil {
			runErr = err
			return nil, string(dispatch.FailureTooManyStops)
		}
		return res, string(res.Outcome)
	})
	if errors.Is(runErr, engine.ErrTooManyStops) {
		writeError(w, 400, runErr.Error())
		return
	}
	writeJSON(w, result)
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	system := strings.TrimSpace(r.PathValue("system"))
	d, _ := s.dispatcher()
	writeJSON(w, s.observe(r.Context(), "popular", map[string]string{"system": system}, func(context.Context) (interface{}, string) {
		res := d.Engine().Popular(system)
		return res, string(res.Outcome)
	}))
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	feature, err := engine.ParseFeature(r.PathValue("feature"))
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	query := engine.NearestQuery{
		From:     strings.TrimSpace(r.PathValue("system")),
		Feature:  feature,
		Count:    queryInt(r, "count", 0),
		WithPath: queryBool(r, "path"),
	}

	d, _ := s.dispatcher()
	writeJSON(w, s.observe(r.Context(), "nearest", query, func(context.Context) (interface{}, string) {
		res := d.Engine().Nearest(query)
		return res, string(res.Outcome)
	}))
}

// --- Chat ---

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, _ := s.dispatcher()
	writeJSON(w, s.observe(r.Context(), "command", req, func(ctx context.Context) (interface{}, string) {
		reply := d.Handle(ctx, req.Text)
		return reply, reply.Outcome()
	}))
}

func (s *Server) handleFleetPing(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, _ := s.dispatcher()
	writeJSON(w, s.observe(r.Context(), "fleetping", req, func(context.Context) (interface{}, string) {
		systems := d.FleetPing(req.Text)
		if systems == nil {
			systems = []engine.PopularResult{}
		}
		outcome := string(engine.OutcomeOK)
		if len(systems) == 0 {
			outcome = "silent"
		}
		return map[string]interface{}{"systems": systems}, outcome
	}))
}
