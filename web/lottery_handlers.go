package web

import (
	"net/http"

	"lottery/models"
)

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Cid string `json:"cid"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	res, err := s.lottery.Join(r.Context(), readSessionPID(r), readClientID(r, body.Cid))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSessionPID(w, res.PID, s.cfg.SessionMaxAge)
	writeJSON(w, http.StatusOK, map[string]any{
		"pid":          res.PID,
		"participated": res.Participated,
		"win":          res.Win,
	})
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Choice *int   `json:"choice"`
		Pick   *int   `json:"pick"`
		Cid    string `json:"cid"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	choice := 0
	if body.Choice != nil {
		choice = *body.Choice
	} else if body.Pick != nil {
		choice = *body.Pick
	}

	res, err := s.lottery.Draw(r.Context(), readSessionPID(r), readClientID(r, body.Cid), choice)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSessionPID(w, res.PID, s.cfg.SessionMaxAge)
	writeDrawResult(w, res)
}

func (s *Server) handleDeal(w http.ResponseWriter, r *http.Request) {
	round, err := s.lottery.Deal(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"roundToken": round.Token,
		"faces":      round.Arrangement.Faces(),
	})
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RoundToken string `json:"roundToken"`
		Index      *int   `json:"index"`
		Cid        string `json:"cid"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	index := 0
	if body.Index != nil {
		index = *body.Index
	}

	// Picks from real clients go through the coordinator so the one-draw rule
	// applies to the identified participant.
	res, err := s.lottery.DrawFromRound(r.Context(), readSessionPID(r), readClientID(r, body.Cid), body.RoundToken, index)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSessionPID(w, res.PID, s.cfg.SessionMaxAge)
	writeDrawResult(w, res)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.lottery.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	state := s.admin.ActivityState()
	spec := s.admin.WinSpec()
	writeJSON(w, http.StatusOK, map[string]any{
		"open":         state == models.ActivityOpen,
		"state":        state,
		"redCountMode": spec.RedCount,
		"stats": map[string]any{
			"totalParticipants": stats.Total,
			"participated":      stats.Participated,
			"winners":           stats.Winners,
		},
	})
}

func (s *Server) handleLotteryConfig(w http.ResponseWriter, r *http.Request) {
	spec := s.admin.WinSpec()
	writeJSON(w, http.StatusOK, map[string]any{
		"redCount":    spec.RedCount,
		"probability": spec.Probability,
	})
}

func writeDrawResult(w http.ResponseWriter, res *models.DrawResult) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"pid":      res.PID,
		"win":      res.Win,
		"face":     res.Face,
		"deck":     res.Arrangement.Faces(),
		"winIndex": res.WinIndex,
	})
}
