package web

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"lottery/models"
)

// participantView is one row of the admin participant table
type participantView struct {
	PID               int    `json:"pid"`
	CorrelationID     string `json:"correlationId,omitempty"`
	CorrelationShort3 string `json:"correlationShort3,omitempty"`
	Participated      bool   `json:"participated"`
	Win               *bool  `json:"win,omitempty"`
	Status            string `json:"status"`
	JoinedAt          int64  `json:"joinedAt"`
	DrawAt            *int64 `json:"drawAt,omitempty"`
}

func toParticipantView(p *models.Participant) participantView {
	v := participantView{
		PID:           p.PID,
		CorrelationID: p.CorrelationID,
		Participated:  p.Participated,
		Win:           p.Win,
		Status:        participantStatus(p),
		JoinedAt:      p.JoinedAt.UnixMilli(),
	}
	if p.CorrelationID != "" {
		v.CorrelationShort3 = correlationShort3(p.CorrelationID)
	}
	if p.DrawAt != nil {
		ms := p.DrawAt.UnixMilli()
		v.DrawAt = &ms
	}
	return v
}

func participantStatus(p *models.Participant) string {
	if !p.Participated {
		return "pending"
	}
	if p.Won() {
		return "won"
	}
	return "lost"
}

// correlationShort3 is the zero-padded last-3 suffix shown in the admin table
func correlationShort3(cid string) string {
	suffix := cid
	if len(suffix) > 3 {
		suffix = suffix[len(suffix)-3:]
	}
	for len(suffix) < 3 {
		suffix = "0" + suffix
	}
	return suffix
}

func (s *Server) handleAdminParticipants(w http.ResponseWriter, r *http.Request) {
	items, stats, err := s.admin.ListParticipants(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]participantView, 0, len(items))
	for _, p := range items {
		views = append(views, toParticipantView(p))
	}

	spec := s.admin.WinSpec()
	writeJSON(w, http.StatusOK, map[string]any{
		"total": stats.Total,
		"items": views,
		"state": s.admin.ActivityState(),
		"config": map[string]any{
			"redCount":    spec.RedCount,
			"probability": spec.Probability,
		},
		"stats": map[string]any{
			"total":        stats.Total,
			"participated": stats.Participated,
			"winners":      stats.Winners,
			"pending":      stats.Pending,
		},
	})
}

// handleAdminExport streams the winner list as CSV; ?all=1 includes every
// participant
func (s *Server) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	items, _, err := s.admin.ListParticipants(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if r.URL.Query().Get("all") != "1" {
		winners := items[:0]
		for _, p := range items {
			if p.Won() {
				winners = append(winners, p)
			}
		}
		items = winners
	}

	filename := fmt.Sprintf("lottery_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	// UTF-8 BOM so spreadsheet tools detect the encoding
	_, _ = w.Write([]byte{0xEF, 0xBB, 0xBF})

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"pid", "correlation_id", "status", "joined_at", "draw_at"})
	for _, p := range items {
		drawAt := ""
		if p.DrawAt != nil {
			drawAt = p.DrawAt.Format(time.RFC3339)
		}
		_ = cw.Write([]string{
			strconv.Itoa(p.PID),
			p.CorrelationID,
			participantStatus(p),
			p.JoinedAt.Format(time.RFC3339),
			drawAt,
		})
	}
	cw.Flush()
}

func (s *Server) handleAdminSetState(w http.ResponseWriter, r *http.Request) {
	var body struct {
		State string `json:"state"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if err := s.admin.SetActivityState(r.Context(), models.ActivityState(body.State)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "state": body.State})
}

func (s *Server) handleAdminSetWindow(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StartAt *int64 `json:"startAt"`
		EndAt   *int64 `json:"endAt"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	var startAt, endAt *time.Time
	if body.StartAt != nil {
		t := time.UnixMilli(*body.StartAt)
		startAt = &t
	}
	if body.EndAt != nil {
		t := time.UnixMilli(*body.EndAt)
		endAt = &t
	}

	if err := s.admin.SetWindow(r.Context(), startAt, endAt); err != nil {
		errorCode(w, http.StatusBadRequest, "INVALID_WINDOW")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleAdminResetUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PID *int `json:"pid"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.PID == nil {
		errorCode(w, http.StatusBadRequest, "PID_REQUIRED")
		return
	}

	ok, err := s.admin.ResetParticipant(r.Context(), *body.PID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !ok {
		errorCode(w, http.StatusNotFound, "PARTICIPANT_NOT_FOUND")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "pid": *body.PID})
}

func (s *Server) handleAdminResetAll(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.ResetAll(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleGetProb(w http.ResponseWriter, r *http.Request) {
	spec := s.admin.WinSpec()
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":        spec.RedCount,
		"probability": spec.Probability,
	})
}

func (s *Server) handleSetProb(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode        *int     `json:"mode"`
		Probability *float64 `json:"probability"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	spec, err := s.admin.SetWinSpec(r.Context(), body.Mode, body.Probability)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"mode":        spec.RedCount,
		"probability": spec.Probability,
	})
}
