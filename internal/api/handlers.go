package api

import (
	"net/http"
	"time"

	"webstack/internal/counter"
	"webstack/internal/tasks"
	"webstack/internal/visits"
)

const greeting = "Hello from Go behind Nginx!"

const (
	defaultX int64 = 1
	defaultY int64 = 2
)

type visitRow struct {
	ID   int64  `json:"id"`
	TS   string `json:"ts"`
	Note string `json:"note"`
}

type insertedRow struct {
	ID int64  `json:"id"`
	TS string `json:"ts"`
}

func formatTS(ts time.Time) string {
	return ts.Format(time.RFC3339Nano)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	hits, err := h.counter.Incr(r.Context(), counter.HitsKey)
	if err != nil {
		h.collaboratorFailed(w, r, "counter", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": greeting,
		"hits":    hits,
	})
}

func (h *Handler) handleWriteDB(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(r.Body)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	note, err := coerceString(body, "note", visits.DefaultNote)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	visit, err := h.visits.Insert(r.Context(), note)
	if err != nil {
		h.collaboratorFailed(w, r, "database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]insertedRow{
		"inserted": {ID: visit.ID, TS: formatTS(visit.TS)},
	})
}

func (h *Handler) handleReadDB(w http.ResponseWriter, r *http.Request) {
	recent, err := h.visits.Recent(r.Context(), visits.RecentLimit)
	if err != nil {
		h.collaboratorFailed(w, r, "database", err)
		return
	}
	rows := make([]visitRow, 0, len(recent))
	for _, v := range recent {
		rows = append(rows, visitRow{ID: v.ID, TS: formatTS(v.TS), Note: v.Note})
	}
	writeJSON(w, http.StatusOK, map[string][]visitRow{"rows": rows})
}

func (h *Handler) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObjectLenient(r.Body)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	x, err := coerceInt(body, "x", defaultX)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	y, err := coerceInt(body, "y", defaultY)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	id, err := h.tasks.EnqueueAdd(r.Context(), x, y)
	if err != nil {
		h.collaboratorFailed(w, r, "queue", err)
		return
	}
	h.metrics.RecordTaskEnqueued()
	writeJSON(w, http.StatusOK, map[string]string{"task_id": id})
}

func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.tasks.Lookup(r.Context(), r.PathValue("task_id"))
	if err != nil {
		h.collaboratorFailed(w, r, "queue", err)
		return
	}

	switch {
	case result.State == tasks.StatePending:
		writeJSON(w, http.StatusAccepted, map[string]tasks.State{"state": result.State})
	case result.State == tasks.StateSuccess && result.Value != nil:
		writeJSON(w, http.StatusOK, map[string]any{
			"state":  result.State,
			"result": *result.Value,
		})
	default:
		writeJSON(w, http.StatusOK, map[string]tasks.State{"state": result.State})
	}
}
