package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"carcare/internal/domain"
	"carcare/internal/models"
	"carcare/internal/realtime"

	"github.com/julienschmidt/httprouter"
)

const (
	eventSnapshot = "snapshot"
	eventChange   = "change"
	eventResync   = "resync"
)

// streamBookings is a Server-Sent Events stream of the caller's booking
// list: one snapshot event, then one change event per change that altered
// the list. The admin has no per-user stream.
func (s *HTTPServer) streamBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params, userID string) {
	admin, err := s.deps.Bookings.IsAdmin(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if admin {
		writeError(w, domain.ErrForbidden)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeFailure(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	updates := make(chan realtime.Update, 16)
	session := realtime.NewSession(userID, s.deps.Feed, s.deps.Bookings.UserBookings, func(u realtime.Update) {
		select {
		case updates <- u:
		case <-ctx.Done():
		}
	}, s.deps.Resync, s.logger)

	if err := session.Start(ctx); err != nil {
		cancel()
		s.fail(w, r, err)
		return
	}
	defer session.Close()
	defer cancel()

	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(s.deps.Heartbeat)
	defer heartbeat.Stop()

	snapshots := 0
	for {
		select {
		case u := <-updates:
			name, payload := eventChange, any(u.Event)
			if u.Kind == realtime.UpdateSnapshot {
				name, payload = eventSnapshot, s.snapshotViews(u.Items)
				if snapshots > 0 {
					name = eventResync
				}
				snapshots++
			}
			if err := writeEvent(w, name, payload); err != nil {
				return
			}
			flusher.Flush()

		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-session.Done():
			if err := session.Err(); err != nil {
				s.logger.Warn().Err(err).Str("user_id", userID).Msg("booking stream stopped")
			}
			return

		case <-ctx.Done():
			return
		}
	}
}

func (s *HTTPServer) snapshotViews(items []models.Booking) []bookingView {
	out := make([]bookingView, 0, len(items))
	for i := range items {
		out = append(out, s.view(&items[i], models.ActorUser))
	}
	return out
}

func writeEvent(w http.ResponseWriter, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
