package server

import (
	"context"
	"net/http"
	"time"
)

// handlePriceSync handles POST /api/prices/sync. The sync runs in the
// background with its own timeout so a slow price source cannot hold the
// request open.
func (s *Server) handlePriceSync(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if userID := requireUser(w, r); userID == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		start := time.Now()
		synced, err := s.app.PriceSyncService.SyncAll(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Price sync failed")
			return
		}
		s.logger.Info().
			Int("assets", synced).
			Dur("elapsed", time.Since(start)).
			Msg("Price sync complete")
	}()

	WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"status": "accepted",
	})
}
