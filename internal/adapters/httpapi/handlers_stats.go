package httpapi

import (
	"fmt"
	"net/http"
	"time"
)

// dateQuery parses a YYYY-MM-DD query parameter, defaulting to today.
func dateQuery(r *http.Request, key string) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date %q, want YYYY-MM-DD", key, v)
	}
	return t, nil
}

func (s *Server) handleStatsDaily(w http.ResponseWriter, r *http.Request) {
	date, err := dateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	stats, err := s.stats.Daily(r.Context(), userID(r), date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleStatsWeekly(w http.ResponseWriter, r *http.Request) {
	start, err := dateQuery(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	stats, err := s.stats.Weekly(r.Context(), userID(r), start)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"start": start.Format("2006-01-02"), "days": stats})
}

func (s *Server) handleStatsMonthly(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	var ref time.Time
	if month == "" {
		ref = time.Now().UTC()
	} else {
		var err error
		ref, err = time.ParseInLocation("2006-01", month, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid month %q, want YYYY-MM", month))
			return
		}
	}

	stats, err := s.stats.Monthly(r.Context(), userID(r), ref.Year(), ref.Month())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"month": ref.Format("2006-01"), "days": stats})
}

func (s *Server) handleStatsStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := s.stats.Streak(r.Context(), userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, streak)
}
