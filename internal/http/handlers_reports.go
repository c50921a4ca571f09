package http

import (
	"errors"
	"net/http"
	"strconv"

	"centavo/internal/report"
)

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := s.svc.Summary.Month(r.Context(), currentUser(r).ID, year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := s.svc.Summary.Month(r.Context(), currentUser(r).ID, year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	img, err := report.MonthChart(sum)
	if errors.Is(err, report.ErrNoData) {
		writeErrorMessage(w, http.StatusNotFound, "no expenses to chart for "+sum.Period)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}
