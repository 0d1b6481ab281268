package http

import (
	"net/http"
)

const defaultRecentMonths = 6

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r.URL.Query())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	snapshot, err := s.reports.Snapshot(r.Context(), s.user.ID, year, month)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, snapshot)
}

func (s *Server) handleRecentReport(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r.URL.Query())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	months, err := parsePositiveInt(r.URL.Query(), "months", defaultRecentMonths)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	series, err := s.reports.RecentTotals(r.Context(), s.user.ID, year, month, months)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeList(w, series, len(series))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r.URL.Query())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	recent, err := parsePositiveInt(r.URL.Query(), "recent", 0)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	goals, err := parsePositiveInt(r.URL.Query(), "goals", 0)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	snapshot, err := s.dashboard.Snapshot(r.Context(), s.user.ID, year, month, recent, goals)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, snapshot)
}
