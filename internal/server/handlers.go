package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/ppiankov/macrolens/internal/gateway"
	"github.com/ppiankov/macrolens/internal/logger"
	"github.com/ppiankov/macrolens/internal/model"
)

// maxQueryBytes bounds the natural language request body
const maxQueryBytes = 64 << 10

// QueryRequest is the body of POST /api/query/natural_language
type QueryRequest struct {
	Query string `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type collectionResponse struct {
	Status  string   `json:"status"`
	Sources []string `json:"sources"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	res, err := s.pipeline.Run(r.Context(), req.Query)
	if err != nil {
		logger.Log.WithError(err).Warn("Query aborted")
		writeError(w, http.StatusServiceUnavailable, "query was cancelled")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.Catalog().Countries())
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.Catalog().Indicators())
}

// handleSeries answers GET /api/data/series?country=CHN&indicator=NY.GDP.MKTP.CD&start=2015&end=2020
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	country := model.CountryCode(strings.ToUpper(query.Get("country")))
	indicator := model.IndicatorCode(query.Get("indicator"))

	if country == "" || indicator == "" {
		writeError(w, http.StatusBadRequest, "country and indicator are required")
		return
	}
	cat := s.pipeline.Catalog()
	if _, ok := cat.Country(country); !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown country %q", country))
		return
	}
	if _, ok := cat.Indicator(indicator); !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown indicator %q", indicator))
		return
	}

	start, err := parseDateParam(query.Get("start"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDateParam(query.Get("end"), true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	gw := s.pipeline.Gateway()
	if gw == nil {
		writeError(w, http.StatusServiceUnavailable, "no data gateway configured")
		return
	}

	series, err := gw.Fetch(r.Context(), country, indicator, start, end)
	if err != nil {
		logger.Log.WithError(err).WithField("country", country).WithField("indicator", indicator).Warn("Series lookup failed")
		writeError(w, http.StatusBadGateway, "series lookup failed")
		return
	}
	if series == nil || series.Empty() {
		writeError(w, http.StatusNotFound, "no data")
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleCollectAll(w http.ResponseWriter, r *http.Request) {
	s.startCollection(w, []string{gateway.SourceWorldBank, gateway.SourceIMF})
}

func (s *Server) handleCollectSource(w http.ResponseWriter, r *http.Request) {
	source := strings.ReplaceAll(mux.Vars(r)["source"], "-", "")
	switch source {
	case gateway.SourceWorldBank, gateway.SourceIMF:
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown source %q", source))
		return
	}
	s.startCollection(w, []string{source})
}

// startCollection runs the collector in the background and answers 202.
// Only one run may be in flight; later requests get 409 until it finishes.
func (s *Server) startCollection(w http.ResponseWriter, sources []string) {
	if s.collector == nil {
		writeError(w, http.StatusServiceUnavailable, "collection is not configured")
		return
	}

	if !s.collecting.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, "collection already running")
		return
	}

	ctx := s.baseCtx
	go func() {
		defer s.collecting.Store(false)
		summaries, err := s.collector.Run(ctx, sources)
		for _, sum := range summaries {
			logger.Log.WithField("source", sum.Source).
				WithField("saved", sum.Saved).
				WithField("missing", sum.Missing).
				WithField("failed", sum.Failed).
				Info("Collection finished")
		}
		if err != nil {
			logger.Log.WithError(err).Error("Collection failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, collectionResponse{Status: "started", Sources: sources})
}

// parseDateParam accepts "2020" or "2020-06-30". A bare end year means Dec 31.
func parseDateParam(v string, isEnd bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if year, err := strconv.Atoi(v); err == nil {
		t := model.YearStart(year)
		if isEnd {
			t = model.YearEnd(year)
		}
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY or YYYY-MM-DD", v)
	}
	return &t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
