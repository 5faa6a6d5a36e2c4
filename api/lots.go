package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rustyeddy/lotboard/lot"
	"github.com/rustyeddy/lotboard/metrics"
	"github.com/rustyeddy/lotboard/view"
)

// RowOut is a rendered row with its expanded details.
type RowOut struct {
	view.Row
	Details view.Details `json:"details"`
}

func (s *Server) handleListLots(w http.ResponseWriter, r *http.Request) {
	bucket, err := queryInt64(r, "bucket_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	lots, err := s.store.ListLots(r.Context(), bucket)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lots)
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	bucket, err := queryInt64(r, "bucket_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts := s.display
	if v := r.URL.Query().Get("relative"); v != "" {
		rel, err := strconv.ParseBool(v)
		if err != nil {
			s.fail(w, r, fmt.Errorf("relative %q: %w", v, lot.ErrInvalid))
			return
		}
		opts.RelativeStop = rel
	}

	lots, err := s.store.ListLots(r.Context(), bucket)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make([]RowOut, 0, len(lots))
	for _, l := range lots {
		if l.Status == lot.Open || l.Status == lot.Pending {
			s.quotes.Track(l.Symbol)
		}
		out = append(out, RowOut{
			Row:     view.Render(l, s.quotes.Get(l.Symbol), opts),
			Details: view.Expand(l, opts),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLotMetrics(w http.ResponseWriter, r *http.Request) {
	l, err := s.store.GetLot(r.Context(), mux.Vars(r)["lot_id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics.Compute(l, s.quotes.Get(l.Symbol).Price()))
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	q, applied, err := s.quotes.Fetch(r.Context(), r.URL.Query().Get("sym"))
	if err != nil {
		s.upstreamFail(w, r, err)
		return
	}
	if applied {
		s.PublishQuote(q)
	}
	writeJSON(w, http.StatusOK, q)
}
