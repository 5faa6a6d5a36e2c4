// Package api serves the lots dashboard over HTTP: buckets, lots, rendered
// rows, quotes, order commands and a websocket quote feed.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rustyeddy/lotboard/broker"
	"github.com/rustyeddy/lotboard/internal/telemetry"
	"github.com/rustyeddy/lotboard/lot"
	"github.com/rustyeddy/lotboard/quotes"
	"github.com/rustyeddy/lotboard/risk"
	"github.com/rustyeddy/lotboard/view"
)

// Store is the persistence the API needs.
type Store interface {
	Ping(ctx context.Context) error

	ListBuckets(ctx context.Context) ([]lot.Bucket, error)
	GetBucket(ctx context.Context, id int64) (lot.Bucket, error)
	CreateBucket(ctx context.Context, name string) (lot.Bucket, error)
	RenameBucket(ctx context.Context, id int64, name string) error
	DeleteBucket(ctx context.Context, id int64) error

	CreateLot(ctx context.Context, l lot.Lot) (lot.Lot, error)
	GetLot(ctx context.Context, lotID string) (lot.Lot, error)
	GetLotByClientID(ctx context.Context, clientID string) (lot.Lot, error)
	ListLots(ctx context.Context, bucketID int64) ([]lot.Lot, error)
	MarkCanceled(ctx context.Context, lotID string) error
	MarkOpen(ctx context.Context, lotID string, fill float64) error
	MarkDisposed(ctx context.Context, lotID string, fill float64, reason string, at time.Time) error
	UpdateBrokerStatus(ctx context.Context, lotID, brokerStatus string) error
}

type Options struct {
	Policy      risk.Policy
	Display     view.Options
	CORSOrigins []string
	Logger      *slog.Logger
	Metrics     *telemetry.Metrics
}

type Server struct {
	store   Store
	broker  broker.Broker
	quotes  *quotes.Cache
	hub     *Hub
	policy  risk.Policy
	display view.Options
	log     *slog.Logger
	metrics *telemetry.Metrics
	router  *mux.Router
	now     func() time.Time
}

func NewServer(st Store, b broker.Broker, qc *quotes.Cache, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:   st,
		broker:  b,
		quotes:  qc,
		hub:     NewHub(logger, opts.Metrics),
		policy:  opts.Policy,
		display: opts.Display,
		log:     logger,
		metrics: opts.Metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}

	r := mux.NewRouter()
	r.Use(Logging(logger, opts.Metrics))
	r.Use(CORS(opts.CORSOrigins))

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/buckets", s.handleListBuckets).Methods(http.MethodGet)
	r.HandleFunc("/bucket", s.handleCreateBucket).Methods(http.MethodPost)
	r.HandleFunc("/bucket/{id:[0-9]+}", s.handleRenameBucket).Methods(http.MethodPatch)
	r.HandleFunc("/bucket/{id:[0-9]+}", s.handleDeleteBucket).Methods(http.MethodDelete)

	r.HandleFunc("/orders", s.handleListLots).Methods(http.MethodGet)
	r.HandleFunc("/rows", s.handleRows).Methods(http.MethodGet)
	r.HandleFunc("/metrics/{lot_id}", s.handleLotMetrics).Methods(http.MethodGet)
	r.HandleFunc("/latest", s.handleLatest).Methods(http.MethodGet)

	r.HandleFunc("/order", s.handlePlaceOrder).Methods(http.MethodPost)
	r.HandleFunc("/order/{client_id}/liquidate", s.handleLiquidate).Methods(http.MethodPost)
	r.HandleFunc("/order/{client_id}/fill", s.handleFill).Methods(http.MethodPost)
	r.HandleFunc("/order/{client_id}", s.handleCancel).Methods(http.MethodDelete)

	r.HandleFunc("/ws", s.hub.ServeWS).Methods(http.MethodGet)
	r.Handle("/prom", opts.Metrics.Handler()).Methods(http.MethodGet)

	// Preflight requests must reach the CORS middleware for every route.
	r.Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Hub() *Hub {
	return s.hub
}

// PublishQuote pushes an applied quote to websocket clients.
func (s *Server) PublishQuote(q lot.Quote) {
	s.hub.Broadcast(Event{Type: "quote", Quote: &q})
}

func (s *Server) publishLot(l lot.Lot) {
	s.hub.Broadcast(Event{Type: "lot", Lot: &l})
}

// TrackLots registers the symbols of live lots with the quote cache.
func (s *Server) TrackLots(ctx context.Context) error {
	lots, err := s.store.ListLots(ctx, 0)
	if err != nil {
		return err
	}
	for _, l := range lots {
		if l.Status == lot.Open || l.Status == lot.Pending {
			s.quotes.Track(l.Symbol)
		}
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
