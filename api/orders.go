package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/rustyeddy/lotboard/broker"
	"github.com/rustyeddy/lotboard/lot"
	"github.com/rustyeddy/lotboard/pkg/id"
	"github.com/rustyeddy/lotboard/risk"
)

const defaultTimeInForce = "day"

type placeOrderRequest struct {
	risk.OrderIntent
	TimeInForce string `json:"time_in_force"`
}

type placeOrderResponse struct {
	Lot      lot.Lot       `json:"lot"`
	Decision risk.Decision `json:"decision"`
}

// fillRequest is the broker's order-status callback for a lot's order.
type fillRequest struct {
	Status         string     `json:"status"`
	FilledAvgPrice *float64   `json:"filled_avg_price,omitempty"`
	FilledAt       *time.Time `json:"filled_at,omitempty"`
	Reason         string     `json:"reason,omitempty"`
}

// Broker statuses that end a Pending order without a fill.
var unfilledFinal = map[string]bool{
	"canceled": true,
	"expired":  true,
	"rejected": true,
}

type liquidateRequest struct {
	Type       lot.OrderType `json:"type"`
	LimitPrice *float64      `json:"limit_price,omitempty"`
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req placeOrderRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	in := req.OrderIntent
	in.Symbol = lot.NormalizeSymbol(in.Symbol)
	if in.Type == "" {
		in.Type = lot.MarketOrder
	}
	if in.Type != lot.MarketOrder && in.Type != lot.LimitOrder {
		s.fail(w, r, fmt.Errorf("order type %q: %w", in.Type, lot.ErrInvalid))
		return
	}
	if in.PositionType == "" {
		in.PositionType = lot.Long
	}

	if in.BucketID != 0 {
		if _, err := s.store.GetBucket(ctx, in.BucketID); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	last := s.quotes.Get(in.Symbol).Price()
	if last == nil && in.Type == lot.MarketOrder && in.Symbol != "" {
		if q, _, err := s.quotes.Fetch(ctx, in.Symbol); err == nil {
			last = &q.Price
		}
	}

	d := risk.Evaluate(s.policy, in, last)
	if !d.Allowed {
		writeJSON(w, http.StatusUnprocessableEntity, d)
		return
	}

	tif := req.TimeInForce
	if tif == "" {
		tif = defaultTimeInForce
	}
	order := broker.OrderRequest{
		ClientID:    id.NewClientOrderID(),
		Symbol:      in.Symbol,
		Qty:         in.Qty,
		Side:        broker.EntrySide(in.PositionType),
		Type:        in.Type,
		TimeInForce: tif,
	}
	if in.Type == lot.LimitOrder {
		order.LimitPrice = in.Limit
	}
	if in.HardStop {
		order.StopLoss = in.Stop
	}
	if in.HardTarget {
		order.TakeProfit = in.Target
	}

	ack, err := s.broker.SubmitOrder(ctx, order)
	s.metrics.ObserveOrder("submit", err)
	if err != nil {
		s.upstreamFail(w, r, fmt.Errorf("submit order: %w", err))
		return
	}

	l := lot.Lot{
		BucketID:     in.BucketID,
		Symbol:       in.Symbol,
		Qty:          in.Qty,
		PositionType: in.PositionType,
		LimitPrice:   order.LimitPrice,
		StopPrice:    in.Stop,
		TargetPrice:  in.Target,
		Status:       lot.Pending,
		BrokerStatus: ack.Status,
		TimeInForce:  tif,
		ClientID:     order.ClientID,
	}
	if ack.Filled() {
		l.Status = lot.Open
		l.FilledAvgPrice = ack.FilledAvgPrice
	}

	l, err = s.store.CreateLot(ctx, l)
	if err != nil {
		s.log.ErrorContext(ctx, "order accepted upstream but not recorded",
			slog.String("client_id", order.ClientID),
			slog.String("error", err.Error()),
		)
		s.fail(w, r, err)
		return
	}

	s.quotes.Track(l.Symbol)
	s.publishLot(l)
	writeJSON(w, http.StatusCreated, placeOrderResponse{Lot: l, Decision: d})
}

func (s *Server) handleLiquidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req liquidateRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Type == "" {
		req.Type = lot.MarketOrder
	}
	switch req.Type {
	case lot.MarketOrder:
		req.LimitPrice = nil
	case lot.LimitOrder:
		if req.LimitPrice == nil || *req.LimitPrice <= 0 {
			s.fail(w, r, fmt.Errorf("limit liquidation needs a positive limit price: %w", lot.ErrInvalid))
			return
		}
	default:
		s.fail(w, r, fmt.Errorf("order type %q: %w", req.Type, lot.ErrInvalid))
		return
	}

	l, err := s.lotByClientID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if l.Status != lot.Open {
		s.fail(w, r, fmt.Errorf("lot %s is %s: %w", l.ID, l.Status, lot.ErrNotLiquidatable))
		return
	}

	ack, err := s.broker.Liquidate(ctx, broker.LiquidateRequest{
		ClientID:   l.ClientID,
		Side:       broker.ExitSide(l.PositionType),
		Qty:        l.Qty,
		Type:       req.Type,
		LimitPrice: req.LimitPrice,
	})
	s.metrics.ObserveOrder("liquidate", err)
	if err != nil {
		s.upstreamFail(w, r, fmt.Errorf("liquidate %s: %w", l.ClientID, err))
		return
	}

	if ack.Filled() {
		at := s.now()
		if ack.FilledAt != nil {
			at = *ack.FilledAt
		}
		err = s.store.MarkDisposed(ctx, l.ID, *ack.FilledAvgPrice, "Liquidated", at)
	} else {
		err = s.store.UpdateBrokerStatus(ctx, l.ID, ack.Status)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.respondLot(w, r, l.ID)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	l, err := s.lotByClientID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if l.Status != lot.Pending {
		s.fail(w, r, fmt.Errorf("lot %s is %s: %w", l.ID, l.Status, lot.ErrNotCancelable))
		return
	}

	err = s.broker.CancelOrder(ctx, l.ClientID)
	s.metrics.ObserveOrder("cancel", err)
	if err != nil {
		s.upstreamFail(w, r, fmt.Errorf("cancel %s: %w", l.ClientID, err))
		return
	}
	if err := s.store.MarkCanceled(ctx, l.ID); err != nil {
		s.fail(w, r, err)
		return
	}

	s.respondLot(w, r, l.ID)
}

// handleFill applies an order status reported by the broker. A fill opens a
// Pending lot or disposes of an Open one; anything else only records the
// broker status.
func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req fillRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if req.FilledAvgPrice != nil && *req.FilledAvgPrice < 0 {
		s.fail(w, r, fmt.Errorf("negative fill price: %w", lot.ErrInvalid))
		return
	}
	if req.FilledAvgPrice == nil && req.Status == "" {
		s.fail(w, r, fmt.Errorf("fill needs a status or a price: %w", lot.ErrInvalid))
		return
	}

	l, err := s.lotByClientID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	filled := req.FilledAvgPrice != nil
	switch {
	case l.Status == lot.Pending && filled:
		err = s.store.MarkOpen(ctx, l.ID, *req.FilledAvgPrice)
	case l.Status == lot.Pending && unfilledFinal[req.Status]:
		err = s.store.MarkCanceled(ctx, l.ID)
	case l.Status == lot.Open && filled:
		reason := strings.TrimSpace(req.Reason)
		if reason == "" {
			reason = "Liquidated"
		}
		at := s.now()
		if req.FilledAt != nil {
			at = *req.FilledAt
		}
		err = s.store.MarkDisposed(ctx, l.ID, *req.FilledAvgPrice, reason, at)
	case l.Status == lot.Pending, l.Status == lot.Open:
		// status only
	default:
		err = fmt.Errorf("lot %s is %s: %w", l.ID, l.Status, lot.ErrLotClosed)
	}
	if err == nil && req.Status != "" {
		err = s.store.UpdateBrokerStatus(ctx, l.ID, req.Status)
	}
	s.metrics.ObserveOrder("fill", err)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.respondLot(w, r, l.ID)
}

// lotByClientID loads the lot named by the client_id route variable.
func (s *Server) lotByClientID(r *http.Request) (lot.Lot, error) {
	clientID := mux.Vars(r)["client_id"]
	if !id.ValidClientOrderID(clientID) {
		return lot.Lot{}, fmt.Errorf("client order id %q: %w", clientID, lot.ErrInvalid)
	}
	return s.store.GetLotByClientID(r.Context(), clientID)
}

func (s *Server) respondLot(w http.ResponseWriter, r *http.Request, lotID string) {
	l, err := s.store.GetLot(r.Context(), lotID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.publishLot(l)
	writeJSON(w, http.StatusOK, l)
}
