package correlate

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"divesurf/internal/metrics"
	"divesurf/internal/model"
)

// DefaultTimeout bounds how long the correlator waits for the second
// partial result of an order.
const DefaultTimeout = 5 * time.Second

// Emitter receives each aggregated result exactly once.
type Emitter func(model.AggregatedResult)

// pendingJoin is the per-order state between the first arrival and either
// the second arrival or the timeout.
type pendingJoin struct {
	first   model.PartialResult
	firstAt time.Time
	timer   *time.Timer
}

// Correlator joins the credit and stock partial results for each order id
// into one AggregatedResult. The merge is commutative; a duplicate
// (orderId, source) arrival is discarded; when only one side arrives within
// the timeout the aggregate is emitted with Valid forced to false, since a
// missing validation is never implicit success.
//
// The map mutex is the single decision point per key: arrivals and timer
// firings both take it, so whichever acquires it first wins and the loser
// finds the state already discarded. Emission happens outside the lock.
type Correlator struct {
	mu      sync.Mutex
	pending map[uint64]*pendingJoin
	closed  bool

	timeout time.Duration
	emit    Emitter
	logger  *zap.Logger
	mreg    *metrics.Registry
}

func New(timeout time.Duration, emit Emitter, logger *zap.Logger, mreg *metrics.Registry) *Correlator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Correlator{
		pending: make(map[uint64]*pendingJoin),
		timeout: timeout,
		emit:    emit,
		logger:  logger,
		mreg:    mreg,
	}
}

// Offer feeds one partial result into the correlator.
func (c *Correlator) Offer(pr model.PartialResult) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.Warn("partial result after close, dropped",
			zap.Uint64("orderId", pr.OrderID), zap.String("source", string(pr.Source)))
		return
	}
	p, ok := c.pending[pr.OrderID]
	if !ok {
		id := pr.OrderID
		c.pending[id] = &pendingJoin{
			first:   pr,
			firstAt: time.Now(),
			timer:   time.AfterFunc(c.timeout, func() { c.expire(id) }),
		}
		c.mu.Unlock()
		return
	}
	if p.first.Source == pr.Source {
		c.mu.Unlock()
		c.logger.Warn("duplicate partial result discarded",
			zap.Uint64("orderId", pr.OrderID), zap.String("source", string(pr.Source)))
		c.mreg.ResultsDuplicate.Inc()
		return
	}
	p.timer.Stop()
	delete(c.pending, pr.OrderID)
	agg := Merge(p.first, pr)
	elapsed := time.Since(p.firstAt)
	c.mu.Unlock()

	c.mreg.ResultsCompleted.Inc()
	c.mreg.JoinLatencySec.Observe(elapsed.Seconds())
	c.emit(agg)
}

// expire is the timer path. A timer that fires after the key completed (or
// after a concurrent expiry won the lock) finds no state and does nothing.
func (c *Correlator) expire(orderID uint64) {
	c.mu.Lock()
	p, ok := c.pending[orderID]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.pending, orderID)
	agg := timedOut(p.first)
	c.mu.Unlock()

	c.logger.Warn("correlation timeout, emitting incomplete result",
		zap.Uint64("orderId", orderID), zap.String("arrived", string(p.first.Source)))
	c.mreg.ResultsTimedOut.Inc()
	c.emit(agg)
}

// Close cancels all armed timers and drops any still-pending joins. Pending
// orders are not emitted; a restarted consumer will see their partial
// results again through the at-least-once subscription.
func (c *Correlator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, p := range c.pending {
		p.timer.Stop()
		delete(c.pending, id)
	}
}

// Merge combines the two partial results of one order. Commutative: the
// credit side supplies the customer fields and score, the stock side the
// stock levels, validity is the conjunction and the details are joined.
func Merge(a, b model.PartialResult) model.AggregatedResult {
	cr, st := a, b
	if cr.Source == model.SourceStock {
		cr, st = b, a
	}
	agg := model.AggregatedResult{
		OrderID:      cr.OrderID,
		CustomerID:   cr.CustomerID,
		FirstName:    cr.FirstName,
		LastName:     cr.LastName,
		OverallItems: cr.OverallItems,
		Valid:        cr.Valid && st.Valid,
		Detail:       joinDetails(cr.Detail, st.Detail),
		CreditScore:  cr.CreditScore,
	}
	if st.StockAfter != nil {
		agg.StockAfter = *st.StockAfter
	}
	return agg
}

// timedOut synthesizes the aggregate from the one side that arrived. The
// missing side's fields stay zero and Valid is forced to false.
func timedOut(first model.PartialResult) model.AggregatedResult {
	missing := "stock validation missing"
	if first.Source == model.SourceStock {
		missing = "credit validation missing"
	}
	agg := model.AggregatedResult{
		OrderID:      first.OrderID,
		CustomerID:   first.CustomerID,
		FirstName:    first.FirstName,
		LastName:     first.LastName,
		OverallItems: first.OverallItems,
		Valid:        false,
		Detail:       joinDetails(first.Detail, "incomplete: "+missing),
		CreditScore:  first.CreditScore,
	}
	if first.StockAfter != nil {
		agg.StockAfter = *first.StockAfter
	}
	return agg
}

func joinDetails(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " && " + b
	}
}
