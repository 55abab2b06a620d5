package route

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"divesurf/internal/broker"
	"divesurf/internal/metrics"
	"divesurf/internal/model"
)

// largeThreshold is the fixed item-count boundary: strictly more is large.
const largeThreshold = 10

type SizeClass string

const (
	SizeLarge SizeClass = "large"
	SizeSmall SizeClass = "small"
)

// Classify returns the size class for an order's item total.
func Classify(overallItems uint) SizeClass {
	if overallItems > largeThreshold {
		return SizeLarge
	}
	return SizeSmall
}

// Router forwards each aggregated result, unchanged except for the size
// class stamp, to the size-specific sink. A record that does not decode as
// an AggregatedResult goes to the error sink rather than defaulting to a
// class.
type Router struct {
	large  broker.Publisher
	small  broker.Publisher
	errors broker.Publisher
	logger *zap.Logger
	mreg   *metrics.Registry
}

func NewRouter(large, small, errors broker.Publisher, logger *zap.Logger, mreg *metrics.Registry) *Router {
	return &Router{large: large, small: small, errors: errors, logger: logger, mreg: mreg}
}

// Route decodes one aggregated-result record and delivers it. The returned
// error means the destination sink rejected the publish; the caller must
// surface it, not drop the record.
func (r *Router) Route(ctx context.Context, raw []byte) error {
	var agg model.AggregatedResult
	if err := json.Unmarshal(raw, &agg); err != nil {
		r.logger.Warn("unroutable result", zap.Error(err))
		r.mreg.RoutedError.Inc()
		if perr := r.errors.Publish(ctx, nil, raw); perr != nil {
			return fmt.Errorf("error sink: %w", perr)
		}
		return nil
	}
	agg.SizeClass = string(Classify(agg.OverallItems))
	b, err := json.Marshal(&agg)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	key := []byte(strconv.FormatUint(agg.OrderID, 10))
	if agg.SizeClass == string(SizeLarge) {
		r.mreg.RoutedLarge.Inc()
		return r.large.Publish(ctx, key, b)
	}
	r.mreg.RoutedSmall.Inc()
	return r.small.Publish(ctx, key, b)
}
