package exchangerate

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"go-currency-converter"
	"go-currency-converter/exchange"
)

// loggingService decorates an exchange.RateSource with logging
type loggingService struct {
	next   exchange.RateSource
	logger log.Logger
}

// NewLoggingService return a new logging rate source
func NewLoggingService(logger log.Logger, s exchange.RateSource) exchange.RateSource {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) Fetch(ctx context.Context, base currency.Currency) (rates currency.Rates, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "fetch",
			"currency", base,
			"rates", len(rates),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Fetch(ctx, base)
}
