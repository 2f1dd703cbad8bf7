package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"simtrader/internal/domain"
	"simtrader/internal/util"
)

// Compile-time interface check.
var _ Source = (*AlpacaSource)(nil)

// AlpacaSource fetches historical daily bars from the Alpaca market-data
// API. Requests are rate-limited and retried with backoff.
type AlpacaSource struct {
	client  *marketdata.Client
	start   time.Time
	end     time.Time
	limiter *util.RateLimiter
}

// NewAlpacaSource creates an AlpacaSource for the [start, end] date range.
// dataURL may be empty to use the SDK default endpoint.
func NewAlpacaSource(apiKey, apiSecret, dataURL string, start, end time.Time, ratePerMin, burst int) *AlpacaSource {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	if ratePerMin <= 0 {
		ratePerMin = 200
	}

	return &AlpacaSource{
		client:  marketdata.NewClient(opts),
		start:   start,
		end:     end,
		limiter: util.NewRateLimiter(ratePerMin, burst),
	}
}

// Name returns "alpaca".
func (s *AlpacaSource) Name() string { return "alpaca" }

// Bars fetches daily bars for the symbol and maps them into domain bars.
func (s *AlpacaSource) Bars(ctx context.Context, symbol string) ([]domain.Bar, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var alpacaBars []marketdata.Bar
	err := util.Retry(ctx, 3, time.Second, func() error {
		var err error
		alpacaBars, err = s.client.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     s.start,
			End:       s.end,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetBars %s: %w", symbol, err)
	}

	bars := make([]domain.Bar, 0, len(alpacaBars))
	for _, ab := range alpacaBars {
		bars = append(bars, domain.Bar{
			Symbol:    strings.ToUpper(symbol),
			Timestamp: ab.Timestamp,
			Open:      ab.Open,
			High:      ab.High,
			Low:       ab.Low,
			Close:     ab.Close,
			Volume:    int64(ab.Volume),
		})
	}

	return validated("alpaca", bars)
}
