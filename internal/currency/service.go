package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/alexriley/storefront-sync/pkg/config"
	pkgerrors "github.com/alexriley/storefront-sync/pkg/errors"
	"github.com/alexriley/storefront-sync/pkg/logger"
)

// ErrUnknownCurrency is returned when the rate table has no entry for the
// requested currency.
var ErrUnknownCurrency = pkgerrors.New(pkgerrors.CodeValidation, "unknown currency code")

// rateSource is the slice of the REST client the service needs.
type rateSource interface {
	Latest(ctx context.Context, base string) (Rates, error)
}

// rateCache is the slice of the redis client the service needs.
type rateCache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	RatesKey(base string) string
}

type Service interface {
	Rates(ctx context.Context) (Rates, error)
	Convert(ctx context.Context, amount decimal.Decimal, target string) (decimal.Decimal, error)
}

type service struct {
	source rateSource
	cache  rateCache
	base   string
	ttl    time.Duration
	logg   *logger.Logger
}

func NewService(source rateSource, cache rateCache, cfg config.CurrencyConfig, logg *logger.Logger) (Service, error) {
	if source == nil {
		return nil, errors.New("rate source is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	base := strings.ToUpper(strings.TrimSpace(cfg.BaseCurrency))
	if base == "" {
		return nil, errors.New("base currency is required")
	}
	return &service{
		source: source,
		cache:  cache,
		base:   base,
		ttl:    cfg.CacheTTL,
		logg:   logg,
	}, nil
}

// Rates returns the current table for the store base currency, served from
// redis while the cached copy is fresh. A cache write failure is logged and
// otherwise ignored; the fetched table is still returned.
func (s *service) Rates(ctx context.Context) (Rates, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, s.cache.RatesKey(s.base))
		if err == nil {
			var cached Rates
			if err := json.Unmarshal([]byte(raw), &cached); err == nil && len(cached.Table) > 0 {
				return cached, nil
			}
		} else if !errors.Is(err, goredis.Nil) {
			s.logg.Warn(ctx, fmt.Sprintf("rates cache read failed: %v", err))
		}
	}

	rates, err := s.source.Latest(ctx, s.base)
	if err != nil {
		return Rates{}, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(rates)
		if err == nil {
			err = s.cache.Set(ctx, s.cache.RatesKey(s.base), payload, s.ttl)
		}
		if err != nil {
			s.logg.Warn(ctx, fmt.Sprintf("rates cache write failed: %v", err))
		}
	}
	return rates, nil
}

// Convert multiplies an amount in the base currency into the target
// currency at the current rate.
func (s *service) Convert(ctx context.Context, amount decimal.Decimal, target string) (decimal.Decimal, error) {
	target = strings.ToUpper(strings.TrimSpace(target))
	if target == s.base {
		return amount, nil
	}

	rates, err := s.Rates(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	rate, ok := rates.Table[target]
	if !ok {
		return decimal.Zero, ErrUnknownCurrency
	}
	return amount.Mul(rate), nil
}
