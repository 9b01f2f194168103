package currency

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/alexriley/storefront-sync/pkg/config"
	"github.com/alexriley/storefront-sync/pkg/logger"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type stubSource struct {
	rates Rates
	err   error
	calls int
}

func (s *stubSource) Latest(_ context.Context, _ string) (Rates, error) {
	s.calls++
	return s.rates, s.err
}

type fakeRateCache struct {
	values map[string]string
	setErr error
}

func newFakeRateCache() *fakeRateCache {
	return &fakeRateCache{values: make(map[string]string)}
}

func (f *fakeRateCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	return nil
}

func (f *fakeRateCache) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeRateCache) RatesKey(base string) string {
	return "sfs:rates:" + base
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func testRates() Rates {
	return Rates{
		Base:      "USD",
		FetchedAt: time.Now().UTC(),
		Table: map[string]decimal.Decimal{
			"EUR": decimal.RequireFromString("0.9"),
			"GBP": decimal.RequireFromString("0.8"),
		},
	}
}

func testConfig() config.CurrencyConfig {
	return config.CurrencyConfig{BaseCurrency: "usd", CacheTTL: time.Hour}
}

func TestClientLatest(t *testing.T) {
	var capturedURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		body := `{"result":"success","base_code":"USD","rates":{"EUR":0.9,"GBP":0.8}}`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("http://rates.test/v6", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	rates, err := client.Latest(context.Background(), "usd")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if capturedURL != "http://rates.test/v6/latest/USD" {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if rates.Base != "USD" || len(rates.Table) != 2 {
		t.Fatalf("unexpected rates %+v", rates)
	}
	if got := rates.Table["EUR"].String(); got != "0.9" {
		t.Fatalf("unexpected EUR rate %s", got)
	}
}

func TestClientLatestProviderFailure(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"result":"error","error-type":"invalid-key"}`)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("http://rates.test/v6", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Latest(context.Background(), "USD"); err == nil {
		t.Fatal("expected error for non-success result")
	}
}

func TestServiceCachesRates(t *testing.T) {
	source := &stubSource{rates: testRates()}
	cache := newFakeRateCache()
	svc, err := NewService(source, cache, testConfig(), quietLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx := context.Background()
	first, err := svc.Rates(ctx)
	if err != nil {
		t.Fatalf("rates: %v", err)
	}
	if first.Base != "USD" {
		t.Fatalf("unexpected base %q", first.Base)
	}
	if source.calls != 1 {
		t.Fatalf("expected one source call, got %d", source.calls)
	}
	if _, ok := cache.values["sfs:rates:USD"]; !ok {
		t.Fatal("rates should be cached")
	}

	// Second read comes from the cache.
	if _, err := svc.Rates(ctx); err != nil {
		t.Fatalf("cached rates: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected cached read, source called %d times", source.calls)
	}
}

func TestServiceCacheWriteFailureIsNonFatal(t *testing.T) {
	source := &stubSource{rates: testRates()}
	cache := newFakeRateCache()
	cache.setErr = errors.New("redis down")
	svc, err := NewService(source, cache, testConfig(), quietLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	rates, err := svc.Rates(context.Background())
	if err != nil {
		t.Fatalf("rates should succeed despite cache failure, got %v", err)
	}
	if rates.Base != "USD" {
		t.Fatalf("unexpected rates %+v", rates)
	}
}

func TestConvert(t *testing.T) {
	svc, err := NewService(&stubSource{rates: testRates()}, nil, testConfig(), quietLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx := context.Background()
	amount := decimal.NewFromInt(10)

	same, err := svc.Convert(ctx, amount, "USD")
	if err != nil || !same.Equal(amount) {
		t.Fatalf("base conversion should be identity, got %v %v", same, err)
	}

	eur, err := svc.Convert(ctx, amount, "eur")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if eur.String() != "9" {
		t.Fatalf("unexpected converted amount %s", eur)
	}

	_, err = svc.Convert(ctx, amount, "XXX")
	if !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("expected ErrUnknownCurrency, got %v", err)
	}
}
