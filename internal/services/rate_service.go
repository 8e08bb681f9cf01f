package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Rate is a buy/sell dollar quote.
type Rate struct {
	Compra float64 `json:"compra"`
	Venta  float64 `json:"venta"`
	Fecha  string  `json:"fecha"`
	Fuente string  `json:"fuente"`
}

// RateTier is one source in the fallback chain.
type RateTier func(ctx context.Context) (*Rate, error)

const rateCacheTTL = 5 * time.Minute

// RateService resolves the dollar rate through an ordered chain of sources,
// terminating in constants so the endpoint can always answer 200. Results are
// cached for five minutes.
type RateService struct {
	Tiers []RateTier

	mu        sync.Mutex
	cached    *Rate
	fetchedAt time.Time
}

func NewRateService() *RateService {
	client := &http.Client{Timeout: 10 * time.Second}
	return &RateService{
		Tiers: []RateTier{
			dolarAPITier(client, "https://dolarapi.com/v1/dolares/oficial"),
			bluelyticsTier(client, "https://api.bluelytics.com.ar/v2/latest"),
			constantTier(),
		},
	}
}

// Current never fails: the last tier is a constant.
func (s *RateService) Current(ctx context.Context) *Rate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil && time.Since(s.fetchedAt) < rateCacheTTL {
		return s.cached
	}
	for _, tier := range s.Tiers {
		r, err := tier(ctx)
		if err != nil || r == nil {
			continue
		}
		s.cached = r
		s.fetchedAt = time.Now()
		return r
	}
	// Unreachable while constantTier terminates the chain.
	return fallbackRate()
}

func dolarAPITier(client *http.Client, url string) RateTier {
	return func(ctx context.Context) (*Rate, error) {
		var body struct {
			Compra             float64 `json:"compra"`
			Venta              float64 `json:"venta"`
			FechaActualizacion string  `json:"fechaActualizacion"`
		}
		if err := fetchJSON(ctx, client, url, &body); err != nil {
			return nil, err
		}
		if body.Venta <= 0 {
			return nil, errors.New("dolarapi: empty quote")
		}
		return &Rate{Compra: body.Compra, Venta: body.Venta, Fecha: body.FechaActualizacion, Fuente: "dolarapi"}, nil
	}
}

func bluelyticsTier(client *http.Client, url string) RateTier {
	return func(ctx context.Context) (*Rate, error) {
		var body struct {
			Oficial struct {
				ValueBuy  float64 `json:"value_buy"`
				ValueSell float64 `json:"value_sell"`
			} `json:"oficial"`
			LastUpdate string `json:"last_update"`
		}
		if err := fetchJSON(ctx, client, url, &body); err != nil {
			return nil, err
		}
		if body.Oficial.ValueSell <= 0 {
			return nil, errors.New("bluelytics: empty quote")
		}
		return &Rate{Compra: body.Oficial.ValueBuy, Venta: body.Oficial.ValueSell, Fecha: body.LastUpdate, Fuente: "bluelytics"}, nil
	}
}

func constantTier() RateTier {
	return func(context.Context) (*Rate, error) { return fallbackRate(), nil }
}

func fallbackRate() *Rate {
	return &Rate{Compra: 980, Venta: 1020, Fecha: time.Now().UTC().Format(time.RFC3339), Fuente: "fallback"}
}

func fetchJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
