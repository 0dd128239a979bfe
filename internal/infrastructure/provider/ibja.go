package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"goldrates-service/internal/application"
	"goldrates-service/internal/domain"
	"goldrates-service/internal/infrastructure/httpx"
)

const (
	ibjaLatestPath = "/latest"
	ibjaSource     = "IBJA"
)

// IBJAProvider fetches live gold/silver rates from the IBJA-backed API.
//
// The upstream serializes prices inconsistently (numbers or numeric
// strings). By default coercion is lenient: a field that fails to parse
// becomes 0, and consumers must treat 0 as "unknown", not as a price.
// With Strict set, any unparseable field fails the whole fetch with
// application.ErrParse and the caller falls back to persisted data.
type IBJAProvider struct {
	BaseURL string
	Client  *httpx.Client
	Strict  bool
}

var _ application.RateProvider = (*IBJAProvider)(nil)

type ibjaLatestResp struct {
	City          string `json:"city"`
	Gold24K       any    `json:"gold24k"`
	Gold22K       any    `json:"gold22k"`
	Gold18K       any    `json:"gold18k"`
	SilverPerGram any    `json:"silverPerGram"`
	SilverPerKg   any    `json:"silverPerKg"`
}

func (p *IBJAProvider) FetchLatest(ctx context.Context, city, credential string) (domain.RateSnapshot, error) {
	if p.BaseURL == "" {
		return domain.RateSnapshot{}, fmt.Errorf("%w: ibja base url not set", application.ErrConfig)
	}

	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("%w: invalid base url: %v", application.ErrConfig, err)
	}
	u.Path = ibjaLatestPath

	client := p.Client
	if client == nil {
		client = httpx.New(httpx.DefaultTimeout, httpx.DefaultMaxAttempts, httpx.DefaultInitialDelay)
	}

	var body ibjaLatestResp
	if err := client.GetJSON(ctx, u.String(), credential, &body); err != nil {
		if errors.Is(err, httpx.ErrDecode) {
			return domain.RateSnapshot{}, fmt.Errorf("%w: %v", application.ErrParse, err)
		}
		return domain.RateSnapshot{}, fmt.Errorf("%w: %v", application.ErrFetch, err)
	}

	snap := domain.RateSnapshot{
		City:      body.City,
		Timestamp: time.Now().UTC(),
		Source:    ibjaSource,
	}
	if snap.City == "" {
		snap.City = domain.NormalizeCity(city)
	}

	fields := []struct {
		name string
		raw  any
		dst  *float64
	}{
		{"gold24k", body.Gold24K, &snap.Gold24K},
		{"gold22k", body.Gold22K, &snap.Gold22K},
		{"gold18k", body.Gold18K, &snap.Gold18K},
		{"silverPerGram", body.SilverPerGram, &snap.SilverPerGram},
		{"silverPerKg", body.SilverPerKg, &snap.SilverPerKg},
	}
	for _, f := range fields {
		v, ok := coerceFloat(f.raw)
		if !ok && p.Strict {
			return domain.RateSnapshot{}, fmt.Errorf("%w: field %s: %v", application.ErrParse, f.name, f.raw)
		}
		*f.dst = v
	}
	return snap, nil
}

// coerceFloat accepts the numeric encodings the upstream is known to emit.
// Negative prices are rejected along with garbage.
func coerceFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if f < 0 {
		return 0, false
	}
	return f, true
}
