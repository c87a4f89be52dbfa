package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/cardvault/backend/internal/logger"
	"github.com/cardvault/backend/internal/metrics"
	"github.com/cardvault/backend/internal/models"
)

// CardCatalog is the external card catalog boundary. Lookups may be slow and
// may fail; callers own the retry policy, implementations never retry.
type CardCatalog interface {
	ResolveCard(ctx context.Context, apiID string) (*models.CatalogCard, error)
	SearchCards(ctx context.Context, query string, page, pageSize int) (*models.CardSearchResult, error)
}

const (
	catalogDefaultTimeout = 10 * time.Second
	catalogCacheSize      = 2048
	catalogRatePerSecond  = 5
)

// PokemonTCGClient resolves cards against api.pokemontcg.io. Resolved
// entries are cached in-memory and outbound calls go through a rate
// limiter so bursts of collection adds cannot exhaust the API quota.
type PokemonTCGClient struct {
	client  *resty.Client
	limiter *rate.Limiter
	cache   *lru.Cache[string, *models.CatalogCard]
}

func NewPokemonTCGClient(baseURL, apiKey string) *PokemonTCGClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(catalogDefaultTimeout).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetHeader("X-Api-Key", apiKey)
	}

	cache, err := lru.New[string, *models.CatalogCard](catalogCacheSize)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create catalog cache")
	}

	return &PokemonTCGClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(catalogRatePerSecond), catalogRatePerSecond),
		cache:   cache,
	}
}

type pokemonCardPayload struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Supertype string   `json:"supertype"`
	Subtypes  []string `json:"subtypes"`
	Number    string   `json:"number"`
	Rarity    string   `json:"rarity"`
	Artist    string   `json:"artist"`
	Set       *struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Series      string `json:"series"`
		ReleaseDate string `json:"releaseDate"`
	} `json:"set"`
	Images *struct {
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"images"`
	TCGPlayer *struct {
		Prices map[string]struct {
			Market *float64 `json:"market"`
		} `json:"prices"`
	} `json:"tcgplayer"`
}

type singleCardResponse struct {
	Data *pokemonCardPayload `json:"data"`
}

type cardListResponse struct {
	Data       []pokemonCardPayload `json:"data"`
	TotalCount int                  `json:"totalCount"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	Count      int                  `json:"count"`
}

// ResolveCard fetches a single card by its external id. Any failure mode
// (network, rate-limit wait aborted, unknown id, malformed payload) wraps
// models.ErrCardResolution.
func (p *PokemonTCGClient) ResolveCard(ctx context.Context, apiID string) (*models.CatalogCard, error) {
	if cached, ok := p.cache.Get(apiID); ok {
		metrics.CatalogCacheHits.Inc()
		return cached, nil
	}
	metrics.CatalogCacheMisses.Inc()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", models.ErrCardResolution, err)
	}

	start := time.Now()
	var out singleCardResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/cards/" + apiID)
	metrics.CatalogRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: fetching card %s: %v", models.ErrCardResolution, apiID, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		metrics.CatalogRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: card %s not found in catalog", models.ErrCardResolution, apiID)
	}
	if resp.IsError() {
		metrics.CatalogRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: catalog returned status %d for card %s", models.ErrCardResolution, resp.StatusCode(), apiID)
	}
	if out.Data == nil {
		metrics.CatalogRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: empty payload for card %s", models.ErrCardResolution, apiID)
	}

	metrics.CatalogRequestsTotal.WithLabelValues("success").Inc()
	card := convertCatalogCard(*out.Data)
	p.cache.Add(apiID, card)

	logger.Info().Str("card_api_id", apiID).Str("name", card.Name).Msg("Resolved card from catalog")
	return card, nil
}

// SearchCards is a pass-through search against the catalog, used by the
// browse endpoint. Results are not cached; queries rarely repeat.
func (p *PokemonTCGClient) SearchCards(ctx context.Context, query string, page, pageSize int) (*models.CardSearchResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", models.ErrCardResolution, err)
	}

	req := p.client.R().
		SetContext(ctx).
		SetQueryParam("page", fmt.Sprintf("%d", page)).
		SetQueryParam("pageSize", fmt.Sprintf("%d", pageSize))
	if query != "" {
		req.SetQueryParam("q", query)
	}

	start := time.Now()
	var out cardListResponse
	resp, err := req.SetResult(&out).Get("/cards")
	metrics.CatalogRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: searching catalog: %v", models.ErrCardResolution, err)
	}
	if resp.IsError() {
		metrics.CatalogRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: catalog returned status %d", models.ErrCardResolution, resp.StatusCode())
	}

	metrics.CatalogRequestsTotal.WithLabelValues("success").Inc()

	cards := make([]models.CatalogCard, len(out.Data))
	for i, payload := range out.Data {
		cards[i] = *convertCatalogCard(payload)
	}

	return &models.CardSearchResult{
		Cards:      cards,
		TotalCount: out.TotalCount,
		HasMore:    out.Page*out.PageSize < out.TotalCount,
	}, nil
}

// convertCatalogCard maps the upstream payload into the domain shape.
// Floating-point prices are converted to 2-decimal fixed point here and
// never travel past this boundary.
func convertCatalogCard(payload pokemonCardPayload) *models.CatalogCard {
	card := &models.CatalogCard{
		APIID:      payload.ID,
		Name:       payload.Name,
		Supertype:  payload.Supertype,
		CardNumber: payload.Number,
		Rarity:     payload.Rarity,
	}

	if payload.Set != nil {
		card.SetName = payload.Set.Name
		card.SetSeries = payload.Set.Series
		if payload.Set.ReleaseDate != "" {
			// Upstream uses yyyy/mm/dd
			if released, err := time.Parse("2006/01/02", payload.Set.ReleaseDate); err == nil {
				card.ReleaseDate = &released
			} else {
				logger.Warn().Str("release_date", payload.Set.ReleaseDate).Msg("Failed to parse release date")
			}
		}
	}

	if payload.Images != nil {
		card.ImageURL = payload.Images.Large
		card.SmallImageURL = payload.Images.Small
	}

	if payload.TCGPlayer != nil && payload.TCGPlayer.Prices != nil {
		card.MarketPrice = extractMarketPrice(payload.TCGPlayer.Prices)
	}

	return card
}

// extractMarketPrice picks the best available market figure, preferring
// holofoil, then reverse holofoil, then normal printings.
func extractMarketPrice(prices map[string]struct {
	Market *float64 `json:"market"`
}) *decimal.Decimal {
	for _, variant := range []string{"holofoil", "reverseHolofoil", "normal"} {
		if entry, ok := prices[variant]; ok && entry.Market != nil {
			price := decimal.NewFromFloat(*entry.Market).Round(2)
			return &price
		}
	}
	zero := decimal.Zero
	return &zero
}
