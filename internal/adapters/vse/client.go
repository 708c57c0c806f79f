package vse

// client.go — HTTP client del upstream con rate limiting y un retry.
//
// El upstream tiene defensas anti-automatización (datadome): un delay
// mínimo entre requests y headers de navegador real reducen el riesgo
// de ban. La credencial es una cookie de sesión opaca inyectada por el
// caller; este client no gestiona su ciclo de vida.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/adelgado/vsetrack/internal/domain"
)

const (
	defaultAPIBase  = "https://vse-api.marketwatch.com/v1"
	defaultSiteBase = "https://www.marketwatch.com"

	defaultRequestDelay = 500 * time.Millisecond
	requestTimeout      = 15 * time.Second

	// Un solo retry con backoff: reintentar indefinidamente contra un
	// upstream hostil es la forma más rápida de ganarse un ban.
	maxRetries    = 1
	baseRetryWait = 2 * time.Second

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36"
)

// Config es la configuración del client.
type Config struct {
	APIBase      string
	SiteBase     string
	GameURI      string
	AuthCookie   string
	RequestDelay time.Duration
}

// Client habla con el API de estadísticas y las páginas HTML del juego.
// Implementa ports.PerformanceProvider y ports.HistoryProvider.
type Client struct {
	http     *http.Client
	apiBase  string
	siteBase string
	gameURI  string
	cookie   string
	limiter  *rate.Limiter
}

// NewClient crea un Client para la competición dada. Los base URLs
// vacíos usan producción.
func NewClient(cfg Config) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	if cfg.SiteBase == "" {
		cfg.SiteBase = defaultSiteBase
	}
	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = defaultRequestDelay
	}
	return &Client{
		http:     &http.Client{Timeout: requestTimeout},
		apiBase:  cfg.APIBase,
		siteBase: cfg.SiteBase,
		gameURI:  cfg.GameURI,
		cookie:   cfg.AuthCookie,
		limiter:  rate.NewLimiter(rate.Every(cfg.RequestDelay), 1),
	}
}

// getJSON hace un GET al API y decodifica la respuesta JSON en out.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	body, err := c.doWithRetry(ctx, url, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("vse.getJSON: decode %s: %v: %w", url, err, domain.ErrSourceParse)
	}
	return nil
}

// getHTML hace un GET autenticado a una página del sitio y devuelve el markup.
func (c *Client) getHTML(ctx context.Context, url string) ([]byte, error) {
	return c.doWithRetry(ctx, url, "text/html,application/xhtml+xml")
}

// doWithRetry ejecuta el GET respetando el delay mínimo entre requests,
// con un retry con backoff para fallos transitorios (red, 429, 5xx).
// Mapea los status a la taxonomía de errores del dominio.
func (c *Client) doWithRetry(ctx context.Context, url, accept string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("vse.doWithRetry: rate limiter: %w", err)
		}

		body, retryable, err := c.do(ctx, url, accept)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable || attempt == maxRetries {
			break
		}

		slog.Warn("transient upstream failure, retrying",
			"url", url,
			"attempt", attempt+1,
			"err", err,
		)
		select {
		case <-time.After(baseRetryWait << attempt):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// do ejecuta un GET y clasifica el resultado. retryable indica si el
// fallo es transitorio.
func (c *Client) do(ctx context.Context, url, accept string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("vse.do: build request: %w", err)
	}

	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", fmt.Sprintf("%s/games/%s", c.siteBase, c.gameURI))
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("vse.do: %s: %v: %w", url, err, domain.ErrSourceUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, false, fmt.Errorf("vse.do: %s: status %d: %w", url, resp.StatusCode, domain.ErrAuthExpired)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("vse.do: %s: status %d: %w", url, resp.StatusCode, domain.ErrSourceUnavailable)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("vse.do: %s: status %d: %w", url, resp.StatusCode, domain.ErrSourceUnavailable)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("vse.do: read body: %v: %w", err, domain.ErrSourceUnavailable)
	}
	return body, false, nil
}
