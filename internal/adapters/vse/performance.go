package vse

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"github.com/adelgado/vsetrack/internal/domain"
)

const performancePath = "/statistics/portfolioPerformance"

// FetchPortfolio obtiene la serie de performance del participante y
// devuelve el punto más reciente por su propio timestamp. El upstream no
// garantiza la serie ordenada, así que el último elemento del array no
// es necesariamente el último cronológico.
//
// Una serie vacía no es un error: devuelve un snapshot en cero marcado
// Stale para que el pipeline emita igualmente una entrada por participante.
func (c *Client) FetchPortfolio(ctx context.Context, publicID string) (domain.PortfolioSnapshot, error) {
	u := fmt.Sprintf("%s%s?gameUri=%s&publicId=%s",
		c.apiBase,
		performancePath,
		url.QueryEscape(c.gameURI),
		url.QueryEscape(publicID),
	)

	var resp performanceResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return domain.PortfolioSnapshot{}, fmt.Errorf("vse.FetchPortfolio: %s: %w", publicID, err)
	}

	points := resp.Data.Values
	if len(points) == 0 {
		slog.Warn("empty performance series", "public_id", publicID)
		return domain.PortfolioSnapshot{PublicID: publicID, Stale: true}, nil
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp < points[j].Timestamp
	})
	latest := points[len(points)-1]

	return domain.PortfolioSnapshot{
		PublicID:      publicID,
		Value:         latest.Worth,
		ReturnPercent: latest.Percent,
		ReturnDollars: latest.Gain,
		ObservedAt:    time.UnixMilli(latest.Timestamp).UTC(),
	}, nil
}
