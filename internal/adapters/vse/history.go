package vse

import (
	"context"
	"fmt"
	"net/url"

	"github.com/adelgado/vsetrack/internal/domain"
)

// FetchTransactionHistory descarga la página de portfolio del
// participante y extrae sus transacciones. Devuelve además los warnings
// de filas que no se pudieron parsear; un warning nunca descarta el
// resto de la página.
func (c *Client) FetchTransactionHistory(ctx context.Context, publicID string) ([]domain.Transaction, []string, error) {
	u := fmt.Sprintf("%s/games/%s/portfolio?pub=%s",
		c.siteBase,
		c.gameURI,
		url.QueryEscape(publicID),
	)

	markup, err := c.getHTML(ctx, u)
	if err != nil {
		return nil, nil, fmt.Errorf("vse.FetchTransactionHistory: %s: %w", publicID, err)
	}

	txs, warnings, err := ExtractTransactions(markup)
	if err != nil {
		return nil, warnings, fmt.Errorf("vse.FetchTransactionHistory: %s: %w", publicID, err)
	}

	for i := range txs {
		txs[i].PublicID = publicID
	}
	return txs, warnings, nil
}

// FetchDisplayName extrae el nombre del jugador de su página de
// portfolio. Usado cuando la configuración omite el display name.
func (c *Client) FetchDisplayName(ctx context.Context, publicID string) (string, error) {
	u := fmt.Sprintf("%s/games/%s/portfolio?pub=%s",
		c.siteBase,
		c.gameURI,
		url.QueryEscape(publicID),
	)

	markup, err := c.getHTML(ctx, u)
	if err != nil {
		return "", fmt.Errorf("vse.FetchDisplayName: %s: %w", publicID, err)
	}
	return ExtractDisplayName(markup), nil
}
