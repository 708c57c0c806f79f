package vse

// leaderboard.go — descubrimiento de participantes desde la página de
// rankings. No forma parte del ciclo periódico: se usa una vez para
// bootstrapear la lista de participantes de la configuración.

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/adelgado/vsetrack/internal/domain"
)

var pubIDPattern = regexp.MustCompile(`/portfolio\?(?:[^#]*&)?pub=([^&]+)`)

// FetchLeaderboard descarga la página de rankings y devuelve los pares
// (public_id, nombre) de todos los competidores enlazados.
func (c *Client) FetchLeaderboard(ctx context.Context) ([]domain.Participant, error) {
	u := fmt.Sprintf("%s/games/%s/rankings", c.siteBase, c.gameURI)

	markup, err := c.getHTML(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("vse.FetchLeaderboard: %w", err)
	}

	participants, err := extractLeaderboard(markup)
	if err != nil {
		return nil, fmt.Errorf("vse.FetchLeaderboard: %w", err)
	}
	return participants, nil
}

// extractLeaderboard busca anchors hacia /portfolio?pub=<id>: cada uno
// identifica a un competidor y su texto es el nombre visible.
func extractLeaderboard(markup []byte) ([]domain.Participant, error) {
	doc, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %v: %w", err, domain.ErrSourceParse)
	}

	var participants []domain.Participant
	seen := make(map[string]bool)

	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != atom.A {
			return true
		}
		href := attrVal(n, "href")
		m := pubIDPattern.FindStringSubmatch(href)
		if m == nil || seen[m[1]] {
			return true
		}
		seen[m[1]] = true
		participants = append(participants, domain.Participant{
			PublicID:    m[1],
			DisplayName: nodeText(n),
		})
		return false
	})

	return participants, nil
}

// attrVal devuelve el valor del atributo key, o "" si no existe.
func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
