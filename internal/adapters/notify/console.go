package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/adelgado/vsetrack/internal/domain"
	"github.com/adelgado/vsetrack/internal/ports"
)

var _ ports.Notifier = (*Console)(nil)

// Console implementa ports.Notifier: imprime los standings y la
// actividad reciente tras cada ciclo.
type Console struct {
	out       io.Writer
	feedLines int
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(feedLines int) *Console {
	return &Console{out: os.Stdout, feedLines: feedLines}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, feedLines int) *Console {
	return &Console{out: w, feedLines: feedLines}
}

// Notify imprime la tabla de standings y las últimas líneas del feed.
func (c *Console) Notify(_ context.Context, snap domain.CompetitionSnapshot) error {
	fmt.Fprintf(c.out, "[%s] %s — %d competitors, %d feed items\n",
		snap.ScrapedAt.Format("15:04:05"),
		snap.Competition,
		len(snap.Competitors),
		len(snap.ActivityFeed),
	)

	if len(snap.Competitors) > 0 {
		table := tablewriter.NewWriter(c.out)
		table.Header("#", "Player", "Portfolio", "Return %", "Return $", "As Of")

		for _, comp := range snap.Competitors {
			asOf := comp.LastUpdated.Format("01-02 15:04")
			if comp.Stale {
				asOf += " (stale)"
			}
			table.Append(
				fmt.Sprintf("%d", comp.Rank),
				comp.DisplayName,
				money(comp.Value),
				fmt.Sprintf("%+.2f%%", comp.ReturnPercent),
				fmt.Sprintf("%+.2f", comp.ReturnDollars),
				asOf,
			)
		}
		table.Render()
	}

	c.printFeed(snap.ActivityFeed)
	return nil
}

// printFeed imprime las entradas más recientes del feed, una por línea.
func (c *Console) printFeed(feed []domain.ActivityFeedItem) {
	if len(feed) == 0 {
		return
	}
	limit := c.feedLines
	if limit <= 0 || limit > len(feed) {
		limit = len(feed)
	}

	fmt.Fprintln(c.out, "Recent activity:")
	for _, item := range feed[:limit] {
		fmt.Fprintf(c.out, "  %s — %s (#%d) %s %d %s @ %s\n",
			item.Timestamp,
			item.PlayerName,
			item.PlayerRank,
			item.Action,
			item.Amount,
			item.Symbol,
			item.Price,
		)
	}
}

// money formatea un valor como "$1,234,567.89".
func money(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var sb strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(d)
	}

	out := "$" + sb.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}
