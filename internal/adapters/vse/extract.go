package vse

// extract.go — parseo del markup de transacciones.
//
// La estructura del HTML la controla el upstream y puede cambiar sin
// aviso: todo el parseo vive detrás de ExtractTransactions (markup →
// records + warnings) para que adaptarse a un cambio de markup nunca
// toque ranking ni publicación.

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/adelgado/vsetrack/internal/domain"
)

// transactionColumns es el mínimo de celdas de una fila de transacción:
// Symbol, Order Date, Transaction Date, Type, Shares, Price.
const transactionColumns = 6

// ExtractTransactions parsea el markup de la página de portfolio y
// devuelve las transacciones encontradas más los warnings de filas
// ilegibles. Una fila rota nunca aborta el parseo de las demás.
//
// Las transacciones duplicadas dentro de la misma página (la tabla puede
// aparecer en más de un módulo) se eliminan por clave de identidad.
func ExtractTransactions(markup []byte) ([]domain.Transaction, []string, error) {
	doc, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, nil, fmt.Errorf("vse.ExtractTransactions: parse markup: %v: %w", err, domain.ErrSourceParse)
	}

	var txs []domain.Transaction
	var warnings []string

	for _, table := range findTables(doc) {
		if !isTransactionTable(table) {
			continue
		}
		rows := findRows(table)
		for i, row := range rows {
			if i == 0 {
				continue // header
			}
			tx, warn, ok := parseTransactionRow(row)
			if warn != "" {
				warnings = append(warnings, warn)
			}
			if ok {
				txs = append(txs, tx)
			}
		}
	}

	return dedupeByKey(txs), warnings, nil
}

// ExtractDisplayName busca el nombre del jugador en la página de
// portfolio. Devuelve "Unknown Player" si no aparece en ninguna de las
// ubicaciones conocidas.
func ExtractDisplayName(markup []byte) string {
	doc, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return "Unknown Player"
	}

	if n := findByClass(doc, atom.H1, "player-name"); n != nil {
		if name := nodeText(n); name != "" {
			return name
		}
	}
	if n := findByClass(doc, atom.Div, "profile-name"); n != nil {
		if name := nodeText(n); name != "" {
			return name
		}
	}
	return "Unknown Player"
}

// isTransactionTable decide por los headers si la tabla contiene
// transacciones: necesita una columna Symbol y alguna de Order.
func isTransactionTable(table *html.Node) bool {
	rows := findRows(table)
	if len(rows) == 0 {
		return false
	}
	var hasSymbol, hasOrder bool
	for _, cell := range findCells(rows[0]) {
		text := nodeText(cell)
		if strings.Contains(text, "Symbol") {
			hasSymbol = true
		}
		if strings.Contains(text, "Order") {
			hasOrder = true
		}
	}
	return hasSymbol && hasOrder
}

// parseTransactionRow convierte una fila en una Transaction. Filas con
// menos celdas de las esperadas se ignoran en silencio (separadores,
// sub-headers); los fallos dentro de una fila plausible generan warning
// pero conservan el record con defaults.
func parseTransactionRow(row *html.Node) (tx domain.Transaction, warning string, ok bool) {
	cells := findCells(row)
	if len(cells) < transactionColumns {
		return domain.Transaction{}, "", false
	}

	texts := make([]string, len(cells))
	for i, cell := range cells {
		texts[i] = nodeText(cell)
	}

	action, status := parseActionCell(texts[3])

	amountText := strings.ReplaceAll(texts[4], ",", "")
	amount, err := strconv.Atoi(amountText)
	if err != nil {
		warning = fmt.Sprintf("row %q: unparsable amount %q", texts[0], texts[4])
		amount = 0
	}

	tx = domain.Transaction{
		Symbol:          texts[0],
		OrderDate:       texts[1],
		TransactionDate: texts[2],
		Action:          action,
		Amount:          amount,
		Price:           texts[5],
		Status:          status,
	}
	if tx.Symbol == "" {
		return domain.Transaction{}, fmt.Sprintf("row without symbol: %v", texts), false
	}
	return tx, warning, true
}

// parseActionCell separa acción y estado: las órdenes canceladas vienen
// como "Buy Canceled" en una sola celda.
func parseActionCell(text string) (domain.Action, domain.Status) {
	status := domain.StatusCompleted
	if strings.Contains(text, "Canceled") {
		status = domain.StatusCanceled
		if fields := strings.Fields(text); len(fields) > 0 {
			text = fields[0]
		}
	}
	return domain.Action(strings.TrimSpace(text)), status
}

// dedupeByKey elimina duplicados conservando el orden de aparición.
func dedupeByKey(txs []domain.Transaction) []domain.Transaction {
	seen := make(map[string]bool, len(txs))
	out := txs[:0]
	for _, tx := range txs {
		if seen[tx.Key()] {
			continue
		}
		seen[tx.Key()] = true
		out = append(out, tx)
	}
	return out
}

// --- helpers de DOM ---

// findTables devuelve todos los nodos <table> del documento.
func findTables(doc *html.Node) []*html.Node {
	var tables []*html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Table {
			tables = append(tables, n)
			return false // no buscar tablas anidadas
		}
		return true
	})
	return tables
}

// findRows devuelve los <tr> de una tabla.
func findRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	walk(table, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			rows = append(rows, n)
			return false
		}
		return true
	})
	return rows
}

// findCells devuelve los <td>/<th> de una fila.
func findCells(row *html.Node) []*html.Node {
	var cells []*html.Node
	walk(row, func(n *html.Node) bool {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Td || n.DataAtom == atom.Th) {
			cells = append(cells, n)
			return false
		}
		return true
	})
	return cells
}

// findByClass busca el primer elemento del tag dado cuya clase contenga
// class.
func findByClass(doc *html.Node, tag atom.Atom, class string) *html.Node {
	var found *html.Node
	walk(doc, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && n.DataAtom == tag && hasClass(n, class) {
			found = n
			return false
		}
		return true
	})
	return found
}

// hasClass comprueba si el atributo class del nodo contiene class.
func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// nodeText concatena el texto descendiente del nodo, colapsando espacios.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}

// walk recorre el árbol en profundidad; fn devuelve false para no
// descender en los hijos del nodo.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}
