package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Action es el tipo de orden ejecutada en la competición.
type Action string

const (
	ActionBuy   Action = "Buy"
	ActionSell  Action = "Sell"
	ActionShort Action = "Short"
	ActionCover Action = "Cover"
)

// Status indica si la orden llegó a ejecutarse.
type Status string

const (
	StatusCompleted Status = "Completed"
	StatusCanceled  Status = "Canceled"
)

// Transaction es una orden observada en el historial de un participante.
// Son hechos append-only: una vez observada nunca se muta, solo se
// descubren nuevas en ciclos posteriores.
type Transaction struct {
	PublicID        string `json:"public_id"`
	Symbol          string `json:"symbol"`
	OrderDate       string `json:"order_date"`
	TransactionDate string `json:"transaction_date"`
	Action          Action `json:"action"`
	Amount          int    `json:"amount"`
	// Price se conserva como string tal cual viene del upstream
	// ("$200.00", "N/A" para canceladas). Normalizar solo al consumir.
	Price  string `json:"price"`
	Status Status `json:"status"`
}

// Key es la clave de identidad usada para deduplicar entre ciclos.
func (t Transaction) Key() string {
	return strings.Join([]string{
		t.PublicID,
		t.Symbol,
		t.TransactionDate,
		string(t.Action),
		strconv.Itoa(t.Amount),
		t.Price,
	}, "|")
}

// PriceValue normaliza el string de precio a un valor numérico.
// Devuelve error para precios no numéricos como "N/A".
func (t Transaction) PriceValue() (float64, error) {
	s := strings.TrimSpace(t.Price)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("domain.PriceValue: non-numeric price %q", t.Price)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("domain.PriceValue: parse %q: %w", t.Price, err)
	}
	return v, nil
}

// easternTime es la zona horaria de los timestamps del upstream.
// Si la base de datos de zonas no está disponible usa UTC-5 fijo.
var easternTime = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("ET", -5*3600)
	}
	return loc
}

// ParseMarketTime interpreta timestamps del upstream como
// "7/9/25 10:45a ET". Devuelve el zero time con error si el formato
// no es reconocible; el caller decide cómo ordenar esos casos.
func ParseMarketTime(s string) (time.Time, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "ET"))
	if s == "" {
		return time.Time{}, fmt.Errorf("domain.ParseMarketTime: empty timestamp")
	}

	datePart, timePart, hasTime := strings.Cut(s, " ")

	month, day, year, err := splitDate(datePart)
	if err != nil {
		return time.Time{}, fmt.Errorf("domain.ParseMarketTime: %w", err)
	}

	hour, minute := 0, 0
	if hasTime {
		hour, minute, err = splitClock(timePart)
		if err != nil {
			return time.Time{}, fmt.Errorf("domain.ParseMarketTime: %w", err)
		}
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, easternTime), nil
}

// splitDate parsea "7/9/25" → (7, 9, 2025).
func splitDate(s string) (month, day, year int, err error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("bad date %q", s)
	}
	month, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bad month in %q", s)
	}
	day, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bad day in %q", s)
	}
	year, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bad year in %q", s)
	}
	if year < 100 {
		year += 2000
	}
	return month, day, year, nil
}

// splitClock parsea "10:45a" o "3:05p" → hora en formato 24h.
func splitClock(s string) (hour, minute int, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	pm := strings.HasSuffix(s, "p")
	s = strings.TrimSuffix(strings.TrimSuffix(s, "p"), "a")

	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("bad clock %q", s)
	}
	hour, err = strconv.Atoi(hh)
	if err != nil {
		return 0, 0, fmt.Errorf("bad hour %q", hh)
	}
	minute, err = strconv.Atoi(mm)
	if err != nil {
		return 0, 0, fmt.Errorf("bad minute %q", mm)
	}
	if pm && hour != 12 {
		hour += 12
	}
	if !pm && hour == 12 {
		hour = 0
	}
	return hour, minute, nil
}
