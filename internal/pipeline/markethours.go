package pipeline

import "time"

// Ventana de mercado: lunes a viernes, 9:30–16:00 hora de la bolsa.
// Sin calendario de festivos: un ciclo en festivo solo re-publica los
// mismos datos.
const (
	marketOpenHour    = 9
	marketOpenMinute  = 30
	marketCloseHour   = 16
	marketCloseMinute = 0
)

// IsMarketOpen decide si el mercado está abierto en el instante dado.
// Función pura: el orchestrator la consulta una vez por ciclo.
func IsMarketOpen(now time.Time, loc *time.Location) bool {
	local := now.In(loc)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	minutes := local.Hour()*60 + local.Minute()
	opensAt := marketOpenHour*60 + marketOpenMinute
	closesAt := marketCloseHour*60 + marketCloseMinute
	return minutes >= opensAt && minutes < closesAt
}
