package vse

// DTOs raw del API de estadísticas. Solo se usan dentro de este paquete;
// la conversión a domain entities se hace en performance.go.

// performanceResponse es la respuesta de GET /statistics/portfolioPerformance.
type performanceResponse struct {
	Data performanceData `json:"data"`
}

type performanceData struct {
	Values []performancePoint `json:"values"`
}

// performancePoint es un punto de la serie temporal de performance.
// El upstream usa nombres de un carácter: w=worth, p=percent, g=gain,
// t=timestamp en epoch millis.
type performancePoint struct {
	Worth     float64 `json:"w"`
	Percent   float64 `json:"p"`
	Gain      float64 `json:"g"`
	Timestamp int64   `json:"t"`
}
