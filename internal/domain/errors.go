package domain

import "errors"

// Taxonomía de fallos del pipeline. Los adapters envuelven sus errores
// concretos sobre estos sentinels; los callers clasifican con errors.Is.
var (
	// ErrSourceUnavailable: fallo de red o HTTP del upstream. Recuperable:
	// se arrastra el último snapshot conocido del participante.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrAuthExpired: el upstream rechazó la credencial. Fatal para el
	// ciclo — el operador debe refrescar la cookie — pero no tumba el proceso.
	ErrAuthExpired = errors.New("source auth expired")

	// ErrSourceParse: respuesta malformada para un participante. Recuperable.
	ErrSourceParse = errors.New("source parse error")

	// ErrPublish: el store remoto no aceptó el snapshot. El backup local
	// se intenta igual; el ciclo se reporta degradado, no fallido.
	ErrPublish = errors.New("publish failed")

	// ErrConfig: configuración inválida (lista de participantes vacía,
	// credencial ausente). Fatal antes de tocar la red.
	ErrConfig = errors.New("invalid configuration")
)
