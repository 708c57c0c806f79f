package pipeline

// fetch.go — worker pool acotado para el fetch por participante.
//
// Concurrencia pequeña y fija: acelera el wall-clock del ciclo sin
// saltarse el delay mínimo del Source Client (el limiter es compartido).
// Concurrencia sin límite contra este upstream es pedir un ban.

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/adelgado/vsetrack/internal/domain"
)

const defaultFetchWorkers = 3

// fetchResult es el resultado del fetch de un participante. Siempre hay
// un resultado por participante configurado, falle lo que falle.
type fetchResult struct {
	participant  domain.Participant
	portfolio    domain.PortfolioSnapshot
	transactions []domain.Transaction
	warnings     []string
}

// fetchAll recupera portfolio e historial de todos los participantes con
// aislamiento por participante: un fallo individual degrada a los datos
// del último ciclo bueno (carry-forward), nunca tumba el ciclo. La única
// excepción es la credencial expirada, que es fatal para el ciclo entero.
//
// El orden de los resultados es el orden de la configuración, para que
// el resto del pipeline sea determinista.
func (p *Pipeline) fetchAll(ctx context.Context, participants []domain.Participant) ([]fetchResult, error) {
	workers := p.cfg.FetchWorkers
	if workers <= 0 {
		workers = defaultFetchWorkers
	}
	if workers > len(participants) {
		workers = len(participants)
	}

	jobs := make(chan int, len(participants))
	results := make([]fetchResult, len(participants))

	var authErr error
	var authMu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := p.fetchOne(ctx, participants[i])
				results[i] = res
				if errors.Is(err, domain.ErrAuthExpired) {
					authMu.Lock()
					authErr = err
					authMu.Unlock()
				}
			}
		}()
	}

	for i := range participants {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if authErr != nil {
		return nil, authErr
	}
	return results, nil
}

// fetchOne recupera los datos de un participante. Los fallos
// recuperables se convierten en datos stale; el error devuelto solo se
// usa para propagar la expiración de credenciales.
func (p *Pipeline) fetchOne(ctx context.Context, participant domain.Participant) (fetchResult, error) {
	res := fetchResult{participant: participant}

	snap, err := p.perf.FetchPortfolio(ctx, participant.PublicID)
	if err != nil {
		if errors.Is(err, domain.ErrAuthExpired) {
			return res, err
		}
		slog.Warn("portfolio fetch failed, carrying forward previous snapshot",
			"public_id", participant.PublicID,
			"player", participant.DisplayName,
			"err", err,
		)
		res.portfolio = p.carryForward(ctx, participant.PublicID)
		return res, nil
	}
	res.portfolio = snap

	if !snap.Stale {
		if err := p.log.SavePortfolio(ctx, snap); err != nil {
			slog.Warn("save portfolio failed", "public_id", participant.PublicID, "err", err)
		}
	}

	txs, warnings, err := p.hist.FetchTransactionHistory(ctx, participant.PublicID)
	if err != nil {
		if errors.Is(err, domain.ErrAuthExpired) {
			return res, err
		}
		// El portfolio ya está: un historial ilegible solo significa
		// cero transacciones nuevas este ciclo.
		slog.Warn("transaction history fetch failed",
			"public_id", participant.PublicID,
			"err", err,
		)
		return res, nil
	}

	res.transactions = txs
	res.warnings = warnings
	for _, w := range warnings {
		slog.Debug("transaction parse warning", "public_id", participant.PublicID, "warning", w)
	}
	return res, nil
}

// carryForward devuelve el último snapshot bueno del participante
// marcado stale, o un snapshot en cero si nunca hubo uno. La lectura
// local va sobre un contexto desacoplado del budget del ciclo: si el
// deadline expiró a mitad del fetch, el fallback sigue disponible.
func (p *Pipeline) carryForward(ctx context.Context, publicID string) domain.PortfolioSnapshot {
	snap, ok, err := p.log.LastPortfolio(context.WithoutCancel(ctx), publicID)
	if err != nil {
		slog.Warn("previous snapshot lookup failed", "public_id", publicID, "err", err)
	}
	if !ok {
		snap = domain.PortfolioSnapshot{PublicID: publicID}
	}
	snap.Stale = true
	return snap
}
