package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/adelgado/vsetrack/internal/domain"
	"github.com/adelgado/vsetrack/internal/ports"
)

// Config contiene la configuración del pipeline.
type Config struct {
	Competition  string
	Interval     time.Duration
	RunBudget    time.Duration // deadline de todo el ciclo; 0 = sin límite
	FetchWorkers int
	FeedMax      int
	Location     *time.Location // zona horaria del mercado
	Force        bool           // ignorar la ventana de mercado
}

// Status es el estado terminal de un ciclo.
type Status string

const (
	// StatusOK: snapshot publicado completo.
	StatusOK Status = "ok"
	// StatusSkipped: mercado cerrado, no se tocó la red.
	StatusSkipped Status = "skipped"
	// StatusDegraded: snapshot producido pero con fallos parciales
	// (participantes stale o publish remoto fallido). El backup local
	// siempre quedó escrito.
	StatusDegraded Status = "degraded"
)

// Report resume el resultado de un ciclo para quien lo invocó. El ciclo
// nunca falla en silencio: o hay Report o hay error fatal.
type Report struct {
	RunID         string
	Status        Status
	Competitors   int
	StaleCount    int
	NewActivity   int
	PublishFailed bool
	Duration      time.Duration
}

// Pipeline orquesta un ciclo completo:
// CHECK_WINDOW → FETCH_ALL → RANK → BUILD_FEED → PUBLISH → DONE.
type Pipeline struct {
	cfg          Config
	participants []domain.Participant
	perf         ports.PerformanceProvider
	hist         ports.HistoryProvider
	log          ports.TransactionLog
	publisher    ports.Publisher
	backup       ports.Backup
	notifier     ports.Notifier
	now          func() time.Time
}

// New crea un Pipeline con todas las dependencias inyectadas. La lista
// de participantes viene de configuración: el pipeline no la muta.
func New(
	cfg Config,
	participants []domain.Participant,
	perf ports.PerformanceProvider,
	hist ports.HistoryProvider,
	log ports.TransactionLog,
	publisher ports.Publisher,
	backup ports.Backup,
	notifier ports.Notifier,
) *Pipeline {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Pipeline{
		cfg:          cfg,
		participants: participants,
		perf:         perf,
		hist:         hist,
		log:          log,
		publisher:    publisher,
		backup:       backup,
		notifier:     notifier,
		now:          time.Now,
	}
}

// Run ejecuta ciclos periódicos hasta que el contexto se cancele. El
// loop es síncrono: nunca hay dos ciclos solapados. Un ciclo fatal por
// credencial expirada no tumba el proceso — el operador puede refrescar
// la cookie sin reiniciar.
func (p *Pipeline) Run(ctx context.Context) error {
	slog.Info("pipeline starting",
		"competition", p.cfg.Competition,
		"interval", p.cfg.Interval,
		"participants", len(p.participants),
	)

	if err := p.runAndLog(ctx); err != nil {
		if !errors.Is(err, domain.ErrAuthExpired) {
			return err
		}
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("pipeline stopped")
			return nil
		case <-ticker.C:
			if err := p.runAndLog(ctx); err != nil && !errors.Is(err, domain.ErrAuthExpired) {
				return err
			}
		}
	}
}

// runAndLog ejecuta un ciclo y registra el resultado.
func (p *Pipeline) runAndLog(ctx context.Context) error {
	report, err := p.RunOnce(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrAuthExpired) {
			slog.Error("session cookie rejected by upstream — refresh credentials", "err", err)
		} else {
			slog.Error("cycle failed", "err", err)
		}
		return err
	}

	slog.Info("cycle complete",
		"run_id", report.RunID,
		"status", report.Status,
		"competitors", report.Competitors,
		"stale", report.StaleCount,
		"new_activity", report.NewActivity,
		"duration", report.Duration.Round(time.Millisecond),
	)
	return nil
}

// RunOnce ejecuta exactamente un ciclo. Devuelve error solo en los
// casos fatales: configuración inválida, credencial expirada o fallo
// del backup local. Todo lo demás degrada.
func (p *Pipeline) RunOnce(ctx context.Context) (Report, error) {
	start := p.now()
	runID := uuid.NewString()

	// CHECK_WINDOW
	if len(p.participants) == 0 {
		return Report{}, fmt.Errorf("pipeline.RunOnce: empty participant list: %w", domain.ErrConfig)
	}
	if !p.cfg.Force && !IsMarketOpen(start, p.cfg.Location) {
		slog.Info("market closed, skipping cycle", "run_id", runID)
		return Report{RunID: runID, Status: StatusSkipped}, nil
	}

	if p.cfg.RunBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.RunBudget)
		defer cancel()
	}

	slog.Info("cycle starting", "run_id", runID, "participants", len(p.participants))

	// FETCH_ALL
	results, err := p.fetchAll(ctx, p.participants)
	if err != nil {
		return Report{}, fmt.Errorf("pipeline.RunOnce: %w", err)
	}

	// RANK
	competitors := make([]domain.RankedCompetitor, 0, len(results))
	allTxs := make([]domain.Transaction, 0)
	stale := 0
	for _, res := range results {
		competitors = append(competitors, domain.NewCompetitor(res.participant, res.portfolio, res.transactions))
		allTxs = append(allTxs, res.transactions...)
		if res.portfolio.Stale {
			stale++
		}
	}
	competitors = domain.Rank(competitors)

	// BUILD_FEED — el log decide qué transacciones son nuevas; el feed
	// publicado sale del histórico conocido, no del delta, así un ciclo
	// sin actividad nueva republica el mismo feed en vez de vaciarlo.
	newTxs, err := p.log.RecordTransactions(ctx, allTxs)
	if err != nil {
		slog.Warn("transaction log write failed, new activity unknown this cycle", "err", err)
		newTxs = nil
	}
	newActivity := 0
	for _, tx := range newTxs {
		if tx.Status != domain.StatusCanceled {
			newActivity++
		}
	}

	feedMax := p.cfg.FeedMax
	if feedMax <= 0 {
		feedMax = defaultFeedMax
	}
	// Lectura local sobre contexto desacoplado del budget, con margen
	// para filas cuyo dueño ya no esté en la configuración.
	known, err := p.log.RecentTransactions(context.WithoutCancel(ctx), feedMax*2)
	if err != nil {
		slog.Warn("transaction log read failed, feed limited to this cycle", "err", err)
		known = newTxs
	}
	feed := buildFeed(known, competitors, feedMax)

	snapshot := domain.CompetitionSnapshot{
		Competition:  p.cfg.Competition,
		ScrapedAt:    start.UTC(),
		Competitors:  competitors,
		ActivityFeed: feed,
	}

	// PUBLISH — el backup local se escribe haya ido bien o mal el remoto
	publishFailed := false
	if err := p.publisher.Publish(ctx, snapshot); err != nil {
		publishFailed = true
		slog.Warn("remote publish failed, snapshot preserved in local backup", "err", err)
	}
	if err := p.backup.Write(ctx, snapshot); err != nil {
		return Report{}, fmt.Errorf("pipeline.RunOnce: local backup: %w", err)
	}

	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, snapshot); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	status := StatusOK
	if publishFailed || stale > 0 {
		status = StatusDegraded
	}

	return Report{
		RunID:         runID,
		Status:        status,
		Competitors:   len(competitors),
		StaleCount:    stale,
		NewActivity:   newActivity,
		PublishFailed: publishFailed,
		Duration:      p.now().Sub(start),
	}, nil
}
