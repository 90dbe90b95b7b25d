// Package app связывает ядро генерации с окружением: источником позиции,
// шиной событий, метриками и трейсингом.
package app

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/endless-structure/internal/logging"
	"github.com/annel0/endless-structure/internal/structure"
	"github.com/annel0/endless-structure/internal/vec"
)

const tracerName = "github.com/annel0/endless-structure/internal/app"

// ClimbObserver получает состояние лазания после каждого тика
type ClimbObserver interface {
	SetClimbing(inside bool)
}

// RunnerOption настраивает Runner
type RunnerOption func(*Runner)

// WithNotifier публикует climb.enter/climb.exit через n
func WithNotifier(n *Notifier) RunnerOption {
	return func(r *Runner) { r.notifier = n }
}

// WithClimbObserver передаёт состояние лазания, например Prometheus-экспортеру
func WithClimbObserver(o ClimbObserver) RunnerOption {
	return func(r *Runner) { r.observer = o }
}

// WithRunnerLogger задаёт логгер раннера
func WithRunnerLogger(l *logging.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithTickRate задаёт период Run
func WithTickRate(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.tickRate = d
		}
	}
}

// Runner владеет структурой и вызывает её из одной горутины.
// Другие горутины читают только опубликованные снимки через Latest и Agent.
type Runner struct {
	st       *structure.Structure
	pos      PositionSource
	notifier *Notifier
	observer ClimbObserver
	log      *logging.Logger
	tracer   trace.Tracer
	tickRate time.Duration

	climb structure.ClimbTracker
	ticks uint64

	mu       sync.RWMutex
	latest   *structure.Snapshot
	agent    vec.Vec3Float
	climbing bool
}

// NewRunner создаёт раннер над незапущенной структурой
func NewRunner(st *structure.Structure, pos PositionSource, opts ...RunnerOption) *Runner {
	r := &Runner{
		st:       st,
		pos:      pos,
		log:      logging.Default(),
		tracer:   otel.Tracer(tracerName),
		tickRate: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tick читает позицию агента один раз, запускает или сдвигает структуру
// и публикует новый снимок.
func (r *Runner) Tick(ctx context.Context) (structure.StepResult, error) {
	_, span := r.tracer.Start(ctx, "structure.tick")
	defer span.End()

	var res structure.StepResult
	agent := r.pos.Position()
	if !r.st.Started() {
		if err := r.st.Start(agent); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return res, err
		}
	} else {
		var err error
		if res, err = r.st.Step(agent); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return res, err
		}
	}
	r.ticks++

	climbable := r.st.IsClimbable(agent)
	if tr := r.climb.Update(climbable); tr != structure.ClimbNone {
		r.log.Debugf("[Runner] тик %d: %s (%.2f, %.2f, %.2f)", r.ticks, tr, agent.X, agent.Y, agent.Z)
		if r.notifier != nil {
			r.notifier.Climb(tr, agent, r.ticks)
		}
	}
	if r.observer != nil {
		r.observer.SetClimbing(climbable)
	}

	snap := r.st.Snapshot()
	r.mu.Lock()
	r.latest = snap
	r.agent = agent
	r.climbing = climbable
	r.mu.Unlock()

	span.SetAttributes(
		attribute.Int64("structure.tick", int64(r.ticks)),
		attribute.Bool("structure.shifted", res.Shifted),
		attribute.Bool("structure.lagging", res.Lagging),
		attribute.Bool("structure.climbing", climbable),
	)
	return res, nil
}

// Run тикает с периодом tickRate до отмены ctx
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.tickRate)
	defer ticker.Stop()

	r.log.Infof("▶️ Runner запущен, период тика %s", r.tickRate)
	for {
		select {
		case <-ctx.Done():
			r.log.Infof("⏹ Runner остановлен после %d тиков", r.ticks)
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.Tick(ctx); err != nil {
				return err
			}
		}
	}
}

// Latest возвращает последний опубликованный снимок; nil до первого тика
func (r *Runner) Latest() *structure.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Agent возвращает позицию агента на последнем тике и признак лазания
func (r *Runner) Agent() (vec.Vec3Float, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.agent, r.climbing
}

// Ticks возвращает число выполненных тиков. Вызывать из горутины раннера.
func (r *Runner) Ticks() uint64 { return r.ticks }
