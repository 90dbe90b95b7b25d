package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/annel0/endless-structure/internal/app"
	"github.com/annel0/endless-structure/internal/config"
	"github.com/annel0/endless-structure/internal/eventbus"
	"github.com/annel0/endless-structure/internal/logging"
	"github.com/annel0/endless-structure/internal/structure"
)

// walk-cli прогоняет агента через структуру без сервера и печатает итог.
func main() {
	var (
		configPath = flag.String("config", "", "YAML config path")
		ticks      = flag.Int("ticks", 200, "Number of ticks to simulate")
		dir        = flag.String("dir", "", "Walk straight along x|y|z|-x|-y|-z instead of the configured route")
		speed      = flag.Float64("speed", 0, "World units per tick (0 = from config)")
		seed       = flag.Int64("seed", 0, "Random seed (0 = from config)")
		showMap    = flag.Bool("map", false, "Print ASCII top-down slice at the agent's layer")
		verbose    = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if *seed != 0 {
		cfg.Structure.Seed = *seed
	}
	if *speed > 0 {
		cfg.Agent.Speed = *speed
	}

	level := logging.WARN
	if *verbose {
		level = logging.DEBUG
	}
	logger := logging.NewConsoleLogger(os.Stderr, level)

	pos, err := positionSource(cfg, *dir)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx := context.Background()
	bus := eventbus.NewMemoryBus(4096)
	counts := make(map[string]int)
	if _, err := bus.Subscribe(ctx, eventbus.Filter{}, func(_ context.Context, ev *eventbus.Envelope) {
		counts[ev.EventType]++
	}); err != nil {
		log.Fatalf("❌ %v", err)
	}
	notifier := app.NewNotifier(ctx, bus, "walk-cli", logger)

	st, err := structure.New(cfg.StructureConfig(),
		structure.WithRandom(structure.NewRandom(cfg.Structure.Seed)),
		structure.WithHooks(notifier),
		structure.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	runner := app.NewRunner(st, pos, app.WithNotifier(notifier), app.WithRunnerLogger(logger))

	var lagging int
	for i := 0; i < *ticks; i++ {
		res, err := runner.Tick(ctx)
		if err != nil {
			log.Fatalf("❌ tick %d: %v", i, err)
		}
		if res.Lagging {
			lagging++
		}
	}
	_ = bus.Close()

	agent, climbing := runner.Agent()
	fmt.Printf("🚶 %d ticks, agent at (%.2f, %.2f, %.2f), climbing=%v, lagging ticks=%d\n",
		*ticks, agent.X, agent.Y, agent.Z, climbing, lagging)

	out, _ := json.MarshalIndent(st.Stats().Snapshot(), "", "  ")
	fmt.Printf("📊 Stats:\n%s\n", out)

	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	fmt.Println("📨 Events:")
	for _, t := range types {
		fmt.Printf("  %-24s %d\n", t, counts[t])
	}

	if *showMap {
		if snap := runner.Latest(); snap != nil {
			fmt.Println()
			fmt.Print(renderSlice(snap, agent))
		}
	}
}

func positionSource(cfg *config.Config, dir string) (app.PositionSource, error) {
	start := cfg.Agent.AgentStart()
	if dir == "" {
		return app.NewWalker(start, cfg.Agent.Route(), cfg.Agent.Speed), nil
	}
	d, err := parseDir(dir)
	if err != nil {
		return nil, err
	}
	return app.NewDrift(start, d, cfg.Agent.Speed), nil
}
