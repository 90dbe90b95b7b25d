package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/annel0/endless-structure/internal/eventbus"
)

const (
	defaultURL = "nats://127.0.0.1:4222"
	timeFormat = "2006-01-02T15:04:05Z"
)

// event-cli читает события структуры из NATS JetStream и печатает их.
func main() {
	var (
		url        = flag.String("url", defaultURL, "NATS server URL")
		stream     = flag.String("stream", "STRUCTURE", "JetStream stream name")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		sources    = flag.String("sources", "", "Sources filter (comma-separated)")
		limit      = flag.Int("limit", 0, "Stop after N events (0 = follow)")
		payload    = flag.Bool("payload", false, "Print decoded payload")
	)
	flag.Parse()

	bus, err := eventbus.NewJetStreamBus(*url, *stream, 24*time.Hour)
	if err != nil {
		log.Fatalf("❌ Failed to connect to NATS: %v", err)
	}
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	filter := eventbus.Filter{
		Types:   parseStringList(*eventTypes),
		Sources: parseStringList(*sources),
	}
	fmt.Printf("🎬 Tailing %s (types: %v, limit: %d)\n", *stream, filter.Types, *limit)

	var count atomic.Int64
	sub, err := bus.Subscribe(ctx, filter, func(_ context.Context, ev *eventbus.Envelope) {
		if *limit > 0 && count.Load() >= int64(*limit) {
			return
		}
		printEvent(ev, *payload)
		if n := count.Add(1); *limit > 0 && n >= int64(*limit) {
			stop()
		}
	})
	if err != nil {
		log.Fatalf("❌ Subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	<-ctx.Done()
	fmt.Printf("\n📊 Total events: %d\n", count.Load())
}

// printEvent выводит событие одной строкой и, по желанию, его полезную нагрузку
func printEvent(ev *eventbus.Envelope, withPayload bool) {
	fmt.Printf("[%s] %s %s prio=%d id=%s\n",
		ev.Timestamp.Format(timeFormat), ev.Source, ev.EventType, ev.Priority, ev.ID)
	if !withPayload {
		return
	}
	var data map[string]interface{}
	if err := ev.Decode(&data); err != nil {
		fmt.Printf("  ⚠️ %v\n", err)
		return
	}
	out, _ := json.MarshalIndent(data, "  ", "  ")
	fmt.Printf("  %s\n", out)
}

// parseStringList разбирает список через запятую
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
