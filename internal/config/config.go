package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/annel0/endless-structure/internal/structure"
	"github.com/annel0/endless-structure/internal/vec"
)

// Config корневая структура конфигурации сервиса
type Config struct {
	Structure StructureConfig `yaml:"structure"`
	Features  FeaturesConfig  `yaml:"features"`
	Materials MaterialsConfig `yaml:"materials"`
	Agent     AgentConfig     `yaml:"agent"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type StructureConfig struct {
	SideLength int     `yaml:"side_length"`
	TileLength float64 `yaml:"tile_length"`
	Seed       int64   `yaml:"seed"`
}

// FeaturesConfig — знаменатели шансов "один из N"
type FeaturesConfig struct {
	FragileOneIn       int `yaml:"fragile_one_in"`
	WallOneIn          int `yaml:"wall_one_in"`
	SolidOneIn         int `yaml:"solid_one_in"`
	MirrorInitialOneIn int `yaml:"mirror_initial_one_in"`
	MirrorStreamOneIn  int `yaml:"mirror_stream_one_in"`
	SlideOneIn         int `yaml:"slide_one_in"`
	RopeOneIn          int `yaml:"rope_one_in"`
	RampOneIn          int `yaml:"ramp_one_in"`
}

// MaterialsConfig — непрозрачные идентификаторы ресурсов рендерера
type MaterialsConfig struct {
	Floor             []uint32 `yaml:"floor"`
	Slide             []uint32 `yaml:"slide"`
	Plexiglass        uint32   `yaml:"plexiglass"`
	Mirror            uint32   `yaml:"mirror"`
	Rope              uint32   `yaml:"rope"`
	WallNet           uint32   `yaml:"wall_net"`
	VerticalSupport   uint32   `yaml:"vertical_support"`
	HorizontalSupport uint32   `yaml:"horizontal_support"`
	SupportPhysics    uint32   `yaml:"support_physics"`
	PlasticPhysics    uint32   `yaml:"plastic_physics"`
	GroundLayer       uint32   `yaml:"ground_layer"`
	ConvexMesh        uint32   `yaml:"convex_mesh"`
}

// AgentConfig описывает симулируемого агента и частоту тиков
type AgentConfig struct {
	TickRate  time.Duration `yaml:"tick_rate"`
	Speed     float64       `yaml:"speed"` // мировых единиц за тик
	Start     [3]float64    `yaml:"start"`
	Waypoints [][3]float64  `yaml:"waypoints"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type ServerConfig struct {
	RESTPort int `yaml:"rest_port"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Dir          string `yaml:"dir"`
	ConsoleLevel string `yaml:"console_level"`
	FileLevel    string `yaml:"file_level"`
}

// Default возвращает конфигурацию, с которой сервис стартует без файла
func Default() *Config {
	ch := structure.DefaultChances()
	return &Config{
		Structure: StructureConfig{SideLength: 11, TileLength: 4, Seed: 1},
		Features: FeaturesConfig{
			FragileOneIn:       ch.FragileOneIn,
			WallOneIn:          ch.WallOneIn,
			SolidOneIn:         ch.SolidOneIn,
			MirrorInitialOneIn: ch.MirrorInitialOneIn,
			MirrorStreamOneIn:  ch.MirrorStreamOneIn,
			SlideOneIn:         ch.SlideOneIn,
			RopeOneIn:          ch.RopeOneIn,
			RampOneIn:          ch.RampOneIn,
		},
		Materials: MaterialsConfig{
			Floor:      []uint32{1, 2, 3},
			Slide:      []uint32{11, 12, 13},
			Plexiglass: 20,
			Mirror:     21,
			Rope:       22,
			WallNet:    23,
		},
		Agent: AgentConfig{
			TickRate:  50 * time.Millisecond,
			Speed:     0.5,
			Waypoints: [][3]float64{{40, 0, 0}, {40, -20, 40}, {0, 0, 40}, {0, 0, 0}},
		},
		EventBus:  EventBusConfig{Stream: "STRUCTURE", Retention: 24},
		Telemetry: TelemetryConfig{ServiceName: "endless-structure", Endpoint: "localhost:4318"},
		Logging:   LoggingConfig{Dir: "logs", ConsoleLevel: "INFO", FileLevel: "DEBUG"},
	}
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "STRUCTURE_REST_PORT", 8090)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}
	return defaultPort
}

// Load читает YAML файл поверх Default().
// Если path == "", берётся ENV STRUCTURE_CONFIG; если пусто и там, возвращается Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("STRUCTURE_CONFIG")
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, которые ядро и раннер не могут исправить сами
func (c *Config) Validate() error {
	if err := c.StructureConfig().Validate(); err != nil {
		return fmt.Errorf("structure: %w", err)
	}
	if c.Agent.TickRate <= 0 {
		return fmt.Errorf("agent.tick_rate must be positive, got %s", c.Agent.TickRate)
	}
	if c.Agent.Speed < 0 {
		return fmt.Errorf("agent.speed must not be negative, got %v", c.Agent.Speed)
	}
	return nil
}

// StructureConfig переводит файловую схему в конфигурацию ядра
func (c *Config) StructureConfig() structure.Config {
	m := c.Materials
	return structure.Config{
		SideLength: c.Structure.SideLength,
		TileLength: c.Structure.TileLength,
		Materials: structure.Materials{
			Floor:             handles(m.Floor),
			Slide:             handles(m.Slide),
			Plexiglass:        structure.Handle(m.Plexiglass),
			Mirror:            structure.Handle(m.Mirror),
			Rope:              structure.Handle(m.Rope),
			WallNet:           structure.Handle(m.WallNet),
			VerticalSupport:   structure.Handle(m.VerticalSupport),
			HorizontalSupport: structure.Handle(m.HorizontalSupport),
			SupportPhysics:    structure.Handle(m.SupportPhysics),
			PlasticPhysics:    structure.Handle(m.PlasticPhysics),
			GroundLayer:       structure.Handle(m.GroundLayer),
			ConvexMesh:        structure.Handle(m.ConvexMesh),
		},
		Chances: structure.Chances{
			FragileOneIn:       c.Features.FragileOneIn,
			WallOneIn:          c.Features.WallOneIn,
			SolidOneIn:         c.Features.SolidOneIn,
			MirrorInitialOneIn: c.Features.MirrorInitialOneIn,
			MirrorStreamOneIn:  c.Features.MirrorStreamOneIn,
			SlideOneIn:         c.Features.SlideOneIn,
			RopeOneIn:          c.Features.RopeOneIn,
			RampOneIn:          c.Features.RampOneIn,
		},
	}
}

// AgentStart возвращает стартовую позицию агента
func (a *AgentConfig) AgentStart() vec.Vec3Float {
	return toVec(a.Start)
}

// Route возвращает маршрут агента в мировых координатах
func (a *AgentConfig) Route() []vec.Vec3Float {
	out := make([]vec.Vec3Float, 0, len(a.Waypoints))
	for _, w := range a.Waypoints {
		out = append(out, toVec(w))
	}
	return out
}

func toVec(p [3]float64) vec.Vec3Float {
	return vec.Vec3Float{X: p[0], Y: p[1], Z: p[2]}
}

func handles(ids []uint32) []structure.Handle {
	out := make([]structure.Handle, len(ids))
	for i, id := range ids {
		out[i] = structure.Handle(id)
	}
	return out
}
