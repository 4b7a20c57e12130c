package observability

import (
	"strings"

	"github.com/smallbiznis/invoicing/internal/config"
)

// Config is the normalised telemetry setup shared by the logger, tracer
// and meter providers.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

// LoadConfig derives Config from the application config. Export is on
// only when an OTLP endpoint is set; the sampling ratio is clamped to
// [0, 1] and unknown protocols fall back to grpc.
func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "invoices"
	}
	tel := cfg.Telemetry
	endpoint := strings.TrimSpace(tel.OTLPEndpoint)

	return Config{
		ServiceName:          serviceName,
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             lower(tel.LogLevel, "info"),
		LogFormat:            lower(tel.LogFormat, "json"),
		OtelEnabled:          endpoint != "",
		OtelExporterEndpoint: endpoint,
		OtelExporterProtocol: protocol(tel.OTLPProtocol),
		OtelSamplingRatio:    clampRatio(tel.SamplingRatio),
	}
}

// Debug enables development logging for debug level or a non-production
// environment.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func lower(value, def string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return def
	}
	return value
}

func protocol(value string) string {
	switch v := lower(value, "grpc"); v {
	case "http", "http/protobuf":
		return "http"
	default:
		return "grpc"
	}
}

func clampRatio(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	default:
		return r
	}
}
