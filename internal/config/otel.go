package config

// OtelConfig configures span export for the relations spans and HTTP requests.
type OtelConfig struct {
	// ExporterEndpoint is the OTLP/HTTP collector URL; empty disables export
	ExporterEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	Insecure         bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	ServiceName      string  `env:"OTEL_SERVICE_NAME"           envDefault:"emergent-relations"`
	SamplingRate     float64 `env:"OTEL_SAMPLING_RATE"          envDefault:"1.0"`
}

// Enabled reports whether spans are exported.
func (c OtelConfig) Enabled() bool {
	return c.ExporterEndpoint != ""
}
