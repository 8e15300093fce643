package checker_config

import (
	"time"

	"github.com/coachpulse/coachpulse/internal/mailer"
	"github.com/coachpulse/coachpulse/internal/obs"
	pginfra "github.com/coachpulse/coachpulse/internal/repository/postgres"
)

type KafkaCfg struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type CheckCfg struct {
	Tick        time.Duration `mapstructure:"tick"`
	HTTPAddr    string        `mapstructure:"http_addr"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

type LogCfg struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
	Env    string `mapstructure:"env"`
}

func (c LogCfg) AsLoggerConfig(app string) obs.LogConfig {
	return obs.LogConfig{Level: c.Level, Pretty: c.Pretty, App: app, Env: c.Env}
}

type OTELCfg struct {
	Enable      bool    `mapstructure:"enable"`
	Endpoint    string  `mapstructure:"otlp_endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

func (c OTELCfg) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      c.Enable,
		Endpoint:    c.Endpoint,
		ServiceName: c.ServiceName,
		SampleRatio: c.SampleRatio,
	}
}

type Config struct {
	DB    pginfra.Config `mapstructure:"db"`
	Kafka KafkaCfg       `mapstructure:"kafka"`
	SMTP  mailer.Config  `mapstructure:"smtp"`
	Check CheckCfg       `mapstructure:"check"`
	OTEL  OTELCfg        `mapstructure:"otel"`
	Log   LogCfg         `mapstructure:"log"`
}
