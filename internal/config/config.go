package config

import (
	"fmt"
	"path"
	"time"
)

type StreamConfig struct {
	// LiveTimeoutMs is the liveness window for a session record: a live
	// record older than this is treated as stale by readers.
	LiveTimeoutMs int `yaml:"liveTimeoutMs"`
	// PollIntervalMs is the cadence at which readers re-read the
	// session store.
	PollIntervalMs int `yaml:"pollIntervalMs"`
	// NominalDurationSec is the time base for frame samples; the
	// backend does not pace the stream at video speed, so sample times
	// are a fraction of this window.
	NominalDurationSec int `yaml:"nominalDurationSec"`
}

func (s StreamConfig) LiveTimeout() time.Duration {
	return time.Duration(s.LiveTimeoutMs) * time.Millisecond
}

func (s StreamConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMs) * time.Millisecond
}

type NSQConfig struct {
	NSQDAddr string `yaml:"nsqdAddr"`
	Topic    string `yaml:"topic"`
}

type AlertsConfig struct {
	Enabled        bool           `yaml:"enabled"`
	TotalThreshold int            `yaml:"totalThreshold"`
	ZoneThresholds map[string]int `yaml:"zoneThresholds"`
	NSQ            NSQConfig      `yaml:"nsq"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Region          string `yaml:"region"`
}

func (s3 *S3Config) UrlPrefix() string {
	if s3.UseSSL {
		return fmt.Sprintf("https://%s/%s", s3.Endpoint, s3.Bucket)
	}
	return fmt.Sprintf("http://%s/%s", s3.Endpoint, s3.Bucket)
}

type Config struct {
	Addr        string       `yaml:"addr"`
	BackendAddr string       `yaml:"backendAddr"`
	WorkDir     string       `yaml:"workDir"`
	Stream      StreamConfig `yaml:"stream"`
	Alerts      AlertsConfig `yaml:"alerts"`
	S3          S3Config     `yaml:"s3"`
}

func (c Config) DataDir() string {
	return path.Join(c.WorkDir, "data")
}

func DefaultConfig() *Config {
	return &Config{
		Addr:        "127.0.0.1:8082",
		BackendAddr: "http://127.0.0.1:8000",
		WorkDir:     "./crowdwatch_dir",
		Stream: StreamConfig{
			LiveTimeoutMs:      5000,
			PollIntervalMs:     300,
			NominalDurationSec: 10,
		},
		Alerts: AlertsConfig{
			Enabled:        false,
			TotalThreshold: 10,
			NSQ: NSQConfig{
				NSQDAddr: "localhost:4150",
				Topic:    "crowd_alerts",
			},
		},
		S3: S3Config{
			Enabled:  false,
			Bucket:   "crowdwatch",
			Endpoint: "localhost:9000",
			UseSSL:   false,
			Region:   "us-east-1",
		},
	}
}
