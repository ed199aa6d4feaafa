package config

import (
	"flag"
	"os"
)

type Config struct {
	RunAddress     string
	DataDir        string
	StateBackend   string
	ExtractAddress string
	InsightAddress string
	ChangelogSink  string
	ChangelogDir   string
	KafkaBootstrap string
	TopicChangelog string
	BackupDir      string
	RestoreLatest  bool
}

func New() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "server address and port")
	flag.StringVar(&cfg.DataDir, "d", "./data", "registry data directory")
	flag.StringVar(&cfg.StateBackend, "state", "pebble", "state backend: memory|pebble|badger")
	flag.StringVar(&cfg.ExtractAddress, "x", "", "extraction service address (empty disables non-CSV imports)")
	flag.StringVar(&cfg.InsightAddress, "i", "", "insight service address (empty disables /api/insights)")
	flag.StringVar(&cfg.ChangelogSink, "sink", "file", "audit feed sink: off|file|kafka|both")
	flag.StringVar(&cfg.ChangelogDir, "sink-dir", "./changelog", "audit feed directory for the file sink")
	flag.StringVar(&cfg.KafkaBootstrap, "kafka", "localhost:9092", "kafka bootstrap servers, comma-separated")
	flag.StringVar(&cfg.TopicChangelog, "topic", "novareg-audit", "audit feed kafka topic")
	flag.StringVar(&cfg.BackupDir, "backup-dir", "./backups", "backup archive directory")
	flag.BoolVar(&cfg.RestoreLatest, "restore", false, "restore the latest backup archive before serving")
	flag.Parse()

	cfg.RunAddress = getEnv("RUN_ADDRESS", cfg.RunAddress)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.StateBackend = getEnv("STATE_BACKEND", cfg.StateBackend)
	cfg.ExtractAddress = getEnv("EXTRACT_ADDRESS", cfg.ExtractAddress)
	cfg.InsightAddress = getEnv("INSIGHT_ADDRESS", cfg.InsightAddress)
	cfg.ChangelogSink = getEnv("CHANGELOG_SINK", cfg.ChangelogSink)
	cfg.ChangelogDir = getEnv("CHANGELOG_DIR", cfg.ChangelogDir)
	cfg.KafkaBootstrap = getEnv("KAFKA_BOOTSTRAP", cfg.KafkaBootstrap)
	cfg.TopicChangelog = getEnv("TOPIC_CHANGELOG", cfg.TopicChangelog)
	cfg.BackupDir = getEnv("BACKUP_DIR", cfg.BackupDir)

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
