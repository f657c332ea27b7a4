package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"audiopipe/internal/audio"
	"audiopipe/internal/config"
	"audiopipe/internal/format"
	"audiopipe/internal/metrics"
	"audiopipe/internal/notes"
	"audiopipe/internal/notify"
	"audiopipe/internal/pipeline"
	"audiopipe/internal/server"
	"audiopipe/internal/storage"
	"audiopipe/internal/transcribe"
	"audiopipe/internal/worker"
)

func main() {
	var (
		configPath string
		singleKey  string
	)
	flag.StringVar(&configPath, "config", "", "Path to YAML config file (defaults apply when omitted)")
	flag.StringVar(&singleKey, "key", "", "Process a single object key and exit instead of watching")
	flag.Parse()

	// .env is a development convenience; in deployment the variables are set
	// in the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg.Logging)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is not set")
	}
	bucket := cfg.Storage.Bucket
	if bucket == "" {
		bucket = os.Getenv("AUDIO_BUCKET")
	}
	if bucket == "" {
		log.Fatal("storage bucket is not configured (set storage.bucket or AUDIO_BUCKET)")
	}

	if err := os.MkdirAll(cfg.Pipeline.WorkDir, 0o755); err != nil {
		log.Fatalf("Failed to create work directory: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load AWS configuration: %v", err)
	}
	store := storage.NewS3(s3.NewFromConfig(awsCfg), bucket)

	client := openai.NewClient(apiKey)
	m := metrics.NewMetrics()

	var notifier pipeline.Notifier
	if topic := notifyTopic(cfg); topic != "" {
		notifier = notify.NewNtfy(topic, logrus.NewEntry(log))
	} else {
		log.Warn("no notification topic configured; progress and failure messages are disabled")
	}

	pipe := pipeline.New(
		pipeline.Config{
			Thresholds: pipeline.Thresholds{
				DirectMax:                cfg.Pipeline.DirectMaxBytes,
				CompressTrigger:          cfg.Pipeline.CompressTriggerBytes,
				PostCompressSplitTrigger: cfg.Pipeline.PostCompressSplitTriggerBytes,
			},
			ChunkDuration: cfg.Pipeline.ChunkDuration(),
			WorkDir:       cfg.Pipeline.WorkDir,
		},
		audio.NewFFmpeg(),
		transcribe.NewWhisper(client, cfg.Transcription.Model, cfg.Transcription.Language, logrus.NewEntry(log)),
		notifier,
		logrus.NewEntry(log),
		m,
	)

	var notesDB worker.NoteStore
	if url := os.Getenv("SUPABASE_URL"); url != "" {
		key := os.Getenv("SUPABASE_SERVICE_KEY")
		if key == "" {
			log.Warn("SUPABASE_URL set without SUPABASE_SERVICE_KEY; note recording disabled")
		} else {
			notesDB = notes.NewStore(notes.NewClient(url, key), logrus.NewEntry(log))
		}
	}

	w := worker.New(
		worker.Config{
			Prefix:       cfg.Watch.Prefix,
			Interval:     time.Duration(cfg.Watch.IntervalSeconds) * time.Second,
			OutputPrefix: cfg.Storage.OutputPrefix,
			WorkDir:      cfg.Pipeline.WorkDir,
		},
		store,
		pipe,
		format.NewFormatter(client, cfg.Formatting.Model, logrus.NewEntry(log)),
		notesDB,
		notifier,
		logrus.NewEntry(log),
		m,
	)

	var srv *server.HTTPServer
	if cfg.HTTP.Enabled {
		srv = server.New(cfg.HTTP, log)
		go func() {
			if err := srv.Start(); err != nil {
				log.WithError(err).Error("monitoring endpoint failed")
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("received shutdown signal")
		cancel()
	}()

	if singleKey != "" {
		if err := w.Process(ctx, singleKey); err != nil {
			log.WithError(err).Fatal("processing failed")
		}
	} else {
		if err := w.Watch(ctx); err != nil && err != context.Canceled {
			log.WithError(err).Error("watch loop stopped")
		}
	}

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("monitoring endpoint shutdown failed")
		}
	}
	log.Info("worker stopped")
}

func notifyTopic(cfg *config.Config) string {
	if cfg.Notify.TopicURL != "" {
		return cfg.Notify.TopicURL
	}
	return os.Getenv("NTFY_TOPIC_URL")
}
