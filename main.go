package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hostel-migrate/internal/config"
	"hostel-migrate/internal/logging"
	"hostel-migrate/internal/metrics"
	"hostel-migrate/internal/migrate"
	"hostel-migrate/internal/report"
	"hostel-migrate/internal/source"
	"hostel-migrate/models"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

type flagValues struct {
	configFile   string
	source       string
	credentials  string
	targetDriver string
	targetDSN    string
	autoMigrate  bool
	logLevel     string
	logFormat    string
	pushgateway  string
	reportDir    string
	reportBucket string
}

func newRootCmd() *cobra.Command {
	var fv flagValues

	root := &cobra.Command{
		Use:           "hostel-migrate",
		Short:         "Copy hostel records from the document store into the relational database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&fv.configFile, "config", config.DefaultConfigFile, "YAML config file (optional)")
	pf.StringVar(&fv.source, "source", "", "Source driver: firestore, mongo or json")
	pf.StringVar(&fv.credentials, "credentials", "", "Firestore service account key file")
	pf.StringVar(&fv.targetDriver, "target-driver", "", "Target driver: postgres, mysql or sqlite")
	pf.StringVar(&fv.targetDSN, "target-dsn", "", "Target connection string")
	pf.BoolVar(&fv.autoMigrate, "auto-migrate", false, "Create missing target tables before migrating")
	pf.StringVar(&fv.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&fv.logFormat, "log-format", "", "Log format: console or json")
	pf.StringVar(&fv.pushgateway, "pushgateway", "", "Prometheus Pushgateway URL")
	pf.StringVar(&fv.reportDir, "report-dir", "", "Directory for the JSON run report")
	pf.StringVar(&fv.reportBucket, "report-s3-bucket", "", "S3 bucket for the JSON run report")

	jobs := []struct {
		name  string
		short string
	}{
		{migrate.JobCore, "Migrate rooms, users, student profiles and room allocations"},
		{migrate.JobFull, "Migrate complaints, payments, laundry, leaves, notices, bus timings, mess and emergency contacts"},
	}
	for _, job := range jobs {
		job := job
		root.AddCommand(&cobra.Command{
			Use:   job.name,
			Short: job.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(cmd, fv)
				if err != nil {
					fmt.Fprintf(os.Stderr, "hostel-migrate: %v\n", err)
					return err
				}
				return run(cmd.Context(), cfg, job.name)
			},
		})
	}
	return root
}

// loadConfig merges defaults, the config file, the environment and any flag
// set on the command line, then validates the result.
func loadConfig(cmd *cobra.Command, fv flagValues) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(fv.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	strs := []struct {
		name string
		val  string
		dst  *string
	}{
		{"source", fv.source, &cfg.Source.Driver},
		{"credentials", fv.credentials, &cfg.Source.CredentialsFile},
		{"target-driver", fv.targetDriver, &cfg.Target.Driver},
		{"target-dsn", fv.targetDSN, &cfg.Target.DSN},
		{"log-level", fv.logLevel, &cfg.Log.Level},
		{"log-format", fv.logFormat, &cfg.Log.Format},
		{"pushgateway", fv.pushgateway, &cfg.Metrics.PushgatewayURL},
		{"report-dir", fv.reportDir, &cfg.Report.Dir},
		{"report-s3-bucket", fv.reportBucket, &cfg.Report.S3Bucket},
	}
	for _, s := range strs {
		if flags.Changed(s.name) {
			*s.dst = s.val
		}
	}
	if flags.Changed("auto-migrate") {
		cfg.Target.AutoMigrate = fv.autoMigrate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, job string) error {
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hostel-migrate: %v\n", err)
		return err
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("job", job))

	rec := metrics.NewRecorder()
	rep := report.New(job, time.Now())
	log = log.With(zap.String("run_id", rep.RunID))

	stats, runErr := execute(ctx, cfg, job, log, rec)

	finished := time.Now()
	if runErr == nil {
		rec.Succeeded(finished)
	}
	rep.Finish(finished, stats, runErr)
	publish(ctx, cfg, log, rec, rep)

	if runErr != nil {
		log.Error("migration failed", zap.Error(runErr))
		return runErr
	}
	log.Info("migration completed successfully", zap.Duration("elapsed", finished.Sub(rep.StartedAt)))
	return nil
}

func execute(ctx context.Context, cfg *config.Config, job string, log *zap.Logger, rec *metrics.Recorder) ([]migrate.Stats, error) {
	opts := source.Options{
		Driver:        cfg.Source.Driver,
		ProjectID:     cfg.Source.ProjectID,
		MongoURI:      cfg.Source.MongoURI,
		MongoDatabase: cfg.Source.MongoDatabase,
		JSONDir:       cfg.Source.JSONDir,
	}
	if cfg.Source.Driver == source.DriverFirestore {
		sa, err := config.LoadServiceAccount(cfg.Source.CredentialsFile)
		if err != nil {
			return nil, err
		}
		opts.CredentialsJSON = sa.Raw
		if opts.ProjectID == "" {
			opts.ProjectID = sa.ProjectID
		}
		log.Info("service account loaded", zap.String("project_id", opts.ProjectID), zap.String("client_email", sa.ClientEmail))
	}

	src, err := source.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer func() {
		if err := src.Close(context.WithoutCancel(ctx)); err != nil {
			log.Warn("error closing source", zap.Error(err))
		}
	}()

	db, err := models.NewDatabase(cfg.Target.Driver, cfg.Target.DSN, logging.GormLevel(cfg.Log.Level))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("error closing target", zap.Error(err))
		}
	}()

	if cfg.Target.AutoMigrate {
		if err := db.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to create target schema: %w", err)
		}
	}

	log.Info("starting migration",
		zap.String("source", cfg.Source.Driver),
		zap.String("target", cfg.Target.Driver))
	return migrate.New(src, db, log, migrate.WithMetrics(rec)).Run(ctx, job)
}

// publish pushes metrics and writes the run report. Failures here are
// logged only.
func publish(ctx context.Context, cfg *config.Config, log *zap.Logger, rec *metrics.Recorder, rep *report.Report) {
	ctx = context.WithoutCancel(ctx)

	if err := rec.Push(ctx, cfg.Metrics.PushgatewayURL, "hostel_migrate_"+rep.Job); err != nil {
		log.Warn("metrics push failed", zap.Error(err))
	}

	sink, err := report.NewSink(ctx, cfg.Report)
	if err != nil {
		log.Warn("report sink unavailable", zap.Error(err))
		return
	}
	if sink == nil {
		return
	}
	if err := sink.Write(ctx, rep); err != nil {
		log.Warn("report write failed", zap.Error(err))
		return
	}
	log.Info("report written", zap.String("name", rep.Name()))
}
