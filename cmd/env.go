package cmd

import (
	"fmt"

	"datarec/core/config"
	"datarec/core/database"
	"datarec/core/storage"
	"datarec/feature/job"
	"datarec/feature/recon"
	"datarec/feature/source"

	"go.uber.org/zap"
)

// needs reports which backends the sources of j use.
func needs(j *job.Job) (db, store bool) {
	for _, s := range []source.Spec{j.Baseline, j.Candidate} {
		switch s.Type {
		case source.TypeSQL:
			db = true
		case source.TypeObject:
			store = true
		}
	}
	return db, store
}

// sourceEnv connects the backends a run needs. Backends nobody uses stay nil.
func sourceEnv(cfg *config.Config, withDB, withStore bool) (source.Env, error) {
	env := source.Env{Bucket: cfg.Storage.Bucket}
	if withDB {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return env, fmt.Errorf("failed to connect to database: %w", err)
		}
		env.DB = db
	}
	if withStore {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return env, fmt.Errorf("failed to connect to storage: %w", err)
		}
		env.Storage = client
	}
	return env, nil
}

func reconConfig(cfg *config.Config, env source.Env) recon.Config {
	return recon.Config{
		Jobs:         job.Dir(cfg.Jobs.Dir),
		Env:          env,
		ReportBucket: cfg.Jobs.ReportBucket,
		ReportPrefix: cfg.Jobs.ReportPrefix,
		Region:       cfg.Storage.Region,
	}
}

func closeDB(env source.Env, l *zap.Logger) {
	if env.DB == nil {
		return
	}
	if sqlDB, err := env.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			l.Warn("Failed to close database", zap.Error(err))
		}
	}
}
