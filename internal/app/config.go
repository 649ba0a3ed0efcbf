package app

import (
	"github.com/soabuilder/soa-backend/internal/pkg/envutil"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/services"
)

type Config struct {
	HTTPAddr string
	DBPath   string
	// DiffLimit caps interactive diff change lists; full=1 bypasses it
	// up to the bulk limit.
	DiffLimit int
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		HTTPAddr:  envutil.GetEnv("SOA_BUILDER_HTTP_ADDR", ":8080", log),
		DBPath:    envutil.GetEnv("SOA_BUILDER_DB", "soa_builder_web.db", log),
		DiffLimit: envutil.GetEnvAsInt("SOA_BUILDER_DIFF_LIMIT", services.DefaultDiffLimit, log),
	}
}
