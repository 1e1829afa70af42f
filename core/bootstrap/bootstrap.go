package bootstrap

import (
	"fmt"

	coreconfig "latinbot/core/config"
	coredatabase "latinbot/core/database"
	"latinbot/core/logger"
)

// Options control the bootstrap pipeline.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config

	LoggerInit func(*coreconfig.Config) error
	Migrate    func(coredatabase.Config) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	// Pool is a lazily dialled connection pool; the first store call
	// establishes the actual connection.
	Pool *coredatabase.Pool
}

// Run validates the database configuration, initializes the logger, applies
// migrations, and prepares the lazy connection pool.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	if err := opts.Database.Validate(); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}
	if err := migrate(opts.Database); err != nil {
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	return &Result{Pool: coredatabase.NewPool(opts.Database)}, nil
}
