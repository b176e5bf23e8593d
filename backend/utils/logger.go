package utils

import (
	"log"
	"os"
)

// LoggerConfig defines optional logger settings
type LoggerConfig struct {
	// Log format (text/json)
	Format string
	// Output stream (os.Stdout, file, etc.)
	Output *os.File
	// Enable colored console prefix
	EnableColors bool
}

// InitLogger initializes and returns the application logger
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	prefix := "[Learn2Earn] "

	var logger *log.Logger
	if cfg.Format == "json" {
		logger = log.New(cfg.Output, prefix, log.LstdFlags|log.LUTC)
	} else {
		if cfg.EnableColors {
			prefix = "\033[36m" + prefix + "\033[0m"
		}
		logger = log.New(cfg.Output, prefix, log.LstdFlags|log.LUTC)
	}

	return logger
}
