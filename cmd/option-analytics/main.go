package main

import (
	"flag"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/contactkeval/option-analytics/internal/api"
	"github.com/contactkeval/option-analytics/internal/data"
	"github.com/contactkeval/option-analytics/internal/logger"
	"github.com/contactkeval/option-analytics/internal/processor"
)

func main() {
	port := flag.String("port", ":8080", "HTTP listen address")
	verbosity := flag.Int("verbosity", 1, "log verbosity: 0=error 1=info 2=debug 3=trace")
	flag.Parse()

	logger.SetVerbosity(*verbosity)

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		logger.Debugf("loaded configuration from .env")
	}

	riskFreeRate := 0.0
	if raw := os.Getenv("RISK_FREE_RATE"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			logger.Warnf("invalid RISK_FREE_RATE %q, using default: %v", raw, err)
		} else {
			riskFreeRate = parsed
		}
	}

	provider := data.NewProviderFromEnv()
	proc := processor.NewProcessor(provider, riskFreeRate)
	server := api.NewServer(proc)

	srv := &http.Server{
		Addr:         *port,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	logger.Infof("starting options analytics server on %s (provider: %s)", *port, provider.Name())
	if err := srv.ListenAndServe(); err != nil {
		logger.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
