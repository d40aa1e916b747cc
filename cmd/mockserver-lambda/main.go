package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/opsmock/mockserver-go/internal/adapter/awslambda"
	"github.com/opsmock/mockserver-go/internal/config"
	"github.com/opsmock/mockserver-go/internal/httpserver"
	"github.com/opsmock/mockserver-go/internal/persistence"
	"github.com/opsmock/mockserver-go/internal/rest"
	"github.com/opsmock/mockserver-go/internal/store"
	"github.com/opsmock/mockserver-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "mockserver-lambda: load config:", err)
		os.Exit(1)
	}
	log := logger.New(logger.ParseLevel(cfg.LogLevel), os.Stdout, os.Stderr)

	backend, err := persistence.NewBackend(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mockserver-lambda: build persistence backend:", err)
		os.Exit(1)
	}

	s := store.New(backend, cfg.PersistExpectations, log)
	s.Initialize()
	for _, e := range persistence.LoadInitializationFile(cfg.InitializationJSONPath, log) {
		if _, err := s.Upsert(e); err != nil {
			log.Warnf("skipping invalid expectation from initialization file: %v", err)
		}
	}

	controlAPI := rest.NewRouter(s, log, cfg.Port)
	handler := httpserver.New(s, controlAPI, log, cfg.MaxBodySizeBytes())

	lambda.Start(func(req json.RawMessage) (interface{}, error) {
		return awslambda.HandleLambdaRequest(req, handler)
	})
}
