// Package main provides a Lambda entry point for the Backdrop Studio API.
//
// It wraps the same HTTP surface served locally by studio-web behind API
// Gateway via the http adapter. Sessions live in the Lambda container's
// memory, so the deployment must route a browser session to the same
// container (provisioned concurrency of one, or session affinity upstream).
package main

import (
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/backdrop-studio/internal/config"
	"github.com/fpang/backdrop-studio/internal/gemini"
	"github.com/fpang/backdrop-studio/internal/logging"
	"github.com/fpang/backdrop-studio/internal/server"
)

func main() {
	start := time.Now()
	logging.InitJSON()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("GEMINI_API_KEY is required")
	}

	presets, err := config.LoadPresets(os.Getenv("BACKDROP_PRESETS_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load presets")
	}

	svc := gemini.NewClient(apiKey)
	api := server.New(svc, presets)

	logging.NewStartupLogger("studio-lambda").
		Config("model", gemini.ImageModelName()).
		Config("presets", strconv.Itoa(len(presets))).
		Config("presetsFile", os.Getenv("BACKDROP_PRESETS_FILE")).
		InitDuration(time.Since(start)).
		Log()

	lambda.Start(httpadapter.NewV2(api.Handler()).ProxyWithContext)
}
