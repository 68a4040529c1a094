package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/marcoribeirogray/grupo-ofertas-api/internal/types"
	"github.com/marcoribeirogray/grupo-ofertas-api/offer"
	"github.com/marcoribeirogray/grupo-ofertas-api/storage"
	"github.com/marcoribeirogray/grupo-ofertas-api/utils"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	var (
		urlFlag      = flag.String("url", "", "Product URL to build an offer for (required)")
		storeFlag    = flag.String("store", "", "Force a store (amazon, mercadolivre, awin, generic); detected from the URL when empty")
		couponFlag   = flag.String("coupon", "", "Coupon code to include in the announcement")
		templateFlag = flag.String("template", "", "Template slug (default template when empty)")
		timeoutFlag  = flag.Duration("timeout", 12*time.Second, "Page fetch timeout")
		useBrowser   = flag.Bool("browser", false, "Fetch through a headless browser for JavaScript-heavy pages")
		showContext  = flag.Bool("context", false, "Also print the final offer context as JSON")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if *urlFlag == "" {
		log.Fatal("--url flag is required")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	config := types.ConfigFromEnv()
	config.Timeout = *timeoutFlag
	config.UseHeadlessBrowser = *useBrowser

	var fetcher utils.Fetcher
	if config.UseHeadlessBrowser {
		fetcher = utils.NewBrowserClient(config, logger)
	} else {
		client := utils.NewHTTPClient(config, logger)
		defer client.Close()
		fetcher = client
	}

	// One-shot builds run off an in-memory store seeded with the
	// process-wide integration defaults.
	store := storage.NewMemoryStore()
	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag+5*time.Second)
	defer cancel()
	if err := storage.EnsureDefaultIntegrations(ctx, store, config); err != nil {
		log.Fatalf("Failed to seed integrations: %v", err)
	}

	builder := offer.NewBuilder(config, logger, fetcher, store)
	result, err := builder.Build(ctx, offer.BuildRequest{
		URL:          *urlFlag,
		Store:        types.StoreID(*storeFlag),
		Coupon:       *couponFlag,
		TemplateSlug: *templateFlag,
	})
	if err != nil {
		log.Fatalf("Failed to build offer: %v", err)
	}

	fmt.Println(result.Text)
	if *showContext {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result.Context); err != nil {
			log.Fatalf("Failed to encode context: %v", err)
		}
	}
}
