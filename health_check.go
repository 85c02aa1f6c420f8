//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fenilmodi00/sebi-ipo-api/config"
	"github.com/fenilmodi00/sebi-ipo-api/database"
	"github.com/fenilmodi00/sebi-ipo-api/services"
	"github.com/fenilmodi00/sebi-ipo-api/shared"
)

func main() {
	fmt.Printf("🏥 SEBI IPO API Health Check - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Println(strings.Repeat("=", 50))

	// Quick tests
	healthScore := 0
	totalTests := 4
	ctx := context.Background()

	// Test 1: Configuration
	fmt.Print("🔑 Configuration: ")
	cfg := config.LoadConfig()
	if cfg.APIKey == "" {
		fmt.Println("❌ FAILED (API_KEY is empty, every /ipos request would be rejected)")
	} else {
		fmt.Printf("✅ OK (serving on port %s)\n", cfg.ServerPort)
		healthScore++
	}

	// Test 2: Database
	fmt.Print("🗄️  Database: ")
	store, err := database.Connect(cfg.DSN())
	if err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else if err := store.Ping(ctx); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Println("✅ OK")
		healthScore++
	}

	// Test 3: Database Data
	fmt.Print("📊 Database Data: ")
	if store == nil {
		fmt.Println("❌ FAILED (no connection)")
	} else {
		filingService := services.NewFilingService(store)
		if total, _, err := filingService.ListFilings(ctx, "", "", 1, 0); err != nil {
			fmt.Printf("❌ FAILED (%v)\n", err)
		} else {
			fmt.Printf("✅ OK (%d filings)\n", total)
			healthScore++
		}
	}

	// Test 4: Rate limit counters
	fmt.Print("🚦 Rate Limit Counters: ")
	if cfg.RedisAddr == "" {
		fmt.Println("✅ OK (in-memory)")
		healthScore++
	} else if counters, err := shared.NewRedisCounterStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Printf("✅ OK (redis %s)\n", cfg.RedisAddr)
		healthScore++
		counters.Close()
	}

	if store != nil {
		store.Close()
	}

	// Overall health. Exit nonzero below healthy so cron and container
	// healthchecks can act on the result.
	fmt.Println(strings.Repeat("-", 50))
	switch {
	case healthScore == totalTests:
		fmt.Printf("🎉 API HEALTHY: %d/%d checks passed\n", healthScore, totalTests)
	case healthScore >= totalTests/2:
		fmt.Printf("⚠️  API DEGRADED: %d/%d checks passed\n", healthScore, totalTests)
	default:
		fmt.Printf("❌ API UNHEALTHY: %d/%d checks passed\n", healthScore, totalTests)
	}
	fmt.Printf("⏰ Check completed at: %s\n", time.Now().Format("15:04:05"))

	if healthScore < totalTests {
		os.Exit(1)
	}
}
