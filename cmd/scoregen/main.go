package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/vaibhaw-/SealR/internal/scoregen"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML fixture config")
	flag.Parse()

	if *configPath == "" {
		fmt.Println("Error: --config is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := scoregen.ReadConfig(*configPath)
	if err != nil {
		log.Fatalf("[FATAL] error loading config: %v", err)
	}

	log.Printf("[INFO] Generating %d score entries (flaggedRatio=%.2f threshold=%.2f seed=%d)",
		cfg.Segments, cfg.FlaggedRatio, cfg.FlagThreshold, cfg.Seed)

	entries := scoregen.Generate(cfg)
	if err := scoregen.Write(cfg, entries); err != nil {
		log.Fatalf("[FATAL] cannot write output: %v", err)
	}

	log.Printf("[INFO] Score file generated: %s", cfg.Output)
}
