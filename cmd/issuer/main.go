package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chainsafe/crosschain-issuer/pkg/app/issuer"
	"github.com/chainsafe/crosschain-issuer/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := issuer.NewServer(cfg).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Issuer exited: %v\n", err)
		os.Exit(1)
	}
}
