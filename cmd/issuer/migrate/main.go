package main

import (
	"context"
	"flag"
	"log"

	"github.com/chainsafe/crosschain-issuer/pkg/config"
	"github.com/chainsafe/crosschain-issuer/pkg/migrations/issuerdb"
	"github.com/chainsafe/crosschain-issuer/pkg/pgutil"
	mghelper "github.com/chainsafe/crosschain-issuer/pkg/pgutil/migrations"

	"github.com/uptrace/bun/migrate"
)

func main() {
	cfgPath := flag.String("config", "config.example.yaml", "Path to configuration file")
	flag.Usage = mghelper.Usage
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("error reading configuration file: %s", err.Error())
	}
	if !cfg.Database.Enabled() {
		log.Fatalf("database.host is not set, nothing to migrate")
	}

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatalf("error connecting to database: %s", err.Error())
	}
	defer db.Close()

	log.Printf("Running migrations for issuer database (%s)...\n", cfg.Database.Database)

	migrator := migrate.NewMigrator(db, issuerdb.Migrations)

	if err := mghelper.RunMigrations(context.Background(), migrator, flag.Args()...); err != nil {
		mghelper.Exitf(err.Error())
	}
}
