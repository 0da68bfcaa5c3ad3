// Package issuerdb holds all the migrations for the issuer database
package issuerdb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the issuer database
var Migrations = migrate.NewMigrations()
