package issuerdb

import (
	"context"
	"log"

	"github.com/chainsafe/crosschain-issuer/pkg/issuancestore"
	mghelper "github.com/chainsafe/crosschain-issuer/pkg/pgutil/migrations"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating issuance_events table...")
		if err := mghelper.CreateSchema(ctx, db, &issuancestore.EventDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &issuancestore.EventDao{}, "run_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping issuance_events table...")
		return mghelper.DropTables(ctx, db, &issuancestore.EventDao{})
	})
}
