package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createSessionsSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				DROP TABLE IF EXISTS quiz_responses;
				DROP TABLE IF EXISTS participants;
				DROP TABLE IF EXISTS quiz_sessions;
				DROP TABLE IF EXISTS auth_tokens;
			`)
			return err
		},
	)
}
