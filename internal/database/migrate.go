package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/campusconnect/pkg/logger"
)

type Migration struct {
	Name string
	SQL  string
}

// Migrations create the schema. Every statement is idempotent so they can run
// on each start.
var Migrations = []Migration{
	{
		Name: "create_accounts",
		SQL: `
			CREATE TABLE IF NOT EXISTS accounts (
				id            UUID PRIMARY KEY,
				name          TEXT NOT NULL,
				email         TEXT NOT NULL UNIQUE,
				role          TEXT NOT NULL CHECK (role IN ('poster', 'candidate')),
				skills        TEXT[] NOT NULL DEFAULT '{}',
				bio           TEXT NOT NULL DEFAULT '',
				resume_ref    TEXT,
				avatar_ref    TEXT,
				password_hash TEXT NOT NULL,
				created_at    TIMESTAMPTZ NOT NULL
			)`,
	},
	{
		Name: "create_listings",
		SQL: `
			CREATE TABLE IF NOT EXISTS listings (
				id          UUID PRIMARY KEY,
				title       TEXT NOT NULL,
				description TEXT NOT NULL,
				category    TEXT NOT NULL CHECK (category IN ('job', 'internship', 'project')),
				tags        TEXT[] NOT NULL,
				owner_id    UUID NOT NULL REFERENCES accounts(id),
				view_count  BIGINT NOT NULL DEFAULT 0 CHECK (view_count >= 0),
				created_at  TIMESTAMPTZ NOT NULL
			);
			CREATE INDEX IF NOT EXISTS listings_owner_idx ON listings (owner_id)`,
	},
	{
		// seq orders listings created in the same instant by arrival.
		Name: "add_listings_seq",
		SQL: `
			ALTER TABLE listings ADD COLUMN IF NOT EXISTS seq BIGSERIAL;
			CREATE INDEX IF NOT EXISTS listings_recent_idx ON listings (created_at DESC, seq DESC)`,
	},
	{
		// listing_id is deliberately not a foreign key: applications outlive deleted listings.
		Name: "create_applications",
		SQL: `
			CREATE TABLE IF NOT EXISTS applications (
				id               UUID PRIMARY KEY,
				listing_id       UUID NOT NULL,
				listing_owner_id UUID NOT NULL,
				applicant_id     UUID NOT NULL REFERENCES accounts(id),
				message          TEXT NOT NULL DEFAULT '',
				status           TEXT NOT NULL CHECK (status IN ('pending', 'shortlisted', 'accepted', 'rejected')),
				applied_at       TIMESTAMPTZ NOT NULL,
				decided_at       TIMESTAMPTZ,
				CONSTRAINT applications_listing_applicant_key UNIQUE (listing_id, applicant_id)
			);
			CREATE INDEX IF NOT EXISTS applications_owner_idx ON applications (listing_owner_id);
			CREATE INDEX IF NOT EXISTS applications_applicant_idx ON applications (applicant_id)`,
	},
	{
		Name: "create_thread_messages",
		SQL: `
			CREATE TABLE IF NOT EXISTS thread_messages (
				seq       BIGSERIAL UNIQUE,
				id        UUID PRIMARY KEY,
				thread_id TEXT NOT NULL,
				sender_id UUID NOT NULL REFERENCES accounts(id),
				text      TEXT NOT NULL,
				sent_at   TIMESTAMPTZ NOT NULL
			);
			CREATE INDEX IF NOT EXISTS thread_messages_thread_idx ON thread_messages (thread_id, sent_at, seq)`,
	},
	{
		Name: "create_objects",
		SQL: `
			CREATE TABLE IF NOT EXISTS objects (
				path         TEXT PRIMARY KEY,
				content_type TEXT NOT NULL,
				data         BYTEA NOT NULL,
				updated_at   TIMESTAMPTZ NOT NULL
			)`,
	},
}

// Migrate applies Migrations in order and stops at the first failure.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log logger.Logger) error {
	for _, m := range Migrations {
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		log.Info(ctx, "migration applied", logger.String("name", m.Name))
	}
	return nil
}
