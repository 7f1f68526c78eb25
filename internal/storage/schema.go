package storage

import "context"

// schema is applied on startup. Statements are idempotent so repeated
// starts against the same database are safe.
//
// The assignments exclusion constraint is the storage-level guarantee
// behind the no-double-booking invariant: even if two allocations race
// past the application-side overlap check, at most one insert commits.
const schema = `
CREATE EXTENSION IF NOT EXISTS btree_gist;

CREATE TABLE IF NOT EXISTS masters (
    id            UUID PRIMARY KEY,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS agencies (
    id            UUID PRIMARY KEY,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL,
    master_id     UUID NOT NULL REFERENCES masters(id),
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    phone         TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    area          TEXT NOT NULL DEFAULT '',
    city          TEXT NOT NULL DEFAULT '',
    state         TEXT NOT NULL DEFAULT '',
    country       TEXT NOT NULL DEFAULT '',
    pincode       TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS agency_clients (
    id              UUID PRIMARY KEY,
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL,
    agency_id       UUID NOT NULL REFERENCES agencies(id) ON DELETE CASCADE,
    name            TEXT NOT NULL,
    business_name   TEXT NOT NULL,
    business_email  TEXT NOT NULL UNIQUE,
    whatsapp_number TEXT NOT NULL DEFAULT '',
    password_hash   TEXT NOT NULL,
    area            TEXT NOT NULL DEFAULT '',
    city            TEXT NOT NULL DEFAULT '',
    state           TEXT NOT NULL DEFAULT '',
    country         TEXT NOT NULL DEFAULT '',
    pincode         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS devices (
    id           UUID PRIMARY KEY,
    created_at   TIMESTAMPTZ NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL,
    uuid         TEXT NOT NULL UNIQUE,
    name         TEXT NOT NULL,
    model        TEXT NOT NULL,
    size         TEXT NOT NULL,
    latitude     DOUBLE PRECISION NOT NULL,
    longitude    DOUBLE PRECISION NOT NULL,
    api_endpoint TEXT NOT NULL,
    public_key   TEXT NOT NULL UNIQUE,
    secret_key   TEXT NOT NULL UNIQUE,
    status       TEXT NOT NULL DEFAULT 'INACTIVE',
    master_id    UUID NOT NULL REFERENCES masters(id),
    agency_id    UUID NOT NULL REFERENCES agencies(id),
    client_id    UUID REFERENCES agency_clients(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS ads (
    id         UUID PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    agency_id  UUID NOT NULL REFERENCES agencies(id) ON DELETE CASCADE,
    title      TEXT NOT NULL,
    file_url   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS assignments (
    id         UUID PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    client_id  UUID NOT NULL REFERENCES agency_clients(id) ON DELETE CASCADE,
    device_id  UUID NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
    ad_id      UUID NOT NULL REFERENCES ads(id) ON DELETE CASCADE,
    start_time TIMESTAMPTZ NOT NULL,
    end_time   TIMESTAMPTZ NOT NULL,
    CHECK (start_time < end_time),
    CONSTRAINT assignments_no_overlap EXCLUDE USING gist (
        device_id WITH =,
        tstzrange(start_time, end_time) WITH &&
    )
);

CREATE SEQUENCE IF NOT EXISTS invoice_number_seq START 1;

CREATE TABLE IF NOT EXISTS bills (
    id             UUID PRIMARY KEY,
    created_at     TIMESTAMPTZ NOT NULL,
    agency_id      UUID NOT NULL REFERENCES agencies(id),
    client_id      UUID NOT NULL REFERENCES agency_clients(id),
    from_date      TIMESTAMPTZ NOT NULL,
    to_date        TIMESTAMPTZ NOT NULL,
    invoice_number TEXT NOT NULL,
    total_price    DOUBLE PRECISION NOT NULL,
    status         TEXT NOT NULL DEFAULT 'PENDING'
);

-- ad_id and device_id are deliberately not foreign keys: bills must
-- survive later deletion of the ad or device they were cut from.
CREATE TABLE IF NOT EXISTS bill_items (
    id          UUID PRIMARY KEY,
    bill_id     UUID NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
    ad_id       UUID NOT NULL,
    device_id   UUID NOT NULL,
    play_count  INTEGER NOT NULL,
    unit_price  DOUBLE PRECISION NOT NULL,
    total_price DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS client_complaints (
    id         UUID PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    client_id  UUID NOT NULL REFERENCES agency_clients(id) ON DELETE CASCADE,
    agency_id  UUID NOT NULL REFERENCES agencies(id) ON DELETE CASCADE,
    message    TEXT NOT NULL,
    reply      TEXT NOT NULL DEFAULT '',
    status     TEXT NOT NULL DEFAULT 'PENDING'
);

CREATE TABLE IF NOT EXISTS agency_complaints (
    id         UUID PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    agency_id  UUID NOT NULL REFERENCES agencies(id) ON DELETE CASCADE,
    master_id  UUID NOT NULL REFERENCES masters(id) ON DELETE CASCADE,
    message    TEXT NOT NULL,
    reply      TEXT NOT NULL DEFAULT '',
    status     TEXT NOT NULL DEFAULT 'PENDING'
);

CREATE INDEX IF NOT EXISTS idx_assignments_device_time ON assignments (device_id, start_time, end_time);
CREATE INDEX IF NOT EXISTS idx_assignments_client ON assignments (client_id);
CREATE INDEX IF NOT EXISTS idx_bills_agency ON bills (agency_id, from_date);
`

// Migrate applies the schema to the connected database.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}
