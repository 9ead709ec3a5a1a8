package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Amounts are stored as TEXT decimal strings to keep cent precision exact.
const schema = `
CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    partner_id TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (partner_id) REFERENCES members(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS festivals (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL UNIQUE,
    info TEXT NOT NULL DEFAULT '',
    creator_id TEXT,
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    is_closed INTEGER NOT NULL DEFAULT 0,
    update_info TEXT NOT NULL,
    modified_at INTEGER NOT NULL,
    FOREIGN KEY (creator_id) REFERENCES members(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS participants (
    festival_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    joined_at INTEGER NOT NULL,
    PRIMARY KEY (festival_id, member_id),
    FOREIGN KEY (festival_id) REFERENCES festivals(id) ON DELETE CASCADE,
    FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS invoices (
    id TEXT PRIMARY KEY,
    festival_id TEXT NOT NULL,
    title TEXT NOT NULL,
    amount TEXT NOT NULL,
    creditor_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (festival_id) REFERENCES festivals(id) ON DELETE CASCADE,
    FOREIGN KEY (creditor_id) REFERENCES members(id)
);

CREATE TABLE IF NOT EXISTS invoice_sharers (
    invoice_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (invoice_id, member_id),
    FOREIGN KEY (invoice_id) REFERENCES invoices(id) ON DELETE CASCADE,
    FOREIGN KEY (member_id) REFERENCES members(id)
);

CREATE TABLE IF NOT EXISTS transfers (
    id TEXT PRIMARY KEY,
    festival_id TEXT NOT NULL,
    recipient_id TEXT NOT NULL,
    payer_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    position INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (festival_id) REFERENCES festivals(id) ON DELETE CASCADE,
    FOREIGN KEY (recipient_id) REFERENCES members(id),
    FOREIGN KEY (payer_id) REFERENCES members(id)
);

CREATE INDEX IF NOT EXISTS idx_participants_festival_id ON participants(festival_id);
CREATE INDEX IF NOT EXISTS idx_invoices_festival_id ON invoices(festival_id);
CREATE INDEX IF NOT EXISTS idx_invoice_sharers_invoice_id ON invoice_sharers(invoice_id);
CREATE INDEX IF NOT EXISTS idx_transfers_festival_id ON transfers(festival_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
