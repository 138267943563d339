// ABOUTME: SQLite database schema for the product catalog and conversation transcripts
// ABOUTME: Every statement is idempotent so it runs on each open
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Product catalog snapshot
CREATE TABLE IF NOT EXISTS products (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    price REAL NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL,
    image TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

-- Conversation transcripts, one row per message
CREATE TABLE IF NOT EXISTS transcript_messages (
    session_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (session_id, seq)
);
`
