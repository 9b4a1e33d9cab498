package store

// SchemaVersion gates the local schema. Opening a database whose stored
// version differs is resolved by dropping and recreating every table, an
// explicit, accepted data-loss path on migration. Cached audio can be
// re-synthesized and progress re-converges from the remote store; neither is
// worth a field-level migration.
const SchemaVersion = 1

const Schema = `
CREATE TABLE IF NOT EXISTS audio_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	content_key TEXT NOT NULL,
	source_text TEXT NOT NULL DEFAULT '',
	payload TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- content_key is a secondary, deliberately non-unique index: several items
-- may share one key (e.g. the same verse synthesized with another voice).
CREATE INDEX IF NOT EXISTS idx_audio_items_content_key ON audio_items(content_key);
CREATE INDEX IF NOT EXISTS idx_audio_items_created_at ON audio_items(created_at);

CREATE TABLE IF NOT EXISTS progress (
	level INTEGER PRIMARY KEY,
	completed_units INTEGER NOT NULL DEFAULT 0,
	accuracy_score INTEGER NOT NULL DEFAULT 0,
	last_updated DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// dropAll removes every table so the schema can be recreated from scratch.
const dropAll = `
DROP TABLE IF EXISTS audio_items;
DROP TABLE IF EXISTS progress;
DROP TABLE IF EXISTS settings;
`
