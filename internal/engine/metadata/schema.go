package metadata

import (
	"database/sql"
	"fmt"
)

const storeSchemaVersion = 1

func migrateStoreSchema(db *sql.DB) error {
	var version int
	_ = db.QueryRow(`PRAGMA user_version`).Scan(&version)

	if version == 0 {
		_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS namespaces (
  namespace    TEXT    NOT NULL,
  version      TEXT    NOT NULL DEFAULT '',
  format       INTEGER NOT NULL,
  dependencies TEXT    NOT NULL DEFAULT '[]',
  imported_at  INTEGER NOT NULL DEFAULT (unixepoch()),
  PRIMARY KEY (namespace, version)
);

CREATE TABLE IF NOT EXISTS symbols (
  namespace TEXT NOT NULL,
  version   TEXT NOT NULL DEFAULT '',
  name      TEXT NOT NULL,
  kind      TEXT NOT NULL,
  payload   BLOB NOT NULL,
  PRIMARY KEY (namespace, version, name),
  FOREIGN KEY (namespace, version) REFERENCES namespaces(namespace, version) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_symbols_kind ON symbols(namespace, kind);
`)
		if err != nil {
			return fmt.Errorf("create metadata schema: %w", err)
		}
		version = storeSchemaVersion
		if _, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, version)); err != nil {
			return fmt.Errorf("set metadata schema version: %w", err)
		}
	}

	if version > storeSchemaVersion {
		return fmt.Errorf("metadata store schema version %d is newer than supported %d", version, storeSchemaVersion)
	}
	return nil
}
