package storage

type (
	// DBConfiguration describes configuration for DB. Only the in-memory
	// backend is built into this tree; the ledger core addresses storage
	// through the Store interface regardless of what's configured here.
	DBConfiguration struct {
		Type string `yaml:"Type"`
	}
)
