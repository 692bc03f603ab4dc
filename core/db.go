package core

// Dialect engines
const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite3"
)

// UseIndexPlaceholders reports whether the engine uses `$1` style bind vars instead of `?`.
func UseIndexPlaceholders(engine string) bool {
	return engine == EnginePostgres
}
