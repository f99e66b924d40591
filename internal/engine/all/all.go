// Package all registers every engine backend with the engine registry.
package all

import (
	_ "profiler/internal/engine/mssql"
	_ "profiler/internal/engine/postgres"
	_ "profiler/internal/engine/sqlite"
)
