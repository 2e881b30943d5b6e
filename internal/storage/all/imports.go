// Package all wires the built-in sinks into the storage factory.
//
// Importing it for side effects registers the following kinds:
//
//   - "csv"      (cardetl/internal/storage/csvfile)
//   - "postgres" (cardetl/internal/storage/postgres)
//   - "sqlite"   (cardetl/internal/storage/sqlite)
//   - "mssql"    (cardetl/internal/storage/mssql)
//   - "mysql"    (cardetl/internal/storage/mysql)
//
// A binary that needs only a subset can import the backends directly instead.
package all

import (
	_ "cardetl/internal/storage/csvfile"
	_ "cardetl/internal/storage/mssql"
	_ "cardetl/internal/storage/mysql"
	_ "cardetl/internal/storage/postgres"
	_ "cardetl/internal/storage/sqlite"
)
