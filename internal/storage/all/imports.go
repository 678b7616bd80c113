// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each backend, which register their
// factories and DDL bootstrappers with the storage package:
//
//   - "sqlite"   (flowprep/internal/storage/sqlite)
//   - "postgres" (flowprep/internal/storage/postgres)
//   - "mssql"    (flowprep/internal/storage/mssql)
//   - "csv"      (flowprep/internal/storage/csvdir)
//
// Typical usage:
//
//	import _ "flowprep/internal/storage/all"
//
//	sink := storage.Sink{Kind: cfg.Storage.Kind, DSN: cfg.Storage.DSN}
//	n, err := sink.Write(ctx, "reduced", res.Reduced)
package all

import (
	_ "flowprep/internal/storage/csvdir"
	_ "flowprep/internal/storage/mssql"
	_ "flowprep/internal/storage/postgres"
	_ "flowprep/internal/storage/sqlite"
)
