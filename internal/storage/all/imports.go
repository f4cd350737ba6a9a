// Package all links every built-in storage backend into the binary.
//
//	import _ "eda/internal/storage/all"
package all

import (
	_ "eda/internal/storage/mssql"
	_ "eda/internal/storage/postgres"
	_ "eda/internal/storage/sqlite"
)
