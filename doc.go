// Package headwater resolves a working database connection for data
// pipelines without the caller having to know which runtime environment
// the pipeline is executing in.
//
// Detection runs a fixed priority chain: an explicit SQLite override, a
// distributed Spark/Databricks session, a notebook-hosted secret sheet, a
// dotenv file, and finally an ephemeral test database that degrades to a
// local SQLite file so there is always something to run against.
//
// Each source is probed for availability before it is committed to. A
// source that is merely absent is skipped silently; a source that is
// present and active but broken raises, so real misconfiguration is never
// hidden behind a silent fallback.
package headwater
