// Package constants holds configuration provider identifiers shared
// between config validation and infra provider selection.
package constants

const (
	// PubSubProviderLocal publishes results to a local HTTP endpoint.
	PubSubProviderLocal = "local"
	// PubSubProviderGoogle publishes results to Google Cloud Pub/Sub.
	PubSubProviderGoogle = "google"

	// AreasProviderBlob loads the boundary dataset from a blob bucket URL.
	AreasProviderBlob = "blob"
	// AreasProviderPostgres loads the boundary dataset from a Postgres table.
	AreasProviderPostgres = "postgres"
)
