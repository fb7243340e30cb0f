// Package urls holds the documentation links printed by the CLI, so they can
// be updated in one place.
package urls
