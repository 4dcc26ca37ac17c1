// Package store persists tracking sessions, their events and the generated
// highlights to a SQLite database.
package store
