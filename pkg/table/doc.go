// Package table is the record browser every casedesk screen is built on.
//
// A Model holds one collection's records, sorts and filters them into the
// visible rows on every render, and routes row actions (edit, delete, status
// change) through a Coordinator that allows at most one in-flight remote
// operation per record. Remote calls run inside tea.Cmd goroutines; their
// results come back as messages and are applied in Update, which is the only
// place records change.
package table
