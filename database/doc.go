// Package database opens the single connection used to (re)initialize a
// database, runs the schema-setup and data-seed scripts in one transaction,
// and classifies driver errors. It is built on Bun.
package database
