// Package model contains domain models shared across layers.
// Models carry no persistence tags and no business logic.
package model
