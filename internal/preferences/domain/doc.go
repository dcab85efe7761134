// Package domain defines the persisted user preferences of breathe: the last
// selected exercise, the master ambient volume, and which ambient channels
// are enabled. Session history is not stored.
package domain
