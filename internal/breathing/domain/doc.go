// Package domain defines breathing exercises and the errors raised when a host
// hands the session engine an exercise it cannot run.
package domain
