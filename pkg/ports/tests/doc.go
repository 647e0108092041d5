// Package tests holds reusable contract suites for catalog source adapters.
package tests
