// Package scoring implements the lead qualification state machine.
//
// Everything here is a pure function of its inputs: no I/O, no clocks, no shared state.
// Callers own persistence of the returned Session.
package scoring
