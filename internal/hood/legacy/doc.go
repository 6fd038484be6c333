// Package legacy speaks to hoods that predate the binary GATT protocol. State comes
// from broadcast manufacturer data or from ASCII read on the TX characteristic;
// commands are percent-encoded ASCII written to RX.
package legacy
