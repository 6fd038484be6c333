// Package device defines the radio-neutral view of a BLE peer used by the hood
// protocol layer:
//   - Peer, the advertisement-level identity of a device
//   - Transport and Session, a minimal GATT read/write link
//   - the connection error taxonomy shared by every transport implementation
//
// The go-ble backed implementation lives in the go-ble subpackage.
package device
