// Package hood holds the modern firmware wire protocol: the Status model, the 31-byte
// command codec, the status decoder and the variant detector. Everything here is pure;
// I/O belongs to the client and connmgr packages.
package hood
