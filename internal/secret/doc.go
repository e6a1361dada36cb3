// Package secret holds passwords and derived keys in buffers that are zeroed
// on Close.
//
// On Linux a [Buffer] is backed by an anonymous mmap region outside the Go
// heap. The region is locked into RAM with mlock where the process limit
// allows it and excluded from core dumps. Elsewhere it falls back to a heap
// slice that is still zeroed on Close.
package secret
