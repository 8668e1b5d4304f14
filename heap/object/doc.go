// Package object builds the common runtime object shapes on top of a heap:
// strings, byte strings, tuples, growable lists and buffers with off-arena
// storage.
//
// Layouts (payload offsets, little-endian):
//
//	STRING  [0:8] xxh3 hash of the NFC bytes, [8:12] byte length, [12:] NFC UTF-8
//	BYTES   [0:4] byte length, [4:] bytes
//	TUPLE   HeapValue slots
//	LIST    slot 0 length (int), slot 1 backing TUPLE (or none)
//	BUFFER  [0:8] byte length; the bytes live off-arena in an attachment
package object
