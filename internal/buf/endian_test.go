package buf

import "testing"

func TestEndianRoundTrip(t *testing.T) {
	b := make([]byte, 8)

	PutU32LE(b, 0x01020304)
	if b[0] != 0x04 || U32LE(b) != 0x01020304 {
		t.Fatalf("U32 round trip failed: % x", b)
	}
	PutU64LE(b, 0xefcdab8967452301)
	if U64LE(b) != 0xefcdab8967452301 || U32LE(b[4:]) != 0xefcdab89 {
		t.Fatalf("U64 round trip failed: % x", b)
	}

	short := []byte{0xAA}
	if U32LE(short) != 0 || U64LE(short) != 0 {
		t.Fatalf("short reads should return 0")
	}
}
