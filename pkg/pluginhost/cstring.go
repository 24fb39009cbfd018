package pluginhost

import "unsafe"

// cString returns a NUL-terminated copy of b suitable for passing across
// the C-ABI boundary, along with a pointer to its first byte. The backing
// array is kept alive by the returned slice for the duration of the call;
// callers must not let it escape past the C call it's used for.
func cString(b []byte) (*byte, []byte) {
	buf := make([]byte, len(b)+1)
	copy(buf, b)
	return &buf[0], buf
}

// cBytes reads a NUL-terminated C string into a freshly allocated Go byte
// slice (excluding the terminator). Returns nil if p is nil.
func cBytes(p *byte) []byte {
	if p == nil {
		return nil
	}

	n := 0
	for {
		b := *(*byte)(unsafe.Add(unsafe.Pointer(p), n))
		if b == 0 {
			break
		}
		n++
	}

	out := make([]byte, n)
	copy(out, unsafe.Slice(p, n))
	return out
}
