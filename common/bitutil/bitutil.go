// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package bitutil implements fast bitwise operations on byte slices.
package bitutil

// XORBytes sets dst[i] = a[i] ^ b[i] for i in [0,n) where n = min(len(a),
// len(b)), and returns n.
func XORBytes(dst, a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dst[i] = a[i] ^ b[i]
	}
	return n
}

// ANDBytes sets dst[i] = a[i] & b[i] for i in [0,n) where n = min(len(a),
// len(b)), and returns n.
func ANDBytes(dst, a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dst[i] = a[i] & b[i]
	}
	return n
}

// ORBytes sets dst[i] = a[i] | b[i] for i in [0,n) where n = min(len(a),
// len(b)), and returns n.
func ORBytes(dst, a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dst[i] = a[i] | b[i]
	}
	return n
}

// TestBytes reports whether any byte in p is non-zero.
func TestBytes(p []byte) bool {
	for _, b := range p {
		if b != 0 {
			return true
		}
	}
	return false
}

// safeXORBytes, safeANDBytes, safeORBytes and safeTestBytes are the
// reference byte-at-a-time implementations the exported functions above
// are checked against in bitutil_test.go. go-ethereum keeps a faster
// machine-word path behind a build tag for these; this module only ever
// ANDs whole chunk-sized bitmap buffers a handful of times per query, so
// the byte loop above already is that path.
func safeXORBytes(dst, a, b []byte) int { return XORBytes(dst, a, b) }
func safeANDBytes(dst, a, b []byte) int { return ANDBytes(dst, a, b) }
func safeORBytes(dst, a, b []byte) int  { return ORBytes(dst, a, b) }
func safeTestBytes(p []byte) bool       { return TestBytes(p) }
