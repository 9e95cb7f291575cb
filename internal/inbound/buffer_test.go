package inbound

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestRead_EmptyBufferTimesOutWithZero(t *testing.T) {
	b := New()
	out := make([]byte, 8)
	n := b.Read(out, false, 30*time.Millisecond)
	assert.Equal(t, 0, n)
}

func TestRead_DestructiveConsumesBytes(t *testing.T) {
	b := New()
	b.Write([]byte("hello"))

	out := make([]byte, 8)
	n := b.Read(out, false, time.Second)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(out[:n]))
	assert.Equal(t, 0, b.Len())
}

func TestRead_PeekLeavesBytesInPlace(t *testing.T) {
	b := New()
	b.Write([]byte("hello"))

	out := make([]byte, 8)
	n := b.Read(out, true, time.Second)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, b.Len())

	n2 := b.Read(out, false, time.Second)
	assert.Equal(t, 5, n2)
	assert.Equal(t, 0, b.Len())
}

func TestRead_WaitsForLateArrival(t *testing.T) {
	b := New()
	go func() {
		time.Sleep(20 * time.Millisecond)
		b.Write([]byte("late"))
	}()

	out := make([]byte, 8)
	n := b.Read(out, false, 500*time.Millisecond)
	assert.Equal(t, 4, n)
	assert.Equal(t, "late", string(out[:n]))
}

func TestRead_TruncatesToOutputSize(t *testing.T) {
	b := New()
	b.Write([]byte("abcdef"))

	out := make([]byte, 3)
	n := b.Read(out, false, time.Second)
	assert.Equal(t, 3, n)
	assert.Equal(t, "abc", string(out))
	assert.Equal(t, 3, b.Len())
}

// Property: writes are never reordered, and a destructive read followed by
// another destructive read always reconstructs the original write order.
func TestPropertyRead_PreservesWriteOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chunks := rapid.SliceOfN(rapid.SliceOfN(rapid.Byte(), 0, 16), 0, 8).Draw(t, "chunks")

		b := New()
		var want []byte
		for _, c := range chunks {
			b.Write(c)
			want = append(want, c...)
		}

		var got []byte
		out := make([]byte, 4)
		for {
			n := b.Read(out, false, 20*time.Millisecond)
			if n == 0 {
				break
			}
			got = append(got, out[:n]...)
		}

		if string(got) != string(want) {
			t.Fatalf("read order %v does not match write order %v", got, want)
		}
	})
}
