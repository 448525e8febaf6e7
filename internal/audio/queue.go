// Package audio carries APU samples from the emulation loop to the host:
// a locked queue drained by the ebiten audio player, a DC-blocking filter
// and an optional WAV recorder.
package audio

import (
	"encoding/binary"
	"sync"
)

// bytesPerFrame is one 16-bit little-endian stereo frame
const bytesPerFrame = 4

// SampleQueue is a bounded FIFO of mono samples. The emulation goroutine
// pushes and the audio player's goroutine reads.
type SampleQueue struct {
	mu      sync.Mutex
	samples []float64
	head    int
	size    int
	last    float64

	dropped  uint64
	underrun uint64
}

// NewSampleQueue creates a queue holding at most capacity samples
func NewSampleQueue(capacity int) *SampleQueue {
	if capacity <= 0 {
		capacity = 4096
	}
	return &SampleQueue{samples: make([]float64, capacity)}
}

// Push appends a sample, discarding the oldest one when full
func (q *SampleQueue) Push(sample float64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == len(q.samples) {
		q.head = (q.head + 1) % len(q.samples)
		q.size--
		q.dropped++
	}
	q.samples[(q.head+q.size)%len(q.samples)] = sample
	q.size++
}

// Pop removes the oldest sample. When the queue is empty it repeats the
// last sample and reports false.
func (q *SampleQueue) Pop() (float64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pop()
}

func (q *SampleQueue) pop() (float64, bool) {
	if q.size == 0 {
		return q.last, false
	}
	sample := q.samples[q.head]
	q.head = (q.head + 1) % len(q.samples)
	q.size--
	q.last = sample
	return sample, true
}

// Len returns the number of queued samples
func (q *SampleQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Stats returns how many samples were dropped on overflow and how many
// frames were padded on underrun
func (q *SampleQueue) Stats() (dropped, underrun uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped, q.underrun
}

// Clear drops all queued samples
func (q *SampleQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.head = 0
	q.size = 0
	q.last = 0
}

// Read implements io.Reader for the audio player. Each mono sample becomes
// one signed 16-bit stereo frame. Read never blocks: missing samples are
// padded with the last value played.
func (q *SampleQueue) Read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	frames := len(p) / bytesPerFrame
	for i := 0; i < frames; i++ {
		sample, ok := q.pop()
		if !ok {
			q.underrun++
		}
		v := uint16(toPCM16(sample))
		binary.LittleEndian.PutUint16(p[i*bytesPerFrame:], v)
		binary.LittleEndian.PutUint16(p[i*bytesPerFrame+2:], v)
	}
	return frames * bytesPerFrame, nil
}

// toPCM16 clamps a sample to [-1, 1] and scales it to int16
func toPCM16(sample float64) int16 {
	if sample > 1 {
		sample = 1
	} else if sample < -1 {
		sample = -1
	}
	return int16(sample * 32767)
}
