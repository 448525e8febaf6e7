package audio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleQueue_FIFO(t *testing.T) {
	q := NewSampleQueue(8)
	for i := 0; i < 5; i++ {
		q.Push(float64(i) / 10)
	}
	assert.Equal(t, 5, q.Len())

	for i := 0; i < 5; i++ {
		v, ok := q.Pop()
		require.True(t, ok)
		assert.InDelta(t, float64(i)/10, v, 1e-9)
	}
	assert.Equal(t, 0, q.Len())
}

func TestSampleQueue_OverflowDropsOldest(t *testing.T) {
	q := NewSampleQueue(4)
	for i := 0; i < 6; i++ {
		q.Push(float64(i))
	}

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	dropped, _ := q.Stats()
	assert.Equal(t, uint64(2), dropped)
}

func TestSampleQueue_UnderrunRepeatsLastSample(t *testing.T) {
	q := NewSampleQueue(4)
	q.Push(0.25)
	_, _ = q.Pop()

	v, ok := q.Pop()
	assert.False(t, ok)
	assert.Equal(t, 0.25, v)
}

func TestSampleQueue_ReadProducesStereoPCM(t *testing.T) {
	q := NewSampleQueue(16)
	q.Push(1.0)
	q.Push(-1.0)
	q.Push(0.0)
	q.Push(2.0) // clamped

	buf := make([]byte, 4*bytesPerFrame+3)
	n, err := q.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 4*bytesPerFrame, n)

	want := []int16{32767, -32767, 0, 32767}
	for i, w := range want {
		left := int16(binary.LittleEndian.Uint16(buf[i*bytesPerFrame:]))
		right := int16(binary.LittleEndian.Uint16(buf[i*bytesPerFrame+2:]))
		assert.Equal(t, w, left, "frame %d left", i)
		assert.Equal(t, w, right, "frame %d right", i)
	}
}

func TestSampleQueue_ReadPadsOnUnderrun(t *testing.T) {
	q := NewSampleQueue(16)
	q.Push(0.5)

	buf := make([]byte, 3*bytesPerFrame)
	n, err := q.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	first := int16(binary.LittleEndian.Uint16(buf[0:]))
	last := int16(binary.LittleEndian.Uint16(buf[2*bytesPerFrame:]))
	assert.Equal(t, first, last)

	_, underrun := q.Stats()
	assert.Equal(t, uint64(2), underrun)
}

func TestSampleQueue_ConcurrentAccess(t *testing.T) {
	q := NewSampleQueue(1024)
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 10000; i++ {
			q.Push(0.1)
		}
	}()
	go func() {
		defer wg.Done()
		buf := make([]byte, 256)
		for i := 0; i < 1000; i++ {
			_, _ = q.Read(buf)
		}
	}()
	wg.Wait()

	assert.LessOrEqual(t, q.Len(), 1024)
}

func TestDCBlocker_RemovesOffset(t *testing.T) {
	f := NewDCBlocker(0.995)

	var y float64
	for i := 0; i < 20000; i++ {
		y = f.Process(0.6)
	}
	assert.InDelta(t, 0.0, y, 1e-3)

	f.Reset()
	assert.InDelta(t, 0.6, f.Process(0.6), 1e-9)
}

func TestDCBlocker_PassesSquareWave(t *testing.T) {
	f := NewDCBlocker(0.995)

	// Warm up on a 441Hz square between 0.2 and 0.4
	var lo, hi float64 = math.Inf(1), math.Inf(-1)
	for i := 0; i < 44100; i++ {
		x := 0.2
		if (i/50)%2 == 0 {
			x = 0.4
		}
		y := f.Process(x)
		if i > 40000 {
			lo = math.Min(lo, y)
			hi = math.Max(hi, y)
		}
	}

	assert.Greater(t, hi-lo, 0.15, "amplitude should survive the filter")
	assert.InDelta(t, 0.0, (hi+lo)/2, 0.02, "output should be centred")
}

func TestRecorder_WritesWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	rec, err := NewRecorder(path, 22050)
	require.NoError(t, err)

	const total = recorderChunk + 100
	for i := 0; i < total; i++ {
		require.NoError(t, rec.Write(math.Sin(float64(i)/10)*0.5))
	}
	assert.Equal(t, total, rec.Samples())
	require.NoError(t, rec.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())

	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, 1, buf.Format.NumChannels)
	assert.Equal(t, 22050, buf.Format.SampleRate)
	assert.Len(t, buf.Data, total)
	assert.Equal(t, int(toPCM16(math.Sin(1)*0.5)), buf.Data[10])
}

func TestNewRecorder_BadPath(t *testing.T) {
	_, err := NewRecorder(filepath.Join(t.TempDir(), "missing", "out.wav"), 44100)
	assert.Error(t, err)
}
