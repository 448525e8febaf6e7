package app

import (
	"fmt"
	"log"
	"time"

	"nesemu/internal/audio"
	"nesemu/internal/bus"
)

// RunMode selects how Update advances the machine
type RunMode int

const (
	// ModePaused leaves the machine alone; only explicit steps run it
	ModePaused RunMode = iota
	// ModeRunning runs whole frames paced to the target frame rate
	ModeRunning
)

func (m RunMode) String() string {
	if m == ModeRunning {
		return "running"
	}
	return "paused"
}

// maxCatchUpFrames bounds the frames run by one Update after a stall
const maxCatchUpFrames = 2

// SampleSink receives emitted audio samples
type SampleSink interface {
	Push(sample float64)
}

// SampleWriter persists emitted audio samples
type SampleWriter interface {
	Write(sample float64) error
}

// Emulator manages the emulation loop and timing
type Emulator struct {
	bus    *bus.Bus
	config *Config
	mode   RunMode

	// Frame pacing
	lastUpdateTime  time.Time
	accumulatedTime time.Duration
	targetFrameTime time.Duration

	// Audio path: samples are DC filtered, then queued and recorded
	filter   *audio.DCBlocker
	sink     SampleSink
	recorder SampleWriter

	// Performance monitoring
	emulationTimes *CircularTimingBuffer
	frameCount     uint64
	sampleCount    uint64
}

// NewEmulator creates a new emulator driving b
func NewEmulator(b *bus.Bus, config *Config) *Emulator {
	frameRate := config.Emulation.FrameRate
	if frameRate <= 0 {
		frameRate = 60.0
	}

	e := &Emulator{
		bus:             b,
		config:          config,
		targetFrameTime: time.Duration(float64(time.Second) / frameRate),
		filter:          audio.NewDCBlocker(audio.DefaultDCPole),
		emulationTimes:  NewCircularTimingBuffer(180), // 3 seconds of history
		lastUpdateTime:  time.Now(),
	}
	if !config.Emulation.StartPaused {
		e.mode = ModeRunning
	}
	return e
}

// SetAudioOutput installs the sample destinations; either may be nil
func (e *Emulator) SetAudioOutput(sink SampleSink, recorder SampleWriter) {
	e.sink = sink
	e.recorder = recorder
}

// Mode returns the current run mode
func (e *Emulator) Mode() RunMode {
	return e.mode
}

// SetMode switches run mode. Entering ModeRunning restarts pacing so the
// paused interval is not caught up.
func (e *Emulator) SetMode(mode RunMode) {
	if mode == ModeRunning && e.mode != ModeRunning {
		e.lastUpdateTime = time.Now()
		e.accumulatedTime = 0
	}
	e.mode = mode
}

// TogglePause switches between running and paused
func (e *Emulator) TogglePause() {
	if e.mode == ModeRunning {
		e.SetMode(ModePaused)
	} else {
		e.SetMode(ModeRunning)
	}
}

// IsRunning reports whether Update advances the machine
func (e *Emulator) IsRunning() bool {
	return e.mode == ModeRunning
}

// Update runs as many frames as the wall clock owes since the last call
func (e *Emulator) Update() error {
	now := time.Now()
	elapsed := now.Sub(e.lastUpdateTime)
	e.lastUpdateTime = now
	return e.advance(elapsed)
}

// advance adds elapsed to the pacing budget and runs the frames it pays
// for. A long stall is forgotten rather than replayed.
func (e *Emulator) advance(elapsed time.Duration) error {
	if e.mode != ModeRunning {
		return nil
	}

	e.accumulatedTime += elapsed
	frames := 0
	for e.accumulatedTime >= e.targetFrameTime {
		if frames == maxCatchUpFrames {
			e.accumulatedTime = 0
			break
		}
		if err := e.StepFrame(); err != nil {
			return err
		}
		e.accumulatedTime -= e.targetFrameTime
		frames++
	}
	return nil
}

// StepFrame runs until the PPU completes a frame and the CPU finishes its
// current instruction
func (e *Emulator) StepFrame() error {
	start := time.Now()

	var err error
	for !e.bus.PPU.FrameComplete() {
		err = e.clock(err)
	}
	for {
		err = e.clock(err)
		if e.bus.CPU.Complete() {
			break
		}
	}
	e.bus.PPU.ClearFrameComplete()

	e.frameCount++
	e.emulationTimes.Add(time.Since(start))
	return err
}

// StepInstruction finishes the current instruction and runs the next one
func (e *Emulator) StepInstruction() error {
	var err error
	for {
		err = e.clock(err)
		if e.bus.CPU.Complete() {
			break
		}
	}
	for {
		err = e.clock(err)
		if !e.bus.CPU.Complete() {
			break
		}
	}
	return err
}

// clock ticks the bus once and forwards a ready sample. The first
// recording error is kept and the recorder is dropped.
func (e *Emulator) clock(prev error) error {
	if !e.bus.Clock() {
		return prev
	}

	e.sampleCount++
	sample := e.filter.Process(e.bus.AudioSample())
	if e.sink != nil {
		e.sink.Push(sample)
	}
	if e.recorder != nil {
		if err := e.recorder.Write(sample); err != nil {
			log.Printf("[AUDIO] Recording stopped: %v", err)
			e.recorder = nil
			if prev == nil {
				return fmt.Errorf("record audio: %w", err)
			}
		}
	}
	return prev
}

// Reset resets the machine and the audio path
func (e *Emulator) Reset() {
	e.bus.Reset()
	e.filter.Reset()
	if q, ok := e.sink.(*audio.SampleQueue); ok {
		q.Clear()
	}
	e.accumulatedTime = 0
	e.lastUpdateTime = time.Now()
	e.emulationTimes.Reset()
}

// GetFrameCount returns the number of frames run by this emulator
func (e *Emulator) GetFrameCount() uint64 {
	return e.frameCount
}

// GetSampleCount returns the number of audio samples emitted
func (e *Emulator) GetSampleCount() uint64 {
	return e.sampleCount
}

// GetTargetFrameTime returns the target frame duration
func (e *Emulator) GetTargetFrameTime() time.Duration {
	return e.targetFrameTime
}

// GetAverageFrameTime returns the mean host time spent emulating a frame
func (e *Emulator) GetAverageFrameTime() time.Duration {
	return e.emulationTimes.GetAverage()
}

// GetEmulationSpeed returns how many frames could run per target frame
// time at the measured cost, or 0 before any frame has run
func (e *Emulator) GetEmulationSpeed() float64 {
	avg := e.emulationTimes.GetAverage()
	if avg == 0 {
		return 0
	}
	return float64(e.targetFrameTime) / float64(avg)
}

// CircularTimingBuffer keeps the most recent durations
type CircularTimingBuffer struct {
	buffer   []time.Duration
	index    int
	size     int
	capacity int
}

// NewCircularTimingBuffer creates a buffer holding up to capacity samples
func NewCircularTimingBuffer(capacity int) *CircularTimingBuffer {
	return &CircularTimingBuffer{
		buffer:   make([]time.Duration, capacity),
		capacity: capacity,
	}
}

// Add records a duration, overwriting the oldest when full
func (ctb *CircularTimingBuffer) Add(duration time.Duration) {
	ctb.buffer[ctb.index] = duration
	ctb.index = (ctb.index + 1) % ctb.capacity
	if ctb.size < ctb.capacity {
		ctb.size++
	}
}

// GetAverage returns the mean of the stored durations
func (ctb *CircularTimingBuffer) GetAverage() time.Duration {
	if ctb.size == 0 {
		return 0
	}

	var total time.Duration
	for i := 0; i < ctb.size; i++ {
		total += ctb.buffer[i]
	}
	return total / time.Duration(ctb.size)
}

// Len returns the number of stored durations
func (ctb *CircularTimingBuffer) Len() int {
	return ctb.size
}

// Reset empties the buffer
func (ctb *CircularTimingBuffer) Reset() {
	ctb.index = 0
	ctb.size = 0
}
