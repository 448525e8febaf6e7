package audio

import (
	"fmt"
	"log"
	"time"

	ebitenaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Player streams a SampleQueue through ebiten's audio context
type Player struct {
	context *ebitenaudio.Context
	player  *ebitenaudio.Player
	queue   *SampleQueue
}

// NewPlayer binds queue to a new audio context at sampleRate. Only one
// context may exist per process.
func NewPlayer(sampleRate int, volume float64, buffer time.Duration, queue *SampleQueue) (*Player, error) {
	ctx := ebitenaudio.CurrentContext()
	if ctx == nil {
		ctx = ebitenaudio.NewContext(sampleRate)
	} else if ctx.SampleRate() != sampleRate {
		return nil, fmt.Errorf("audio context already running at %d Hz", ctx.SampleRate())
	}

	p, err := ctx.NewPlayer(queue)
	if err != nil {
		return nil, fmt.Errorf("create audio player: %w", err)
	}
	if buffer > 0 {
		p.SetBufferSize(buffer)
	}
	p.SetVolume(volume)

	log.Printf("[AUDIO] Player ready: %d Hz, buffer %v, volume %.2f", sampleRate, buffer, volume)
	return &Player{context: ctx, player: p, queue: queue}, nil
}

// Play starts or resumes playback
func (p *Player) Play() {
	p.player.Play()
}

// Pause stops playback and drops queued samples
func (p *Player) Pause() {
	p.player.Pause()
	p.queue.Clear()
}

// IsPlaying reports whether the stream is running
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

// SetVolume sets the output volume in [0, 1]
func (p *Player) SetVolume(volume float64) {
	p.player.SetVolume(volume)
}

// Close stops the stream and releases the player
func (p *Player) Close() error {
	dropped, underrun := p.queue.Stats()
	log.Printf("[AUDIO] Closing player (dropped %d samples, padded %d frames)", dropped, underrun)
	return p.player.Close()
}
