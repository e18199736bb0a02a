package audio

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/vi-pattern/event"
)

const (
	cueSampleRate = beep.SampleRate(44100)
	// maxVoices bounds concurrently mixed cues, extra cues are dropped
	maxVoices = 16
)

// Cue is a short sound bound to a world event
type Cue int

const (
	CueSpawn Cue = iota
	CueDestroy
	CueFault
	cueCount
)

// CuePlayer turns world events into short generated sounds
// Every method is a no-op until Initialize succeeds
type CuePlayer struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	played      [cueCount]int
	dropped     int
}

// NewCuePlayer creates a player with an empty mixer
func NewCuePlayer() *CuePlayer {
	return &CuePlayer{mixer: &beep.Mixer{}}
}

// Initialize opens the speaker and starts the mixer
func (p *CuePlayer) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(cueSampleRate, cueSampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Cleanup silences pending cues
func (p *CuePlayer) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.initialized = false
}

// PlaySpawn plays a rising chirp pitched by prefab name
func (p *CuePlayer) PlaySpawn(prefab string) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prefab))
	base := 500 + float64(h.Sum32()%8)*70
	p.play(CueSpawn, beep.Take(cueSampleRate.N(60*time.Millisecond), NewChirpGenerator(cueSampleRate, base, base*1.8)))
}

// PlayDestroy plays a short noise burst
func (p *CuePlayer) PlayDestroy() {
	p.play(CueDestroy, beep.Take(cueSampleRate.N(120*time.Millisecond), NewBurstGenerator(cueSampleRate, 1)))
}

// PlayFault plays a low buzz
func (p *CuePlayer) PlayFault() {
	p.play(CueFault, beep.Take(cueSampleRate.N(150*time.Millisecond), NewBuzzGenerator(cueSampleRate, 120)))
}

func (p *CuePlayer) play(cue Cue, s beep.Streamer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	defer speaker.Unlock()
	if p.mixer.Len() >= maxVoices {
		p.dropped++
		return
	}
	p.mixer.Add(s)
	p.played[cue]++
}

// Consume plays the cue for each event it recognizes
func (p *CuePlayer) Consume(events []event.GameEvent) {
	for _, ev := range events {
		switch ev.Type {
		case event.EventEntitySpawned:
			var prefab string
			if pl, ok := ev.Payload.(*event.EntityPayload); ok {
				prefab = pl.Prefab
			}
			p.PlaySpawn(prefab)
		case event.EventEntityDestroyed:
			p.PlayDestroy()
		case event.EventPatternFailed:
			p.PlayFault()
		}
	}
}

// Played returns how many times cue reached the mixer
func (p *CuePlayer) Played(cue Cue) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played[cue]
}

// Dropped returns how many cues were skipped for lack of voices
func (p *CuePlayer) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}
