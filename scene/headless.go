package scene

import "sync"

// HeadlessStats are the counters of a Headless factory.
type HeadlessStats struct {
	SpritesCreated int `json:"sprites_created"`
	SpritesLive    int `json:"sprites_live"`
	BodiesCreated  int `json:"bodies_created"`
	BodiesLive     int `json:"bodies_live"`
	DoubleReleases int `json:"double_releases"`
}

// Headless is an in-memory Factory. It renders nothing but tracks every
// handle it hands out, so leaks and double releases show up in Stats.
type Headless struct {
	mu      sync.Mutex
	nextID  uint64
	sprites map[uint64]*headlessSprite
	bodies  map[uint64]*headlessBody
	stats   HeadlessStats
}

// NewHeadless creates an empty headless backend.
func NewHeadless() *Headless {
	return &Headless{
		sprites: make(map[uint64]*headlessSprite),
		bodies:  make(map[uint64]*headlessBody),
	}
}

type headlessSprite struct {
	owner *Headless
	id    uint64
	spec  SpriteSpec
}

func (s *headlessSprite) ID() uint64       { return s.id }
func (s *headlessSprite) Spec() SpriteSpec { return s.spec }

func (s *headlessSprite) Release() {
	h := s.owner
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sprites[s.id]; !ok {
		h.stats.DoubleReleases++
		return
	}
	delete(h.sprites, s.id)
	h.stats.SpritesLive--
}

type headlessBody struct {
	owner *Headless
	id    uint64
	spec  BodySpec
}

func (b *headlessBody) ID() uint64 { return b.id }

func (b *headlessBody) Release() {
	h := b.owner
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.bodies[b.id]; !ok {
		h.stats.DoubleReleases++
		return
	}
	delete(h.bodies, b.id)
	h.stats.BodiesLive--
}

// NewSprite implements Factory.
func (h *Headless) NewSprite(spec SpriteSpec) Sprite {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	s := &headlessSprite{owner: h, id: h.nextID, spec: spec}
	h.sprites[s.id] = s
	h.stats.SpritesCreated++
	h.stats.SpritesLive++
	return s
}

// NewBody implements Factory.
func (h *Headless) NewBody(spec BodySpec) Body {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	b := &headlessBody{owner: h, id: h.nextID, spec: spec}
	h.bodies[b.id] = b
	h.stats.BodiesCreated++
	h.stats.BodiesLive++
	return b
}

// Stats returns a snapshot of the counters.
func (h *Headless) Stats() HeadlessStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}

// LiveSprite returns the spec of a live sprite.
func (h *Headless) LiveSprite(id uint64) (SpriteSpec, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sprites[id]
	if !ok {
		return SpriteSpec{}, false
	}
	return s.spec, true
}
