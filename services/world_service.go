package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"frontier-realm/server/logger"
	"frontier-realm/server/messages"
	"frontier-realm/server/models"
	"frontier-realm/server/persistence"
	"frontier-realm/server/scene"
	"frontier-realm/server/worldgen"
)

var (
	// ErrBlocked is returned when a move or teleport targets a cell that
	// cannot be walked on.
	ErrBlocked = errors.New("destination is not walkable")
	// ErrUnknownDirection is returned for a move direction that is not one
	// of the eight compass directions.
	ErrUnknownDirection = errors.New("unknown direction")
)

// teleportPreload names the preload region pinned around a teleport target.
const teleportPreload = "teleport"

// WorldConfig tunes the runtime services around a generated world.
type WorldConfig struct {
	Viewport          ViewportConfig
	ExplorationRadius int
	// ObjectiveTarget is the destroyed count that completes the objective;
	// zero means every structure.
	ObjectiveTarget int
	SweepInterval   time.Duration
	SampleInterval  time.Duration
}

// DefaultWorldConfig returns the standard runtime tuning.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Viewport:          DefaultViewportConfig(),
		ExplorationRadius: 8,
		SweepInterval:     5 * time.Second,
		SampleInterval:    10 * time.Second,
	}
}

// Broadcaster fans a message out to every connected client.
type Broadcaster interface {
	BroadcastToAll(msg interface{})
}

// DamageResult is the outcome of one damage event.
type DamageResult struct {
	ID        string `json:"id"`
	Known     bool   `json:"known"`
	Health    int    `json:"health"`
	Destroyed bool   `json:"destroyed"`
}

// FrameResult is everything one Frame call changed.
type FrameResult struct {
	Frame             uint64             `json:"frame"`
	Damage            []DamageResult     `json:"damage,omitempty"`
	Viewport          UpdateResult       `json:"viewport"`
	NewlyVisited      int                `json:"newly_visited"`
	Discovered        []string           `json:"discovered,omitempty"`
	Memory            models.MemoryStats `json:"memory"`
	ObjectiveComplete bool               `json:"objective_complete"`
}

// ObjectiveEvent records the moment the destruction objective completed.
type ObjectiveEvent struct {
	Destroyed   int       `json:"destroyed"`
	Target      int       `json:"target"`
	Frame       uint64    `json:"frame"`
	CompletedAt time.Time `json:"completed_at"`
}

// ExplorationSnapshot is the exploration state handed to consumers.
type ExplorationSnapshot struct {
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Count      int                `json:"count"`
	Visited    []models.Cell      `json:"-"`
	Structures []models.Structure `json:"structures"`
	SideAreas  []models.SideArea  `json:"side_areas"`
}

// StatsReport is the diagnostics view of a running session.
type StatsReport struct {
	SessionID    string               `json:"session_id"`
	Frames       uint64               `json:"frames"`
	Memory       models.MemoryStats   `json:"memory"`
	Materialized int                  `json:"materialized"`
	Visible      int                  `json:"visible"`
	Visited      int                  `json:"visited"`
	Destroyed    int                  `json:"destroyed"`
	Target       int                  `json:"target"`
	Completed    bool                 `json:"completed"`
	Preloads     []PreloadInfo        `json:"preloads"`
	Scene        *scene.HeadlessStats `json:"scene,omitempty"`
	Generation   worldgen.Report      `json:"generation"`
}

type damageEvent struct {
	id     string
	amount int
}

// WorldService owns one generated world and the runtime services around
// it. Every public method is safe for concurrent use.
type WorldService struct {
	world    *worldgen.World
	factory  scene.Factory
	cache    *ViewportCache
	registry *DestructibleRegistry
	tracker  *ExplorationTracker
	db       persistence.Storage
	cfg      WorldConfig

	sessionID   string
	startedAt   time.Time
	player      models.Cell
	pending     []damageEvent
	frames      uint64
	objective   *ObjectiveEvent
	newlyDone   bool
	outbox      []interface{}
	broadcaster Broadcaster

	worldMutex sync.Mutex
	log        *logrus.Entry
}

// NewWorldService wires the cache, registry and tracker around world and
// records the new session in db.
func NewWorldService(world *worldgen.World, factory scene.Factory, db persistence.Storage, cfg WorldConfig) *WorldService {
	if db == nil {
		db = persistence.Discard{}
	}
	grid := world.Grid
	ws := &WorldService{
		world:     world,
		factory:   factory,
		db:        db,
		cfg:       cfg,
		sessionID: uuid.NewString(),
		startedAt: time.Now().UTC(),
		player:    world.Start(),
	}
	ws.log = logger.Log.WithFields(logrus.Fields{"component": "world", "session": ws.sessionID})
	ws.cache = NewViewportCache(grid, factory, cfg.Viewport)
	ws.registry = NewDestructibleRegistry(world.Structures, grid, ws.cache, cfg.ObjectiveTarget)
	ws.tracker = NewExplorationTracker(grid.Width, grid.Height, cfg.ExplorationRadius)
	ws.registry.OnObjectiveComplete(ws.objectiveReached)

	if err := db.RecordSession(ws.summaryLocked()); err != nil {
		ws.log.WithError(err).Warn("Failed to record session start.")
	}
	ws.log.WithFields(logrus.Fields{
		"size":       world.Grid.Width,
		"structures": len(world.Structures),
		"target":     ws.registry.Target(),
	}).Info("World session started.")
	return ws
}

// objectiveReached runs inside ApplyDamage with the lock held.
func (ws *WorldService) objectiveReached(destroyed, target int) {
	ev := &ObjectiveEvent{Destroyed: destroyed, Target: target, Frame: ws.frames, CompletedAt: time.Now().UTC()}
	ws.objective = ev
	ws.newlyDone = true
	ws.outbox = append(ws.outbox, messages.BaseMessage{
		Type: messages.MessageTypeObjectiveComplete,
		Payload: messages.ObjectiveCompleteMessage{
			Destroyed: destroyed,
			Target:    target,
			Frame:     ev.Frame,
		},
	})
	ws.log.WithFields(logrus.Fields{"destroyed": destroyed, "target": target}).Info("Objective complete.")
}

// SetBroadcaster sets where session-wide events are published.
func (ws *WorldService) SetBroadcaster(b Broadcaster) {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	ws.broadcaster = b
}

// unlockAndPublish releases the lock and then sends queued events, so
// broadcasting never happens while the world is locked.
func (ws *WorldService) unlockAndPublish() {
	out := ws.outbox
	ws.outbox = nil
	b := ws.broadcaster
	ws.worldMutex.Unlock()
	if b == nil {
		return
	}
	for _, msg := range out {
		b.BroadcastToAll(msg)
	}
}

// SessionID returns the id of this world session.
func (ws *WorldService) SessionID() string { return ws.sessionID }

// World returns the generated world. Callers must treat it as read-only.
func (ws *WorldService) World() *worldgen.World { return ws.world }

// QueueDamage defers a damage event to the start of the next frame.
func (ws *WorldService) QueueDamage(id string, amount int) {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	ws.pending = append(ws.pending, damageEvent{id: id, amount: amount})
}

// ApplyDamage applies a damage event immediately.
func (ws *WorldService) ApplyDamage(id string, amount int) DamageResult {
	ws.worldMutex.Lock()
	defer ws.unlockAndPublish()
	return ws.applyDamageLocked(id, amount)
}

func (ws *WorldService) applyDamageLocked(id string, amount int) DamageResult {
	health := ws.registry.ApplyDamage(id, amount)
	s, ok := ws.registry.Structure(id)
	return DamageResult{ID: id, Known: ok, Health: health, Destroyed: ok && s.Destroyed}
}

// Frame advances the session by one frame: queued damage is applied
// first, then the viewport follows the camera and the player's
// surroundings are marked explored.
func (ws *WorldService) Frame(cameraX, cameraY float64) FrameResult {
	ws.worldMutex.Lock()
	defer ws.unlockAndPublish()

	ws.frames++
	res := FrameResult{Frame: ws.frames}

	for _, ev := range ws.pending {
		res.Damage = append(res.Damage, ws.applyDamageLocked(ev.id, ev.amount))
	}
	ws.pending = ws.pending[:0]

	res.Viewport = ws.cache.Update(cameraX, cameraY)
	res.NewlyVisited = ws.tracker.ObserveCell(ws.player.X, ws.player.Y)
	res.Discovered = ws.discoverLocked()
	res.Memory = ws.cache.Stats()
	res.ObjectiveComplete = ws.newlyDone
	ws.newlyDone = false
	return res
}

// DiscoverSideAreas marks every side area within exploration radius of the
// player as discovered and returns the ids that changed.
func (ws *WorldService) DiscoverSideAreas() []string {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	return ws.discoverLocked()
}

func (ws *WorldService) discoverLocked() []string {
	var ids []string
	reach := float64(ws.tracker.Radius())
	for i := range ws.world.SideAreas {
		a := &ws.world.SideAreas[i]
		if a.Discovered {
			continue
		}
		d := math.Hypot(float64(a.CenterX-ws.player.X), float64(a.CenterY-ws.player.Y))
		if d <= reach+float64(a.Radius) {
			a.Discovered = true
			ids = append(ids, a.ID)
		}
	}
	if len(ids) > 0 {
		ws.log.WithField("areas", ids).Debug("Side areas discovered.")
	}
	return ids
}

// IsWalkable reports whether the grid cell can be walked on.
func (ws *WorldService) IsWalkable(x, y int) bool {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	return ws.world.Grid.IsWalkable(x, y)
}

// GridToWorld projects a grid cell to world units.
func (ws *WorldService) GridToWorld(x, y int) (float64, float64) { return models.GridToWorld(x, y) }

// WorldToGrid returns the grid cell containing a world position.
func (ws *WorldService) WorldToGrid(wx, wy float64) (int, int) { return models.WorldToGrid(wx, wy) }

// Player returns the player cell.
func (ws *WorldService) Player() models.Cell {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	return ws.player
}

// MovePlayer steps the player by (dx, dy) if the destination is walkable.
func (ws *WorldService) MovePlayer(dx, dy int) (models.Cell, error) {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()

	next := models.Cell{X: ws.player.X + dx, Y: ws.player.Y + dy}
	if !ws.world.Grid.IsWalkable(next.X, next.Y) {
		return ws.player, ErrBlocked
	}
	ws.player = next
	return next, nil
}

// TeleportPlayer puts the player on (x, y) and preloads the render square
// around it so the next frame finds its tiles already materialized.
func (ws *WorldService) TeleportPlayer(x, y int) (PreloadInfo, error) {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()

	if !ws.world.Grid.IsWalkable(x, y) {
		return PreloadInfo{}, ErrBlocked
	}
	ws.player = models.Cell{X: x, Y: y}
	radius := ws.cfg.Viewport.RenderRadius
	tiles := ws.cache.PreloadArea(teleportPreload, x, y, radius)
	return PreloadInfo{Name: teleportPreload, CenterX: x, CenterY: y, Radius: radius, Tiles: tiles}, nil
}

// Preload pins a named area around a grid cell.
func (ws *WorldService) Preload(name string, x, y, radius int) PreloadInfo {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	tiles := ws.cache.PreloadArea(name, x, y, radius)
	return PreloadInfo{Name: name, CenterX: x, CenterY: y, Radius: radius, Tiles: tiles}
}

// ReleasePreload unpins a named area.
func (ws *WorldService) ReleasePreload(name string) bool {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	return ws.cache.ReleasePreload(name)
}

// PreloadReport lists the active preload areas.
func (ws *WorldService) PreloadReport() []PreloadInfo {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	return ws.cache.PreloadReport()
}

// ForceSweep releases stale tiles that are neither visible nor pinned.
func (ws *WorldService) ForceSweep() int {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	return ws.cache.ForceSweep()
}

// MemoryStats returns the viewport cache counters.
func (ws *WorldService) MemoryStats() models.MemoryStats {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	return ws.cache.Stats()
}

// Objective returns the completion event once the objective is complete.
func (ws *WorldService) Objective() (ObjectiveEvent, bool) {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	if ws.objective == nil {
		return ObjectiveEvent{}, false
	}
	return *ws.objective, true
}

// Structures returns every structure sorted by id.
func (ws *WorldService) Structures() []models.Structure {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	return ws.registry.Structures()
}

// ExplorationSnapshot returns the visited cells together with the
// structure and side area states.
func (ws *WorldService) ExplorationSnapshot() ExplorationSnapshot {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()

	areas := make([]models.SideArea, len(ws.world.SideAreas))
	copy(areas, ws.world.SideAreas)
	return ExplorationSnapshot{
		Width:      ws.world.Grid.Width,
		Height:     ws.world.Grid.Height,
		Count:      ws.tracker.Count(),
		Visited:    ws.tracker.Snapshot(),
		Structures: ws.registry.Structures(),
		SideAreas:  areas,
	}
}

// Stats returns the diagnostics view of the session.
func (ws *WorldService) Stats() StatsReport {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()
	return ws.statsLocked()
}

func (ws *WorldService) statsLocked() StatsReport {
	r := StatsReport{
		SessionID:    ws.sessionID,
		Frames:       ws.frames,
		Memory:       ws.cache.Stats(),
		Materialized: ws.cache.Len(),
		Visible:      ws.cache.VisibleCount(),
		Visited:      ws.tracker.Count(),
		Destroyed:    ws.registry.DestroyedCount(),
		Target:       ws.registry.Target(),
		Completed:    ws.registry.Completed(),
		Preloads:     ws.cache.PreloadReport(),
		Generation:   ws.world.Report,
	}
	if h, ok := ws.factory.(interface{ Stats() scene.HeadlessStats }); ok {
		st := h.Stats()
		r.Scene = &st
	}
	return r
}

func (ws *WorldService) sampleLocked() models.StatsSample {
	return models.StatsSample{
		SessionID:           ws.sessionID,
		Frame:               ws.frames,
		Memory:              ws.cache.Stats(),
		Visited:             ws.tracker.Count(),
		StructuresDestroyed: ws.registry.DestroyedCount(),
		RecordedAt:          time.Now().UTC(),
	}
}

func (ws *WorldService) summaryLocked() models.SessionSummary {
	rep := ws.world.Report
	return models.SessionSummary{
		SessionID:        ws.sessionID,
		Width:            ws.world.Grid.Width,
		Height:           ws.world.Grid.Height,
		PathPoints:       rep.PathPoints,
		Branches:         rep.Branches,
		BranchesSkipped:  rep.BranchesSkipped,
		SideAreas:        rep.SideAreas,
		Structures:       rep.Structures,
		GenerationMillis: rep.Duration.Milliseconds(),
		StartedAt:        ws.startedAt,
		Frames:           ws.frames,
		PeakLive:         ws.cache.Stats().PeakLive,
	}
}

// Sample records one diagnostics sample and broadcasts the current stats.
func (ws *WorldService) Sample() error {
	ws.worldMutex.Lock()
	sample := ws.sampleLocked()
	ws.outbox = append(ws.outbox, messages.BaseMessage{Type: messages.MessageTypeStats, Payload: ws.statsLocked()})
	ws.unlockAndPublish()

	return ws.db.RecordStats(sample)
}

// Run drives the periodic maintenance of the session until ctx ends:
// forced sweeps on SweepInterval and diagnostics samples on
// SampleInterval.
func (ws *WorldService) Run(ctx context.Context) error {
	sweepEvery, sampleEvery := ws.cfg.SweepInterval, ws.cfg.SampleInterval
	if sweepEvery <= 0 {
		sweepEvery = DefaultWorldConfig().SweepInterval
	}
	if sampleEvery <= 0 {
		sampleEvery = DefaultWorldConfig().SampleInterval
	}
	sweep := time.NewTicker(sweepEvery)
	defer sweep.Stop()
	sample := time.NewTicker(sampleEvery)
	defer sample.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sweep.C:
			ws.ForceSweep()
		case <-sample.C:
			if err := ws.Sample(); err != nil {
				ws.log.WithError(err).Warn("Failed to record stats sample.")
			}
		}
	}
}

// Close releases every materialized tile and records the session end.
func (ws *WorldService) Close() error {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()

	sum := ws.summaryLocked()
	sum.EndedAt = time.Now().UTC()
	released := ws.cache.Close()
	ws.log.WithFields(logrus.Fields{"released": released, "frames": ws.frames}).Info("World session closed.")
	return ws.db.RecordSession(sum)
}
