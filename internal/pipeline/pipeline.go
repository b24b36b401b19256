// Package pipeline orchestrates the whole reconstruction run: independent
// captures decode and build in parallel, then every zone is merged,
// emitted, and serialized sequentially.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/l1jgo/zonerecon/internal/build"
	"github.com/l1jgo/zonerecon/internal/capture"
	"github.com/l1jgo/zonerecon/internal/emit"
	"github.com/l1jgo/zonerecon/internal/evgraph"
	"github.com/l1jgo/zonerecon/internal/merge"
	"github.com/l1jgo/zonerecon/internal/xmlout"
	"github.com/l1jgo/zonerecon/internal/zone"
)

// Pipeline wires the whole repo together: one Zone Registry shared across
// every capture, one Arena per zone shared across every capture that
// touches it, and one XML pair per zone written at the end.
type Pipeline struct {
	Registry *zone.Registry
	Writer   xmlout.ZoneWriter
	Log      *zap.Logger
	Workers  int
	OutDir   string

	arenas map[uint32]*evgraph.Arena
	// arenaMu serializes every capture's whole pass (open, read, decode,
	// build). evgraph.Arena is not itself safe for concurrent writers, so
	// captures are bounded by Workers but do not run concurrently; the
	// capture-file I/O is serialized along with the arena writes.
	arenaMu sync.Mutex
}

func New(registry *zone.Registry, writer xmlout.ZoneWriter, log *zap.Logger, workers int, outDir string) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		Registry: registry,
		Writer:   writer,
		Log:      log,
		Workers:  workers,
		OutDir:   outDir,
		arenas:   make(map[uint32]*evgraph.Arena),
	}
}

// Run decodes and builds every capture path (bounded by p.Workers, via
// errgroup + a buffered-channel semaphore), then merges, emits, and
// serializes every zone the whole run touched.
func (p *Pipeline) Run(ctx context.Context, capturePaths []string) error {
	sem := make(chan struct{}, p.Workers)
	var mu sync.Mutex
	chainsByZone := make(map[uint32][]build.Chain)

	g, gctx := errgroup.WithContext(ctx)
	for _, path := range capturePaths {
		path := path
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			chains, err := p.processCapture(path)
			if err != nil {
				// Only this capture is abandoned; the run goes on.
				p.Log.Error("capture abandoned", zap.String("capture", path), zap.Error(err))
				return nil
			}
			mu.Lock()
			for _, c := range chains {
				chainsByZone[c.ZoneID] = append(chainsByZone[c.ZoneID], c)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	for zoneID, zn := range p.Registry.Zones() {
		arena := p.arenaFor(zoneID)
		roots := merge.Zone(arena, chainsByZone[zoneID])
		p.resolveNames(zn)
		result := emit.Zone(arena, zn, roots)
		if err := p.writeZone(zn, result); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) processCapture(path string) ([]build.Chain, error) {
	p.arenaMu.Lock()
	defer p.arenaMu.Unlock()

	src, err := capture.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	b := build.New(p.Registry, p.arenas, p.Log)
	return b.Process(src)
}

func (p *Pipeline) arenaFor(zoneID uint32) *evgraph.Arena {
	p.arenaMu.Lock()
	defer p.arenaMu.Unlock()
	a, ok := p.arenas[zoneID]
	if !ok {
		a = evgraph.NewArena()
		p.arenas[zoneID] = a
	}
	return a
}

func (p *Pipeline) resolveNames(z *zone.Zone) {
	for _, e := range z.NPCs {
		if name, ok := p.Registry.ResolveHNPCName(e.ID); ok {
			e.Name = name
		}
	}
	for _, e := range z.Objects {
		if name, ok := p.Registry.ResolveONPCName(e.ID); ok {
			e.Name = name
		}
	}
}

func (p *Pipeline) writeZone(z *zone.Zone, result *emit.Result) error {
	if err := os.MkdirAll(p.OutDir, 0o755); err != nil {
		return fmt.Errorf("pipeline: create output dir: %w", err)
	}

	zonePath := filepath.Join(p.OutDir, fmt.Sprintf("zone-%d.xml", z.ID))
	if err := writeFile(zonePath, func(f *os.File) error {
		return p.Writer.WriteZone(f, xmlout.ConvertZone(z))
	}); err != nil {
		return err
	}

	eventsPath := filepath.Join(p.OutDir, fmt.Sprintf("zone_events-%d.xml", z.ID))
	return writeFile(eventsPath, func(f *os.File) error {
		return p.Writer.WriteEvents(f, xmlout.ConvertEvents(result))
	})
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pipeline: create %s: %w", path, err)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return fmt.Errorf("pipeline: write %s: %w", path, err)
	}
	return nil
}
