// Package build implements the Event Builder: it consumes one capture's
// decoded packet stream and produces, per zone visit, a dialogue chain of
// evgraph.EventNode values wired together: trigger capture, step
// classification, extend-vs-new-node, flag diffing, wiring, loop
// back-merge, trigger binding, anomaly policy.
package build

import (
	"go.uber.org/zap"

	"github.com/l1jgo/zonerecon/internal/capture"
	"github.com/l1jgo/zonerecon/internal/decode"
	"github.com/l1jgo/zonerecon/internal/evgraph"
	"github.com/l1jgo/zonerecon/internal/visit"
	"github.com/l1jgo/zonerecon/internal/zone"
)

// Builder walks one capture's frame stream against a shared Zone Registry
// and a shared per-zone Arena (one arena per zone, supplied by the
// caller — see internal/pipeline), producing the completed Chains for
// every visit the capture touches.
type Builder struct {
	registry *zone.Registry
	arenas   map[uint32]*evgraph.Arena
	log      *zap.Logger

	cur     *visit.Instance
	curZone *zone.Zone
}

// New creates a Builder. arenas maps zone id to the shared arena that zone
// id's merge pass will consume; the pipeline owns arena lifetime so nodes
// from every capture touching a zone land in one arena.
func New(registry *zone.Registry, arenas map[uint32]*evgraph.Arena, log *zap.Logger) *Builder {
	return &Builder{registry: registry, arenas: arenas, log: log}
}

func (b *Builder) arenaFor(zoneID uint32) *evgraph.Arena {
	a, ok := b.arenas[zoneID]
	if !ok {
		a = evgraph.NewArena()
		b.arenas[zoneID] = a
	}
	return a
}

// Process decodes and walks every frame from src in order, returning the
// completed Chains. A decode-fatal error abandons the whole capture: no
// Chains are returned for it. Zone Registry changes made by its earlier
// frames (registered zones, spawned entities, spots, bound connections)
// are not rolled back.
func (b *Builder) Process(src capture.Source) ([]Chain, error) {
	var chains []Chain
	for {
		frame, err := src.Next()
		if err != nil {
			if err == capture.ErrEOF {
				break
			}
			return nil, err
		}
		op := decode.Opcode(frame.Opcode)
		rec, err := decode.Decode(op, frame.Body)
		if err != nil {
			b.log.Error("decode failed, abandoning capture",
				zap.String("capture", src.Path()),
				zap.Error(err))
			return nil, err
		}
		if b.cur != nil {
			b.cur.NextSeq()
		}
		chains = append(chains, b.handle(op, rec)...)
	}
	if b.cur != nil {
		chains = append(chains, b.finishVisit()...)
	}
	return chains, nil
}

func (b *Builder) handle(op decode.Opcode, rec decode.Record) []Chain {
	switch r := rec.(type) {
	case decode.ZoneChangeRecord:
		return b.onZoneChange(r)
	case decode.CharacterDataRecord:
		b.onCharacterData(r)
	case decode.NPCSpawnRecord:
		b.onNPCSpawn(r)
	case decode.ObjectSpawnRecord:
		b.onObjectSpawn(r)
	case decode.BazaarSpawnRecord:
		b.onBazaarSpawn(r)
	case decode.RemoveEntityRecord:
		b.onRemoveEntity(r)
	case decode.InteractionRecord:
		b.onInteraction(r)
	case decode.SpotTriggeredRecord:
		b.onSpotTriggered(r)
	case decode.SkillCompletedRecord:
		if b.cur != nil {
			b.cur.InvalidatePendingTrigger()
		}
	case decode.NPCMessageRecord:
		b.onNPCMessage(r)
	case decode.ExNPCMessageRecord:
		b.onExNPCMessage(r)
	case decode.MultitalkRecord:
		b.onMultitalk(r)
	case decode.PromptRecord:
		b.onPrompt(r)
	case decode.PlaySceneRecord:
		b.onPlayScene(r)
	case decode.OpenMenuRecord:
		b.onOpenMenu(r)
	case decode.DirectionRecord:
		b.onDirection(r)
	case decode.EventMessageRecord:
		b.onEventMessage(r)
	case decode.GetItemsRecord:
		b.appendAction(evgraph.AddRemoveItemsAction{Items: itemsFromGetItems(r), Notify: true})
	case decode.HomepointRecord:
		b.appendAction(evgraph.SetHomepointAction{})
	case decode.StageEffectRecord:
		b.appendAction(evgraph.StageEffectAction{MessageID: r.MessageID, Effect1: r.Effect1, Effect2Set: r.Effect2Set, Effect2: r.Effect2})
	case decode.SpecialDirectionRecord:
		b.appendAction(evgraph.SpecialDirectionAction{Special1: r.Special1, Special2: r.Special2, Direction: r.Direction})
	case decode.PlaySoundRecord:
		b.appendAction(evgraph.PlaySoundEffectAction{SoundID: r.SoundID, Delay: r.Delay})
	case decode.PlayBGMRecord:
		b.appendAction(evgraph.PlayBGMAction{MusicID: r.MusicID, FadeInDelay: r.FadeInDelay, Unknown: r.Unknown})
	case decode.StopBGMRecord:
		b.appendAction(evgraph.PlayBGMAction{IsStop: true})
	case decode.NPCStateChangeRecord:
		b.appendAction(evgraph.SetNPCStateAction{State: r.State})
	case decode.FlagRecord:
		b.onFlag(r)
	case decode.LNCPointsRecord:
		b.onLNCPoints(r)
	case decode.QuestPhaseRecord:
		b.appendAction(evgraph.UpdateQuestAction{QuestID: r.QuestID, Phase: r.Phase})
	case decode.EventResponseRecord:
		b.onEventResponse(r)
	case decode.EventEndRecord:
		return b.onEventEnd()
	}
	return nil
}

func itemsFromGetItems(r decode.GetItemsRecord) map[uint32]int32 {
	m := make(map[uint32]int32, len(r.Items))
	for _, it := range r.Items {
		m[it.ItemID] += int32(it.Quantity)
	}
	return m
}

// onZoneChange closes the current visit and opens a fresh one only when
// this is an actual zone change (a different zone id, or no visit open
// yet). A same-zone ZoneChange is just a move within the current zone and
// must not reset in-progress event-chain state or mis-bind the pending
// trigger against it.
func (b *Builder) onZoneChange(r decode.ZoneChangeRecord) []Chain {
	if b.cur != nil && r.ZoneID == b.cur.ZoneID {
		return nil
	}
	var closed []Chain
	if b.cur != nil {
		b.bindTrigger(r)
		closed = b.finishVisit()
	}
	z := b.registry.RegisterZone(r.ZoneID, r.DynamicMapID)
	b.curZone = z
	b.cur = visit.NewInstance(b.arenaFor(r.ZoneID), r.ZoneID)
	return closed
}

// onCharacterData seeds the visit's own player entity id and the LNC
// shadow baseline it tracks diffs against. A capture with no preceding
// ZoneChange has no zone id to open a visit with in the first place, so
// there is no Entities/FlagShadow map for this record to seed either;
// every spawn/dialogue record hits the same b.cur == nil guard for the
// same reason.
func (b *Builder) onCharacterData(r decode.CharacterDataRecord) {
	if b.cur == nil {
		return
	}
	b.cur.PlayerEntityID = r.EntityID
	b.cur.LNCShadow = r.LNC
}

func (b *Builder) onNPCSpawn(r decode.NPCSpawnRecord) {
	if b.curZone == nil {
		return
	}
	e := b.curZone.GetOrCreateHNPC(int32(r.ObjectID), r.X, r.Y, r.Rot)
	b.cur.Entities[r.EntityID] = e
}

func (b *Builder) onObjectSpawn(r decode.ObjectSpawnRecord) {
	if b.curZone == nil {
		return
	}
	e := b.curZone.GetOrCreateONPC(int32(r.ObjectID), r.X, r.Y, r.Rot, r.State)
	b.cur.Entities[r.EntityID] = e
}

func (b *Builder) onBazaarSpawn(r decode.BazaarSpawnRecord) {
	if b.curZone == nil {
		return
	}
	var e *zone.Entity
	if len(r.Markets) == 0 {
		e = b.curZone.GetOrCreateBazaar(r.X, r.Y, r.Rot, 0)
	}
	for _, m := range r.Markets {
		e = b.curZone.GetOrCreateBazaar(r.X, r.Y, r.Rot, m.ID)
	}
	b.cur.Entities[r.EntityID] = e
}

func (b *Builder) onRemoveEntity(r decode.RemoveEntityRecord) {
	if b.cur == nil {
		return
	}
	delete(b.cur.Entities, r.EntityID)
}

func (b *Builder) onInteraction(r decode.InteractionRecord) {
	if b.cur == nil {
		return
	}
	b.cur.CaptureTrigger(decode.OpInteraction, r)
}

func (b *Builder) onSpotTriggered(r decode.SpotTriggeredRecord) {
	if b.cur == nil {
		return
	}
	b.cur.CaptureTrigger(decode.OpSpotTriggered, r)
	if b.curZone != nil {
		b.curZone.GetOrCreateSpot(r.SpotID)
	}
}

// sourceFromEntity builds an evgraph.Source identity from the entity a
// dialogue packet references, marking the visit invalid if the wire
// entity id is unknown.
func (b *Builder) sourceFromEntity(entityID int32) (evgraph.Source, bool) {
	e, ok := b.cur.Entities[entityID]
	if !ok {
		b.cur.MarkInvalid()
		return evgraph.Source{}, false
	}
	return evgraph.Source{Present: true, EntityID: e.ID, X: e.X, Y: e.Y, Rot: e.Rot}, true
}

func (b *Builder) responseKey() int32 {
	if b.cur.HasResponse {
		return b.cur.EventResponse
	}
	return 0
}

// wire links newNode under prev's Next[key], or folds it into an existing
// flat-equivalent entry.
func (b *Builder) wire(arena *evgraph.Arena, prev evgraph.NodeID, key int32, newNode evgraph.NodeID) evgraph.NodeID {
	if prev.IsNil() {
		return newNode
	}
	prevNode := arena.Get(prev)
	if prevNode == nil {
		return newNode
	}
	existing, ok := prevNode.Next[key]
	if !ok {
		prevNode.Next[key] = newNode
		if n := arena.Get(newNode); n != nil {
			n.Previous = prev
		}
		return newNode
	}
	if evgraph.Equivalent(arena, existing, newNode, false) {
		if en := arena.Get(existing); en != nil {
			en.MergeCount++
		}
		arena.Erase(newNode)
		return existing
	}
	prevNode.NextBranch[key] = append(prevNode.NextBranch[key], newNode)
	if n := arena.Get(newNode); n != nil {
		n.Previous = prev
	}
	return newNode
}

// step installs newNode as the chain's current node: wires it from the
// previous current node (if any) under the active response key, performs
// loop back-merge, and resets per-step bookkeeping.
func (b *Builder) step(newNode evgraph.NodeID) {
	arena := b.cur.Arena
	key := b.responseKey()
	resolved := b.wire(arena, b.cur.ChainCurrent, key, newNode)
	resolved = backMerge(arena, b.cur.ChainCurrent, resolved)
	if b.cur.ChainHead.IsNil() {
		b.cur.ChainHead = resolved
	}
	b.cur.ChainLast = b.cur.ChainCurrent
	b.cur.ChainCurrent = resolved
	b.cur.HasResponse = false
}

// appendAction appends to the trailing PerformActions node of the chain,
// creating one (wired in as the new current node) if the current node is
// of another kind.
func (b *Builder) appendAction(a evgraph.Action) {
	if b.cur == nil {
		return
	}
	arena := b.cur.Arena
	cur := arena.Get(b.cur.ChainCurrent)
	if cur == nil || cur.Kind != evgraph.KindPerformActions {
		node := arena.NewPerformActions()
		b.step(node)
		cur = arena.Get(b.cur.ChainCurrent)
	}
	cur.PerformActions.Actions = append(cur.PerformActions.Actions, a)
}

// onEventMessage merges into the trailing DisplayMessage action instead of
// creating a new action.
func (b *Builder) onEventMessage(r decode.EventMessageRecord) {
	if b.cur == nil {
		return
	}
	arena := b.cur.Arena
	cur := arena.Get(b.cur.ChainCurrent)
	if cur == nil || cur.Kind != evgraph.KindPerformActions {
		node := arena.NewPerformActions()
		b.step(node)
		cur = arena.Get(b.cur.ChainCurrent)
	}
	if n := len(cur.PerformActions.Actions); n > 0 {
		if dm, ok := cur.PerformActions.Actions[n-1].(evgraph.DisplayMessageAction); ok {
			dm.MessageIDs = append(dm.MessageIDs, r.MessageID)
			cur.PerformActions.Actions[n-1] = dm
			return
		}
	}
	cur.PerformActions.Actions = append(cur.PerformActions.Actions, evgraph.DisplayMessageAction{MessageIDs: []int32{r.MessageID}})
}

func (b *Builder) onNPCMessage(r decode.NPCMessageRecord) {
	if b.cur == nil {
		return
	}
	src, ok := b.sourceFromEntity(r.Source)
	if !ok {
		return
	}
	arena := b.cur.Arena
	cur := arena.Get(b.cur.ChainCurrent)
	if cur != nil && cur.Kind == evgraph.KindNPCMessage && cur.Source == src && !b.cur.HasResponse {
		cur.NPCMessage.MessageIDs = append(cur.NPCMessage.MessageIDs, r.MessageID)
		cur.NPCMessage.Unknowns = append(cur.NPCMessage.Unknowns, r.Unknown)
		return
	}
	node := arena.NewNPCMessage(src)
	n := arena.Get(node)
	n.NPCMessage.MessageIDs = []int32{r.MessageID}
	n.NPCMessage.Unknowns = []int32{r.Unknown}
	b.step(node)
}

func (b *Builder) onExNPCMessage(r decode.ExNPCMessageRecord) {
	if b.cur == nil {
		return
	}
	src, ok := b.sourceFromEntity(r.Source)
	if !ok {
		return
	}
	arena := b.cur.Arena
	node := arena.NewExNPCMessage(src)
	arena.Get(node).ExNPCMessage = evgraph.ExNPCMessagePayload{MessageID: r.MessageID, Ex1: r.Ex1, Ex2Set: r.Ex2Set, Ex2: r.Ex2}
	b.step(node)
	b.cur.EventResponse = 0
	b.cur.HasResponse = true
}

func (b *Builder) onMultitalk(r decode.MultitalkRecord) {
	if b.cur == nil {
		return
	}
	src, ok := b.sourceFromEntity(r.Source)
	if !ok {
		return
	}
	arena := b.cur.Arena
	node := arena.NewMultitalk(src)
	arena.Get(node).Multitalk = evgraph.MultitalkPayload{MessageID: r.MessageID}
	b.step(node)
}

func (b *Builder) onPrompt(r decode.PromptRecord) {
	if b.cur == nil {
		return
	}
	src, ok := b.sourceFromEntity(r.Source)
	if !ok {
		return
	}
	arena := b.cur.Arena
	node := arena.NewPrompt(src)
	payload := evgraph.PromptPayload{MessageID: r.MessageID}
	for _, c := range r.Choices {
		payload.Choices = append(payload.Choices, evgraph.PromptChoice{MessageID: c.MessageID})
	}
	arena.Get(node).Prompt = payload
	b.step(node)
}

func (b *Builder) onPlayScene(r decode.PlaySceneRecord) {
	if b.cur == nil {
		return
	}
	arena := b.cur.Arena
	node := arena.NewPlayScene()
	arena.Get(node).PlayScene = evgraph.PlayScenePayload{SceneID: r.SceneID, Unknown: r.Unknown}
	b.step(node)
}

func (b *Builder) onOpenMenu(r decode.OpenMenuRecord) {
	if b.cur == nil {
		return
	}
	src, ok := b.sourceFromEntity(r.Source)
	if !ok {
		return
	}
	arena := b.cur.Arena
	node := arena.NewOpenMenu(src)
	arena.Get(node).OpenMenu = evgraph.OpenMenuPayload{MenuType: r.MenuType, ShopID: r.ShopID}
	b.step(node)
	// OpenMenu implicitly ends the event.
	b.flushChain()
}

func (b *Builder) onDirection(r decode.DirectionRecord) {
	if b.cur == nil {
		return
	}
	arena := b.cur.Arena
	node := arena.NewDirection()
	arena.Get(node).Direction = evgraph.DirectionPayload{Direction: r.Direction}
	b.step(node)
}

func (b *Builder) onEventResponse(r decode.EventResponseRecord) {
	if b.cur == nil {
		return
	}
	b.cur.EventResponse = r.Response
	b.cur.HasResponse = true
}

// onEventEnd flushes the current chain and returns it as a completed
// Chain if non-empty.
func (b *Builder) onEventEnd() []Chain {
	return b.flushChain()
}

func (b *Builder) flushChain() []Chain {
	if b.cur == nil || b.cur.ChainHead.IsNil() {
		return nil
	}
	c := Chain{ZoneID: b.cur.ZoneID, Root: b.cur.ChainHead}
	b.cur.LastFlushedNode = b.cur.ChainCurrent
	b.cur.LastFlushedResponseKey = b.responseKey()
	b.cur.LastFlushedSeq = b.cur.Seq()
	b.cur.ChainHead = evgraph.NilNode
	b.cur.ChainCurrent = evgraph.NilNode
	b.cur.ChainLast = evgraph.NilNode
	b.cur.HasResponse = false
	if b.cur.EventsInvalid {
		return nil // discarded: this visit was marked invalid
	}
	return []Chain{c}
}

// finishVisit closes out the current visit at capture EOF or zone change,
// returning any still-open chain.
func (b *Builder) finishVisit() []Chain {
	closed := b.flushChain()
	b.cur = nil
	b.curZone = nil
	return closed
}
