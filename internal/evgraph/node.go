package evgraph

// Kind identifies an EventNode's variant. Values double as the persisted id
// prefix lookup key (see Prefix).
type Kind int

const (
	KindNPCMessage Kind = iota
	KindExNPCMessage
	KindMultitalk
	KindPrompt
	KindPlayScene
	KindOpenMenu
	KindDirection
	KindPerformActions
)

// Prefix returns the two-letter id prefix used by Z<zoneId>_<prefix><seq>.
func (k Kind) Prefix() string {
	switch k {
	case KindNPCMessage:
		return "NM"
	case KindExNPCMessage:
		return "EX"
	case KindMultitalk:
		return "ML"
	case KindPrompt:
		return "PR"
	case KindPlayScene:
		return "SC"
	case KindOpenMenu:
		return "ME"
	case KindDirection:
		return "DR"
	case KindPerformActions:
		return "PA"
	default:
		return "XX"
	}
}

// Source identifies the entity that triggered a dialogue step, by identity
// (id + floor-quantized spawn position) rather than by pointer — this keeps
// package evgraph free of any dependency on package zone, which is the one
// that owns the actual Entity records and their action lists.
type Source struct {
	Present bool
	EntityID int32
	X, Y, Rot int32
}

// EventNode is the unit of the reconstructed graph. See the package doc
// for the arena-addressing rationale.
type EventNode struct {
	ID     NodeID
	Kind   Kind
	Source Source

	NPCMessage     NPCMessagePayload
	ExNPCMessage   ExNPCMessagePayload
	Multitalk      MultitalkPayload
	Prompt         PromptPayload
	PlayScene      PlayScenePayload
	OpenMenu       OpenMenuPayload
	Direction      DirectionPayload
	PerformActions PerformActionsPayload

	// Next maps a response key to the chosen (canonical, post-merge) node.
	Next map[int32]NodeID
	// NextBranch records alternative next-nodes observed under the same
	// response key across different runs, that did not flat-merge into Next.
	NextBranch map[int32][]NodeID

	// Previous is a weak, construction-only back-link. It never
	// participates in equality or hashing and is ignored once merging
	// begins (see package merge).
	Previous NodeID

	// MergeCount counts how many observations (beyond the first) folded
	// into this node.
	MergeCount int
}

func newNode(kind Kind, source Source) EventNode {
	return EventNode{
		Kind:       kind,
		Source:     source,
		Next:       make(map[int32]NodeID),
		NextBranch: make(map[int32][]NodeID),
	}
}

// NewNPCMessage allocates a fresh NPCMessage node in the arena.
func (a *Arena) NewNPCMessage(source Source) NodeID {
	n := newNode(KindNPCMessage, source)
	return a.New(n)
}

func (a *Arena) NewExNPCMessage(source Source) NodeID {
	n := newNode(KindExNPCMessage, source)
	return a.New(n)
}

func (a *Arena) NewMultitalk(source Source) NodeID {
	n := newNode(KindMultitalk, source)
	return a.New(n)
}

func (a *Arena) NewPrompt(source Source) NodeID {
	n := newNode(KindPrompt, source)
	return a.New(n)
}

func (a *Arena) NewPlayScene() NodeID {
	n := newNode(KindPlayScene, Source{})
	return a.New(n)
}

func (a *Arena) NewOpenMenu(source Source) NodeID {
	n := newNode(KindOpenMenu, source)
	return a.New(n)
}

func (a *Arena) NewDirection() NodeID {
	n := newNode(KindDirection, Source{})
	return a.New(n)
}

func (a *Arena) NewPerformActions() NodeID {
	n := newNode(KindPerformActions, Source{})
	return a.New(n)
}

// --- Payloads ---

type NPCMessagePayload struct {
	MessageIDs []int32
	Unknowns   []int32 // per-index; 0 means "use Default"
}

// EffectiveUnknown returns the unknown for index i, substituting the node's
// default (the first nonzero entry) when the stored value is zero, the
// tolerance NPCMessage equivalence needs for an "unknown" field.
func (p *NPCMessagePayload) EffectiveUnknown(i int) int32 {
	if i < len(p.Unknowns) && p.Unknowns[i] != 0 {
		return p.Unknowns[i]
	}
	return p.defaultUnknown()
}

func (p *NPCMessagePayload) defaultUnknown() int32 {
	for _, u := range p.Unknowns {
		if u != 0 {
			return u
		}
	}
	return 0
}

type ExNPCMessagePayload struct {
	MessageID int32
	Ex1       int16
	Ex2Set    bool
	Ex2       int32
}

type MultitalkPayload struct {
	MessageID int32
}

// PromptChoice is one selectable reply. MessageID 0 means "unobserved" and
// is tolerated as a wildcard match against any other choice's message id.
type PromptChoice struct {
	MessageID int32
}

type PromptPayload struct {
	MessageID int32
	Choices   []PromptChoice
}

type PlayScenePayload struct {
	SceneID int32
	Unknown int8
}

type OpenMenuPayload struct {
	MenuType int32
	ShopID   int32
}

type DirectionPayload struct {
	Direction int32
}

type PerformActionsPayload struct {
	Actions []Action
}
