package evgraph

// ActionKind identifies the variant of a side-effect Action attached to a
// PerformActions node, or (for StartEvent) to an Entity's own action list.
type ActionKind int

const (
	ActionDisplayMessage ActionKind = iota
	ActionAddRemoveItems
	ActionSetHomepoint
	ActionSetNPCState
	ActionSpecialDirection
	ActionStageEffect
	ActionPlaySoundEffect
	ActionPlayBGM
	ActionZoneChange
	ActionUpdateFlag
	ActionUpdateLNC
	ActionUpdateQuest
	ActionStartEvent
)

// Action is a tagged variant: a shared ActionKind() method dispatches
// payload-equality checks in package merge, same shape as the EventNode
// variants above.
type Action interface {
	ActionKind() ActionKind
}

// DisplayMessageAction shows one or more UI messages; repeated EventMessage
// packets append to the same action's MessageIDs (see package build).
type DisplayMessageAction struct {
	MessageIDs []int32
}

func (DisplayMessageAction) ActionKind() ActionKind { return ActionDisplayMessage }

type AddRemoveItemsAction struct {
	Items  map[uint32]int32 // itemID -> quantity
	Notify bool
}

func (AddRemoveItemsAction) ActionKind() ActionKind { return ActionAddRemoveItems }

// SetHomepointAction has no observable fields in the trace (the
// corresponding packet carries nothing beyond its opcode).
type SetHomepointAction struct{}

func (SetHomepointAction) ActionKind() ActionKind { return ActionSetHomepoint }

type SetNPCStateAction struct {
	State uint8
}

func (SetNPCStateAction) ActionKind() ActionKind { return ActionSetNPCState }

type SpecialDirectionAction struct {
	Special1  uint8
	Special2  uint8
	Direction int32
}

func (SpecialDirectionAction) ActionKind() ActionKind { return ActionSpecialDirection }

type StageEffectAction struct {
	MessageID int32
	Effect1   int8
	Effect2Set bool
	Effect2   int32
}

func (StageEffectAction) ActionKind() ActionKind { return ActionStageEffect }

type PlaySoundEffectAction struct {
	SoundID int32
	Delay   int32
}

func (PlaySoundEffectAction) ActionKind() ActionKind { return ActionPlaySoundEffect }

type PlayBGMAction struct {
	IsStop      bool
	MusicID     int32
	FadeInDelay int32
	Unknown     int32
}

func (PlayBGMAction) ActionKind() ActionKind { return ActionPlayBGM }

// FlagType distinguishes the three flag-bitmap packets that share the
// UpdateFlag action shape.
type FlagType int

const (
	FlagMap FlagType = iota
	FlagUnion
	FlagValuable
)

type UpdateFlagAction struct {
	FlagType FlagType
	ID       uint16
	Remove   bool
}

func (UpdateFlagAction) ActionKind() ActionKind { return ActionUpdateFlag }

type UpdateLNCAction struct {
	Value int16
}

func (UpdateLNCAction) ActionKind() ActionKind { return ActionUpdateLNC }

type UpdateQuestAction struct {
	QuestID int16
	Phase   int8
}

func (UpdateQuestAction) ActionKind() ActionKind { return ActionUpdateQuest }

// ZoneChangeAction is prepared by the Zone Registry from the static relation
// data and attached to an entity or spot once the Event Builder observes
// the matching trigger (see package build).
type ZoneChangeAction struct {
	ZoneID   uint32
	DestX    float32
	DestY    float32
	DestRot  float32
	MapID    uint32
}

func (ZoneChangeAction) ActionKind() ActionKind { return ActionZoneChange }

// StartEventAction is the only action kind ever appended directly to an
// Entity's action list (by package emit), not to a PerformActions node.
type StartEventAction struct {
	EventID string
}

func (StartEventAction) ActionKind() ActionKind { return ActionStartEvent }
