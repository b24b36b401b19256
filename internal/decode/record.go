package decode

type ZoneChangeRecord struct {
	ZoneID        uint32
	Instance      uint32
	X, Y, Rot     float32
	DynamicMapID  uint32
}

func (ZoneChangeRecord) Opcode() Opcode { return OpZoneChange }

type CharacterDataRecord struct {
	EntityID int32
	Name     string
	LNC      int16
}

func (CharacterDataRecord) Opcode() Opcode { return OpCharacterData }

type NPCSpawnRecord struct {
	EntityID  int32
	ObjectID  uint32
	Instance  uint32
	ZoneID    uint32
	X, Y, Rot float32
}

func (NPCSpawnRecord) Opcode() Opcode { return OpNPCSpawn }

type ObjectSpawnRecord struct {
	EntityID  int32
	ObjectID  uint32
	State     uint8
	Instance  uint32
	ZoneID    uint32
	X, Y, Rot float32
}

func (ObjectSpawnRecord) Opcode() Opcode { return OpObjectSpawn }

type BazaarMarketEntry struct {
	ID   uint32
	Name string
}

type BazaarSpawnRecord struct {
	EntityID  int32
	Instance  uint32
	ZoneID    uint32
	X, Y, Rot float32
	Markets   []BazaarMarketEntry
}

func (BazaarSpawnRecord) Opcode() Opcode { return OpBazaarSpawn }

type InteractionRecord struct {
	EntityID int32
}

func (InteractionRecord) Opcode() Opcode { return OpInteraction }

type SpotTriggeredRecord struct {
	EntityID int32
	SpotID   uint32
}

func (SpotTriggeredRecord) Opcode() Opcode { return OpSpotTriggered }

type EventMessageRecord struct {
	MessageID int32
}

func (EventMessageRecord) Opcode() Opcode { return OpEventMessage }

type NPCMessageRecord struct {
	Source    int32
	MessageID int32
	Unknown   int32
	Legacy    bool // true when the trailing field was s16, not s32
}

func (NPCMessageRecord) Opcode() Opcode { return OpNPCMessage }

type ExNPCMessageRecord struct {
	Source    int32
	MessageID int32
	Ex1       int16
	Ex2Set    bool
	Ex2       int32
}

func (ExNPCMessageRecord) Opcode() Opcode { return OpExNPCMessage }

type MultitalkRecord struct {
	Source    int32
	MessageID int32
}

func (MultitalkRecord) Opcode() Opcode { return OpMultitalk }

type PromptChoiceRecord struct {
	Index     int32
	MessageID int32
}

type PromptRecord struct {
	Source    int32
	MessageID int32
	Choices   []PromptChoiceRecord
}

func (PromptRecord) Opcode() Opcode { return OpPrompt }

type PlaySceneRecord struct {
	SceneID int32
	Unknown int8
}

func (PlaySceneRecord) Opcode() Opcode { return OpPlayScene }

type OpenMenuRecord struct {
	Source   int32
	MenuType int32
	ShopID   int32
}

func (OpenMenuRecord) Opcode() Opcode { return OpOpenMenu }

type GetItemsItem struct {
	ItemID   uint32
	Quantity uint16
}

type GetItemsRecord struct {
	Items []GetItemsItem
}

func (GetItemsRecord) Opcode() Opcode { return OpGetItems }

type HomepointRecord struct{}

func (HomepointRecord) Opcode() Opcode { return OpHomepoint }

type StageEffectRecord struct {
	MessageID  int32
	Effect1    int8
	Effect2Set bool
	Effect2    int32
}

func (StageEffectRecord) Opcode() Opcode { return OpStageEffect }

type DirectionRecord struct {
	Direction int32
}

func (DirectionRecord) Opcode() Opcode { return OpDirection }

type SpecialDirectionRecord struct {
	Special1  uint8
	Special2  uint8
	Direction int32
}

func (SpecialDirectionRecord) Opcode() Opcode { return OpSpecialDirection }

type PlaySoundRecord struct {
	SoundID int32
	Delay   int32
}

func (PlaySoundRecord) Opcode() Opcode { return OpPlaySound }

type PlayBGMRecord struct {
	MusicID     int32
	FadeInDelay int32
	Unknown     int32
}

func (PlayBGMRecord) Opcode() Opcode { return OpPlayBGM }

type StopBGMRecord struct{}

func (StopBGMRecord) Opcode() Opcode { return OpStopBGM }

type EventResponseRecord struct {
	Response int32
}

func (EventResponseRecord) Opcode() Opcode { return OpEventResponse }

type EventEndRecord struct{}

func (EventEndRecord) Opcode() Opcode { return OpEventEnd }

// FlagRecord covers MapFlag, UnionFlag, and ValuableList, which share a
// "skip N header bytes then a raw bitmap" shape (§6).
type FlagRecord struct {
	Kind   FlagKind
	Bitmap []byte
}

type FlagKind int

const (
	FlagKindMap FlagKind = iota
	FlagKindUnion
	FlagKindValuable
)

func (r FlagRecord) Opcode() Opcode {
	switch r.Kind {
	case FlagKindMap:
		return OpMapFlag
	case FlagKindUnion:
		return OpUnionFlag
	default:
		return OpValuableList
	}
}

type LNCPointsRecord struct {
	Delta int16
}

func (LNCPointsRecord) Opcode() Opcode { return OpLNCPoints }

type QuestPhaseRecord struct {
	QuestID int16
	Phase   int8
}

func (QuestPhaseRecord) Opcode() Opcode { return OpQuestPhase }

type SkillCompletedRecord struct{}

func (SkillCompletedRecord) Opcode() Opcode { return OpSkillCompleted }

type RemoveEntityRecord struct {
	EntityID int32
}

func (RemoveEntityRecord) Opcode() Opcode { return OpRemoveEntity }

type NPCStateChangeRecord struct {
	EntityID int32
	State    uint8
}

func (NPCStateChangeRecord) Opcode() Opcode { return OpNPCStateChange }
