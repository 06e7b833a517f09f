package widget

import (
	"time"

	"github.com/google/uuid"
)

// ThemeMode selects the overall visual theme of the widget.
type ThemeMode string

const (
	ThemeKawaii ThemeMode = "kawaii"
	ThemeMario  ThemeMode = "mario"
	ThemeNeon   ThemeMode = "neon"
)

// WidgetStyle selects the widget frame layout.
type WidgetStyle string

const (
	StyleStandard WidgetStyle = "standard" // card box, fixed mascot
	StyleCompact  WidgetStyle = "compact"  // transparent, mascot walks on bar
)

// WidgetPosition anchors the widget inside the overlay viewport.
type WidgetPosition string

const (
	PositionTopLeft      WidgetPosition = "top-left"
	PositionTopRight     WidgetPosition = "top-right"
	PositionBottomLeft   WidgetPosition = "bottom-left"
	PositionBottomRight  WidgetPosition = "bottom-right"
	PositionCenterTop    WidgetPosition = "center-top"
	PositionCenterBottom WidgetPosition = "center-bottom"
)

// MascotType names the mascot sprite set.
type MascotType string

const (
	MascotCatGamer MascotType = "cat-gamer"
	MascotShiba    MascotType = "shiba"
	MascotLuma     MascotType = "luma"
	MascotRobot    MascotType = "robot"
	MascotBunny    MascotType = "bunny"
	MascotGhost    MascotType = "ghost"
	MascotSlime    MascotType = "slime"
	MascotAxolotl  MascotType = "axolotl"
	MascotDragon   MascotType = "dragon"
)

// MascotReaction is the face the mascot pulls when a donation lands.
type MascotReaction string

const (
	ReactionHappy   MascotReaction = "happy"
	ReactionLove    MascotReaction = "love"
	ReactionShocked MascotReaction = "shocked"
	ReactionCool    MascotReaction = "cool"
	ReactionCrying  MascotReaction = "crying"
	ReactionAngry   MascotReaction = "angry"
)

// GoalMode selects between a single target and repeating sub-goals.
type GoalMode string

const (
	GoalSimple   GoalMode = "simple"
	GoalSubGoals GoalMode = "subgoals"
)

// CompactTitleAlign positions the title in compact style.
type CompactTitleAlign string

const (
	AlignLeft  CompactTitleAlign = "left"
	AlignRight CompactTitleAlign = "right"
)

// Donation is one recorded contribution. Immutable once created.
// Timestamp is milliseconds since epoch to stay wire-compatible with
// snapshots produced by existing overlays.
type Donation struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Amount    float64 `json:"amount"`
	Message   string  `json:"message"`
	Timestamp int64   `json:"timestamp"`
}

// NewDonation stamps a fresh donation record.
func NewDonation(amount float64, username, message string) Donation {
	return Donation{
		ID:        uuid.NewString(),
		Username:  username,
		Amount:    amount,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}
}

// TrailReward is a one-off threshold below the final goal with a custom
// label, surfaced once when crossed.
type TrailReward struct {
	ID     string    `json:"id"`
	Amount FlexFloat `json:"amount"`
	Label  string    `json:"label"`
}

// WidgetSettings is the full configuration-and-progress aggregate shared
// between the editor and overlay views. Numeric goal fields use FlexFloat
// because snapshots restored from URLs or older stores may carry them as
// strings.
type WidgetSettings struct {
	Theme ThemeMode   `json:"theme"`
	Style WidgetStyle `json:"style"`

	// Goal logic
	GoalMode        GoalMode  `json:"goalMode"`
	GoalAmount      FlexFloat `json:"goalAmount"`
	CurrentAmount   FlexFloat `json:"currentAmount"`
	SubGoalInterval FlexFloat `json:"subGoalInterval"`
	GoalStartDate   string    `json:"goalStartDate"`
	GoalEndDate     string    `json:"goalEndDate"`

	// Visuals
	Currency            string            `json:"currency"`
	Title               string            `json:"title"`
	Mascot              MascotType        `json:"mascot"`
	PrimaryColor        string            `json:"primaryColor"`
	SecondaryColor      string            `json:"secondaryColor"`
	ShowRecentDonations bool              `json:"showRecentDonations"`
	ShowTopDonor        bool              `json:"showTopDonor"`
	Opacity             float64           `json:"opacity"`
	Scale               float64           `json:"scale"`
	MascotScale         float64           `json:"mascotScale"`
	Position            WidgetPosition    `json:"position"`
	ReactionType        MascotReaction    `json:"reactionType"`
	UseCustomBarColor   bool              `json:"useCustomBarColor"`
	CustomBarColor      string            `json:"customBarColor"`
	CompactTitleAlign   CompactTitleAlign `json:"compactTitleAlign"`
	CompactWidth        int               `json:"compactWidth"`

	// Title customization
	TitleFontSize       int    `json:"titleFontSize"`
	CompactTitleOffset  int    `json:"compactTitleOffset"`
	UseCustomTitleColor bool   `json:"useCustomTitleColor"`
	CustomTitleColor    string `json:"customTitleColor"`

	// Roulette / events
	EnableRoulette bool          `json:"enableRoulette"`
	RouletteEvents []string      `json:"rouletteEvents"`
	TrailRewards   []TrailReward `json:"trailRewards"`

	// Integrations
	StreamElementsToken string `json:"streamElementsToken"`
	LivePixKey          string `json:"livePixKey"`
}

// DefaultSettings returns the aggregate a brand-new editor view starts
// from when neither a snapshot nor a local store is available.
func DefaultSettings() WidgetSettings {
	return WidgetSettings{
		Theme:           ThemeKawaii,
		Style:           StyleStandard,
		GoalMode:        GoalSubGoals,
		GoalAmount:      500,
		CurrentAmount:   0,
		SubGoalInterval: 100,
		Currency:        "R$",
		Title:           "Monthly Goal",
		Mascot:          MascotCatGamer,
		PrimaryColor:    "#FFB7C5",
		SecondaryColor:  "#E0F7FA",

		ShowRecentDonations: true,
		ShowTopDonor:        true,
		Opacity:             0.95,
		Scale:               1,
		MascotScale:         1,
		Position:            PositionCenterBottom,
		ReactionType:        ReactionHappy,
		UseCustomBarColor:   false,
		CustomBarColor:      "#4ade80",
		CompactTitleAlign:   AlignLeft,
		CompactWidth:        400,

		TitleFontSize:       14,
		CompactTitleOffset:  0,
		UseCustomTitleColor: false,
		CustomTitleColor:    "#ffffff",

		EnableRoulette: true,
		RouletteEvents: []string{
			"ASMR Stream",
			"Cosplay",
			"Horror Game",
			"Karaoke",
			"Giveaway",
			"Chat Picks Game",
		},
	}
}

// SeedDonations are the sample entries an editor view shows before any
// real event arrives, so the operator sees the list render.
func SeedDonations() []Donation {
	now := time.Now().UnixMilli()
	return []Donation{
		{ID: uuid.NewString(), Username: "NekoChan99", Amount: 50, Message: "Keep it up!", Timestamp: now},
		{ID: uuid.NewString(), Username: "MarioFan", Amount: 20, Message: "Here we go!", Timestamp: now - 10000},
		{ID: uuid.NewString(), Username: "CyberPunk", Amount: 100, Message: "Neon vibes only.", Timestamp: now - 20000},
	}
}
