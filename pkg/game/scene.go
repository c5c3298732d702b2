package game

import (
	"encoding/json"

	"github.com/jwebster45206/narrative-engine/pkg/content"
	"github.com/jwebster45206/narrative-engine/pkg/script"
)

// Scene is one node in the story graph.
type Scene struct {
	ID string `json:"-"`

	Title               *content.Template `json:"title,omitempty"`
	Subtitle            *content.Template `json:"subtitle,omitempty"`
	UnavailableSubtitle *content.Template `json:"unavailableSubtitle,omitempty"`
	Content             *content.Template `json:"content,omitempty"`

	Options []*Option `json:"options,omitempty"`
	GoTo    []GoTo    `json:"goTo,omitempty"`
	// GoToRef targets name a quality whose value is the actual scene id.
	GoToRef []GoTo `json:"goToRef,omitempty"`

	// Check fields. A check is active only when CheckQuality, one of the
	// difficulties, and both targets are set.
	CheckQuality        string  `json:"checkQuality,omitempty"`
	BroadDifficulty     float64 `json:"broadDifficulty,omitempty"`
	NarrowDifficulty    float64 `json:"narrowDifficulty,omitempty"`
	CheckSuccessGoTo    string  `json:"checkSuccessGoTo,omitempty"`
	CheckFailureGoTo    string  `json:"checkFailureGoTo,omitempty"`
	DifficultyScaler    float64 `json:"difficultyScaler,omitempty"`
	DifficultyIncrement float64 `json:"difficultyIncrement,omitempty"`

	// Selection metadata used when this scene is the target of an option.
	Order     int       `json:"order,omitempty"`
	Priority  int       `json:"priority,omitempty"`
	Frequency Frequency `json:"frequency,omitzero"`

	MinChoices int `json:"minChoices,omitempty"`
	MaxChoices int `json:"maxChoices,omitempty"`

	ViewIf   *script.Unit `json:"viewIf,omitempty"`
	ChooseIf *script.Unit `json:"chooseIf,omitempty"`

	OnArrival   []*script.Unit `json:"onArrival,omitempty"`
	OnDeparture []*script.Unit `json:"onDeparture,omitempty"`
	OnDisplay   []*script.Unit `json:"onDisplay,omitempty"`

	// Call names a scene whose arrival actions also run on arrival here.
	Call string `json:"call,omitempty"`

	// Lifecycle flags.
	IsTop          bool   `json:"isTop,omitempty"`
	IsSpecial      bool   `json:"isSpecial,omitempty"`
	SetRoot        bool   `json:"setRoot,omitempty"`
	SetJump        string `json:"setJump,omitempty"`
	NewPage        bool   `json:"newPage,omitempty"`
	CountVisitsMax int    `json:"countVisitsMax,omitempty"`
	MaxVisits      int    `json:"maxVisits,omitempty"`
	// GameOver: true ends the game on arrival; false suppresses the
	// implicit game over when no choices remain; nil is the default.
	GameOver *bool `json:"gameOver,omitempty"`

	Signal string `json:"signal,omitempty"`
	Style  string `json:"style,omitempty"`

	// Presentation side effects, passed through to the UI as declared.
	FaceImage           string            `json:"faceImage,omitempty"`
	SetBg               string            `json:"setBg,omitempty"`
	SetSprites          map[string]string `json:"setSprites,omitempty"`
	Audio               any               `json:"audio,omitempty"`
	SetTopLeftStyle     map[string]string `json:"setTopLeftStyle,omitempty"`
	SetTopRightStyle    map[string]string `json:"setTopRightStyle,omitempty"`
	SetBottomLeftStyle  map[string]string `json:"setBottomLeftStyle,omitempty"`
	SetBottomRightStyle map[string]string `json:"setBottomRightStyle,omitempty"`
	Achievement         string            `json:"achievement,omitempty"`

	// Deck/card/hand extension.
	IsDeck       bool   `json:"isDeck,omitempty"`
	IsCard       bool   `json:"isCard,omitempty"`
	IsPinnedCard bool   `json:"isPinnedCard,omitempty"`
	IsHand       bool   `json:"isHand,omitempty"`
	MaxCards     int    `json:"maxCards,omitempty"`
	CardImage    string `json:"cardImage,omitempty"`
}

// HasCheck reports whether the scene declares a fully-specified check.
func (s *Scene) HasCheck() bool {
	return s.CheckQuality != "" &&
		(s.BroadDifficulty != 0 || s.NarrowDifficulty != 0) &&
		s.CheckSuccessGoTo != "" && s.CheckFailureGoTo != ""
}

// GoTo is one conditional transition target.
type GoTo struct {
	ID        string       `json:"id"`
	Predicate *script.Unit `json:"predicate,omitempty"`
}

// Option is an authored candidate edge from a scene. ID is either "@sceneId"
// or "#tag"; the remaining fields override the target scene's own selection
// metadata and display text.
type Option struct {
	ID                  string            `json:"id"`
	Title               *content.Template `json:"title,omitempty"`
	Subtitle            *content.Template `json:"subtitle,omitempty"`
	UnavailableSubtitle *content.Template `json:"unavailableSubtitle,omitempty"`
	ViewIf              *script.Unit      `json:"viewIf,omitempty"`
	ChooseIf            *script.Unit      `json:"chooseIf,omitempty"`
	Order               int               `json:"order,omitempty"`
	Priority            int               `json:"priority,omitempty"`
	Frequency           Frequency         `json:"frequency,omitzero"`
}

// Frequency distinguishes the three authored states of a frequency field:
// unset (defaults apply), explicit null (the always-include sentinel in
// frequency-weighted selection) and an explicit value.
type Frequency struct {
	Set   bool
	Null  bool
	Value float64
}

// UnmarshalJSON is called for both explicit values and explicit nulls, but
// not for absent fields, which is exactly the distinction needed.
func (f *Frequency) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Null = true
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON writes the explicit value or null; unset marshals as null too
// since the zero value only round-trips through omitzero.
func (f Frequency) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// IsZero lets omitzero drop unset frequencies.
func (f Frequency) IsZero() bool { return !f.Set }
