package model

// SipSize selects how much the session animation asks the user to drink.
type SipSize string

const (
	SmallSip  SipSize = "small_sip"
	MediumSip SipSize = "medium_sip"
	BigSip    SipSize = "big_sip"
)

// DrinkCharacter selects the companion shown during a session.
type DrinkCharacter string

const (
	YoungWoman DrinkCharacter = "young_woman"
	YoungMan   DrinkCharacter = "young_man"
	Knight     DrinkCharacter = "knight"
	Robot      DrinkCharacter = "robot"
)

// SessionStartEvent is the handoff payload consumed by the session surface.
type SessionStartEvent struct {
	SipSize                SipSize        `json:"sip_size"`
	SelectedDrinkCharacter DrinkCharacter `json:"selected_drink_character"`
	DemoMode               bool           `json:"demo_mode"`
}
