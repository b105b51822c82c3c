package model

import "time"

// Settings defines editable user preferences.
type Settings struct {
	NextBreakMinutes int
	SipSize          SipSize
	Character        DrinkCharacter
	Autostart        bool
}

// DefaultSettings returns the defaults applied on first launch and whenever
// a stored value is missing or out of range.
func DefaultSettings() Settings {
	return Settings{
		NextBreakMinutes: 45,
		SipSize:          BigSip,
		Character:        YoungWoman,
		Autostart:        true,
	}
}

// NextBreakDuration converts the configured break interval to a duration.
func (settings Settings) NextBreakDuration() time.Duration {
	return time.Duration(settings.NextBreakMinutes) * time.Minute
}
