package notify

import "github.com/gen2brain/beeep"

// ToneAlert plays the inbound-message chime through the system beeper:
// three short tones, 800, 600, 800 Hz.
type ToneAlert struct{}

func (ToneAlert) Alert() error {
	for _, freq := range []float64{800, 600, 800} {
		if err := beeep.Beep(freq, 100); err != nil {
			return err
		}
	}
	return nil
}

// Desktop raises a system notification. On macOS it goes through
// terminal-notifier or AppleScript, on Linux D-Bus or notify-send, on
// Windows the Runtime COM API.
func Desktop(title, body string) error {
	return beeep.Notify(title, body, "")
}
