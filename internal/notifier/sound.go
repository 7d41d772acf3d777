package notifier

import (
	"fmt"
	"os/exec"

	"github.com/orefwatch/orefwatch/internal/config"
)

// SoundNotifier shells out to an external audio player (afplay, paplay,
// mpg123, ...) so an alert is audible even when no one is watching a screen.
type SoundNotifier struct {
	name string
	cfg  config.SoundChannelConfig
}

func NewSoundNotifier(name string, cfg config.SoundChannelConfig) (*SoundNotifier, error) {
	return &SoundNotifier{name: name, cfg: cfg}, nil
}

func (sn *SoundNotifier) Name() string {
	return sn.name
}

func (sn *SoundNotifier) Send(data NotificationData, templates Templates) error {
	cmd := exec.Command(sn.cfg.Command, sn.cfg.Args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("sound command failed for channel '%s': %w (output: %s)", sn.name, err, string(out))
	}
	return nil
}
