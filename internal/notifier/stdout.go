package notifier

import (
	"fmt"
)

type StdoutNotifier struct {
	name string
}

func NewStdoutNotifier(name string) (*StdoutNotifier, error) {
	return &StdoutNotifier{name: name}, nil
}

func (sn *StdoutNotifier) Name() string {
	return sn.name
}

func (sn *StdoutNotifier) Send(data NotificationData, templates Templates) error {
	msg, err := renderTemplate("stdout_message", templates.Alert, data)
	if err != nil {
		return fmt.Errorf("failed to render message for channel '%s': %w", sn.name, err)
	}

	fmt.Printf("%s\n", msg)
	return nil
}
