package charlcd

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
)

// ErrorSignal is a sticky error level. It is raised when a bus condition
// fails to materialize and cleared on the next successful one. When bound to a
// pin the pin is driven High while the signal is raised.
type ErrorSignal struct {
	mx     sync.Mutex
	pin    gpio.PinOut
	raised bool
}

func NewErrorSignal(pin gpio.PinOut) *ErrorSignal {
	return &ErrorSignal{pin: pin}
}

func (s *ErrorSignal) Raise() error {
	return s.set(true)
}

func (s *ErrorSignal) Clear() error {
	return s.set(false)
}

func (s *ErrorSignal) Raised() bool {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.raised
}

func (s *ErrorSignal) set(raised bool) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.raised = raised
	if s.pin == nil {
		return nil
	}
	level := gpio.Low
	if raised {
		level = gpio.High
	}
	if err := s.pin.Out(level); err != nil {
		return fmt.Errorf("could not drive error pin %s: %w", s.pin.Name(), err)
	}
	return nil
}
