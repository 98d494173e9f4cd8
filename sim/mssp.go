// Package sim simulates the I2C hardware used by the display stack: a master
// serial port peripheral, a PCF8574 expander and an HD44780 controller wired
// to it. It has no timing model; conditions complete after a fixed number of
// register reads.
package sim

import (
	"fmt"
	"sync"

	"github.com/mklimuk/charlcd"
	"github.com/mklimuk/charlcd/ssp"
)

var _ ssp.RegisterFile = &MSSP{}

const DefaultLatency = 3

// Target is an I2C peripheral attached to the simulated bus.
type Target interface {
	// Start is called when the target is addressed in write mode. It returns
	// the address acknowledgment.
	Start() bool
	// Receive is called for every data byte and returns the acknowledgment.
	Receive(b byte) bool
	Stop()
}

type EventKind int

const (
	EventStart EventKind = iota
	EventAddress
	EventData
	EventStop
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventAddress:
		return "address"
	case EventData:
		return "data"
	case EventStop:
		return "stop"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a bus level occurrence recorded by the simulator.
type Event struct {
	Kind  EventKind
	Value byte
	Ack   charlcd.Acknowledge
}

func (e Event) String() string {
	switch e.Kind {
	case EventAddress, EventData:
		return fmt.Sprintf("%s %#04x %s", e.Kind, e.Value, e.Ack)
	default:
		return e.Kind.String()
	}
}

type operation int

const (
	opNone operation = iota
	opStart
	opStop
	opByte
)

// MSSP is a simulated master synchronous serial port in I2C master mode.
type MSSP struct {
	mx      sync.Mutex
	regs    map[ssp.Register]byte
	targets map[byte]Target

	latency   int
	pending   operation
	countdown int
	shifting  byte

	addressNext bool
	active      Target

	stalled      bool
	dropStarts   int
	dropStops    int
	collideStart int

	trace []Event
}

func NewMSSP() *MSSP {
	return &MSSP{
		regs:    make(map[ssp.Register]byte),
		targets: make(map[byte]Target),
		latency: DefaultLatency,
	}
}

// Attach connects a target answering at the 7-bit address.
func (m *MSSP) Attach(address byte, t Target) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.targets[address] = t
}

// SetLatency sets the number of register reads an operation takes to complete.
func (m *MSSP) SetLatency(reads int) {
	m.mx.Lock()
	defer m.mx.Unlock()
	if reads < 1 {
		reads = 1
	}
	m.latency = reads
}

// Stall freezes (or resumes) every operation in progress, as a peer holding
// the clock line would.
func (m *MSSP) Stall(stalled bool) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.stalled = stalled
}

// DropStarts makes the next n start conditions complete without being
// detected on the bus.
func (m *MSSP) DropStarts(n int) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.dropStarts = n
}

// DropStops makes the next n stop conditions complete without being detected.
func (m *MSSP) DropStops(n int) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.dropStops = n
}

// CollideStarts makes the next n start conditions lose arbitration.
func (m *MSSP) CollideStarts(n int) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.collideStart = n
}

// InjectCollision asserts both the bus collision and the write collision flags.
func (m *MSSP) InjectCollision() {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.regs[ssp.PIR2] |= ssp.PIR2BCLIF
	m.regs[ssp.SSPCON1] |= ssp.Con1WCOL
}

func (m *MSSP) Trace() []Event {
	m.mx.Lock()
	defer m.mx.Unlock()
	res := make([]Event, len(m.trace))
	copy(res, m.trace)
	return res
}

func (m *MSSP) ResetTrace() {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.trace = nil
}

// Peek returns a register value without advancing the simulation.
func (m *MSSP) Peek(reg ssp.Register) byte {
	m.mx.Lock()
	defer m.mx.Unlock()
	return m.regs[reg]
}

// Load reads a register. Every read advances the operation in progress.
func (m *MSSP) Load(reg ssp.Register) byte {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.tick()
	return m.regs[reg]
}

func (m *MSSP) Store(reg ssp.Register, value byte) {
	m.mx.Lock()
	defer m.mx.Unlock()
	old := m.regs[reg]
	switch reg {
	case ssp.SSPSTAT:
		writable := ssp.StatSMP | ssp.StatCKE
		m.regs[reg] = old&^writable | value&writable
	case ssp.SSPCON2:
		value = value&^ssp.Con2ACKSTAT | old&ssp.Con2ACKSTAT
		m.regs[reg] = value
		switch {
		case value&ssp.Con2SEN != 0 && old&ssp.Con2SEN == 0:
			m.begin(opStart)
		case value&ssp.Con2PEN != 0 && old&ssp.Con2PEN == 0:
			m.begin(opStop)
		}
	case ssp.SSPBUF:
		if m.pending != opNone {
			m.regs[ssp.SSPCON1] |= ssp.Con1WCOL
			return
		}
		m.regs[reg] = value
		m.shifting = value
		m.regs[ssp.SSPSTAT] |= ssp.StatBF | ssp.StatRW
		m.begin(opByte)
	default:
		m.regs[reg] = value
	}
}

func (m *MSSP) begin(op operation) {
	m.pending = op
	m.countdown = m.latency
}

func (m *MSSP) tick() {
	if m.pending == opNone || m.stalled {
		return
	}
	m.countdown--
	if m.countdown > 0 {
		return
	}
	op := m.pending
	m.pending = opNone
	switch op {
	case opStart:
		m.completeStart()
	case opStop:
		m.completeStop()
	case opByte:
		m.completeByte()
	}
	m.regs[ssp.PIR1] |= ssp.PIR1SSPIF
}

func (m *MSSP) completeStart() {
	m.regs[ssp.SSPCON2] &^= ssp.Con2SEN
	if m.collideStart > 0 {
		m.collideStart--
		m.regs[ssp.PIR2] |= ssp.PIR2BCLIF
		return
	}
	if m.dropStarts > 0 {
		m.dropStarts--
		return
	}
	m.regs[ssp.SSPSTAT] = m.regs[ssp.SSPSTAT]&^ssp.StatP | ssp.StatS
	m.addressNext = true
	m.active = nil
	m.trace = append(m.trace, Event{Kind: EventStart})
}

func (m *MSSP) completeStop() {
	m.regs[ssp.SSPCON2] &^= ssp.Con2PEN
	if m.dropStops > 0 {
		m.dropStops--
		return
	}
	m.regs[ssp.SSPSTAT] = m.regs[ssp.SSPSTAT]&^ssp.StatS | ssp.StatP
	if m.active != nil {
		m.active.Stop()
		m.active = nil
	}
	m.addressNext = false
	m.trace = append(m.trace, Event{Kind: EventStop})
}

func (m *MSSP) completeByte() {
	m.regs[ssp.SSPSTAT] &^= ssp.StatBF | ssp.StatRW
	b := m.shifting
	ack := false
	kind := EventData
	switch {
	case m.addressNext:
		kind = EventAddress
		m.addressNext = false
		if t, ok := m.targets[b>>1]; ok && b&0x01 == 0 && t.Start() {
			m.active = t
			ack = true
		}
	case m.active != nil:
		ack = m.active.Receive(b)
	}
	if ack {
		m.regs[ssp.SSPCON2] &^= ssp.Con2ACKSTAT
	} else {
		m.regs[ssp.SSPCON2] |= ssp.Con2ACKSTAT
	}
	event := Event{Kind: kind, Value: b, Ack: charlcd.Nack}
	if ack {
		event.Ack = charlcd.Ack
	}
	m.trace = append(m.trace, event)
}
