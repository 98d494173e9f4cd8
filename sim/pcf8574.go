package sim

import "sync"

var _ Target = &PCF8574{}

// PinSink receives the expander output port every time it changes.
type PinSink interface {
	SetPins(pins byte)
}

// PCF8574 is a quasi-bidirectional 8 bit expander. Every received byte is
// latched on the output port.
type PCF8574 struct {
	mx     sync.Mutex
	sink   PinSink
	pins   byte
	writes []byte
	nacks  int
}

func NewPCF8574(sink PinSink) *PCF8574 {
	return &PCF8574{sink: sink, pins: 0xFF}
}

// RejectNext makes the expander refuse (and not latch) the next n data bytes.
func (p *PCF8574) RejectNext(n int) {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.nacks = n
}

func (p *PCF8574) Pins() byte {
	p.mx.Lock()
	defer p.mx.Unlock()
	return p.pins
}

// Writes returns every byte latched on the port so far.
func (p *PCF8574) Writes() []byte {
	p.mx.Lock()
	defer p.mx.Unlock()
	res := make([]byte, len(p.writes))
	copy(res, p.writes)
	return res
}

func (p *PCF8574) ResetWrites() {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.writes = nil
}

func (p *PCF8574) Start() bool {
	return true
}

func (p *PCF8574) Receive(b byte) bool {
	p.mx.Lock()
	if p.nacks > 0 {
		p.nacks--
		p.mx.Unlock()
		return false
	}
	p.pins = b
	p.writes = append(p.writes, b)
	sink := p.sink
	p.mx.Unlock()
	if sink != nil {
		sink.SetPins(b)
	}
	return true
}

func (p *PCF8574) Stop() {}
