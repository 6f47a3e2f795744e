package packets

import (
	"github.com/pkg/errors"
	"github.com/xcloudgo/gssv-stream/codec"
)

// InputReportType is a bitflag byte identifying which report kinds are
// bundled into a single input packet, mirroring
// gamestreaming_webrtc/src/packets/input.rs's InputReportType.
type InputReportType byte

const (
	InputReportMetadata       InputReportType = 1
	InputReportGamepad        InputReportType = 2
	InputReportClientMetadata InputReportType = 8
	InputReportServerMetadata InputReportType = 16
	InputReportMouse          InputReportType = 32
	InputReportKeyboard       InputReportType = 64
	InputReportVibration      InputReportType = 128
)

// InputRumblePacket is the server-to-client force-feedback command.
// Field layout and the boundary test below are taken directly from the
// 12-byte vector in input.rs.
type InputRumblePacket struct {
	ReportType              InputReportType
	RumbleType               byte
	reserved                 byte
	LeftMotorPercent         byte
	RightMotorPercent        byte
	LeftTriggerMotorPercent  byte
	RightTriggerMotorPercent byte
	DurationMS               uint16
	DelayMS                  uint16
	Repeat                   byte
}

func (p InputRumblePacket) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU8(byte(p.ReportType))
	w.PutU8(p.RumbleType)
	w.PutU8(0)
	w.PutU8(p.LeftMotorPercent)
	w.PutU8(p.RightMotorPercent)
	w.PutU8(p.LeftTriggerMotorPercent)
	w.PutU8(p.RightTriggerMotorPercent)
	w.PutU16(p.DurationMS)
	w.PutU16(p.DelayMS)
	w.PutU8(p.Repeat)
	return w.Bytes()
}

func UnmarshalInputRumblePacket(b []byte) (InputRumblePacket, error) {
	var p InputRumblePacket
	r := codec.NewReader(b)
	reportType, err := r.U8()
	if err != nil {
		return p, err
	}
	p.ReportType = InputReportType(reportType)
	if p.RumbleType, err = r.U8(); err != nil {
		return p, err
	}
	if _, err = r.U8(); err != nil { // reserved
		return p, err
	}
	if p.LeftMotorPercent, err = r.U8(); err != nil {
		return p, err
	}
	if p.RightMotorPercent, err = r.U8(); err != nil {
		return p, err
	}
	if p.LeftTriggerMotorPercent, err = r.U8(); err != nil {
		return p, err
	}
	if p.RightTriggerMotorPercent, err = r.U8(); err != nil {
		return p, err
	}
	if p.DurationMS, err = r.U16(); err != nil {
		return p, err
	}
	if p.DelayMS, err = r.U16(); err != nil {
		return p, err
	}
	if p.Repeat, err = r.U8(); err != nil {
		return p, err
	}
	return p, nil
}

// InputMetadataEntry is one latency-measurement sample queued onto an
// InputMetadata report.
type InputMetadataEntry struct {
	ServerDataKey                uint32
	FirstFramePacketArrivalTimeMS uint32
	FrameSubmittedTimeMS          uint32
	FrameDecodedTimeMS            uint32
	FrameRenderedTimeMS           uint32
	FramePacketTime               uint32
	FrameDateNow                  uint32
}

func (e InputMetadataEntry) marshal(w *codec.Writer) {
	w.PutU32(e.ServerDataKey)
	w.PutU32(e.FirstFramePacketArrivalTimeMS)
	w.PutU32(e.FrameSubmittedTimeMS)
	w.PutU32(e.FrameDecodedTimeMS)
	w.PutU32(e.FrameRenderedTimeMS)
	w.PutU32(e.FramePacketTime)
	w.PutU32(e.FrameDateNow)
}

func unmarshalInputMetadataEntry(r *codec.Reader) (InputMetadataEntry, error) {
	var e InputMetadataEntry
	fields := []*uint32{
		&e.ServerDataKey, &e.FirstFramePacketArrivalTimeMS, &e.FrameSubmittedTimeMS,
		&e.FrameDecodedTimeMS, &e.FrameRenderedTimeMS, &e.FramePacketTime, &e.FrameDateNow,
	}
	for _, f := range fields {
		v, err := r.U32()
		if err != nil {
			return e, err
		}
		*f = v
	}
	return e, nil
}

// InputMetadata reports queued client-side latency samples.
type InputMetadata struct {
	ReportType   InputReportType
	SequenceNum  uint32
	Timestamp    float64
	Metadata     []InputMetadataEntry
}

func (m InputMetadata) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU8(byte(m.ReportType))
	w.PutU32(m.SequenceNum)
	w.PutF64(m.Timestamp)
	w.PutU8(byte(len(m.Metadata)))
	for i := range m.Metadata {
		m.Metadata[i].marshal(w)
	}
	return w.Bytes()
}

func UnmarshalInputMetadata(b []byte) (InputMetadata, error) {
	var m InputMetadata
	r := codec.NewReader(b)
	reportType, err := r.U8()
	if err != nil {
		return m, err
	}
	m.ReportType = InputReportType(reportType)
	if m.SequenceNum, err = r.U32(); err != nil {
		return m, err
	}
	if m.Timestamp, err = r.F64(); err != nil {
		return m, err
	}
	queueLen, err := r.U8()
	if err != nil {
		return m, err
	}
	m.Metadata = make([]InputMetadataEntry, queueLen)
	for i := range m.Metadata {
		if m.Metadata[i], err = unmarshalInputMetadataEntry(r); err != nil {
			return m, err
		}
	}
	return m, nil
}

// GamepadData is one gamepad sample, matching input.rs's GamepadData
// exactly.
type GamepadData struct {
	GamepadIndex       byte
	ButtonMask         uint16
	LeftThumbX         int16
	LeftThumbY         int16
	RightThumbX        int16
	RightThumbY        int16
	LeftTrigger        uint16
	RightTrigger       uint16
	PhysicalPhysicality uint32
	VirtualPhysicality  uint32
}

func (g GamepadData) marshal(w *codec.Writer) {
	w.PutU8(g.GamepadIndex)
	w.PutU16(g.ButtonMask)
	w.PutI16(g.LeftThumbX)
	w.PutI16(g.LeftThumbY)
	w.PutI16(g.RightThumbX)
	w.PutI16(g.RightThumbY)
	w.PutU16(g.LeftTrigger)
	w.PutU16(g.RightTrigger)
	w.PutU32(g.PhysicalPhysicality)
	w.PutU32(g.VirtualPhysicality)
}

func unmarshalGamepadData(r *codec.Reader) (GamepadData, error) {
	var g GamepadData
	var err error
	if g.GamepadIndex, err = r.U8(); err != nil {
		return g, err
	}
	if g.ButtonMask, err = r.U16(); err != nil {
		return g, err
	}
	if g.LeftThumbX, err = r.I16(); err != nil {
		return g, err
	}
	if g.LeftThumbY, err = r.I16(); err != nil {
		return g, err
	}
	if g.RightThumbX, err = r.I16(); err != nil {
		return g, err
	}
	if g.RightThumbY, err = r.I16(); err != nil {
		return g, err
	}
	if g.LeftTrigger, err = r.U16(); err != nil {
		return g, err
	}
	if g.RightTrigger, err = r.U16(); err != nil {
		return g, err
	}
	if g.PhysicalPhysicality, err = r.U32(); err != nil {
		return g, err
	}
	if g.VirtualPhysicality, err = r.U32(); err != nil {
		return g, err
	}
	return g, nil
}

// InputGamepad reports one or more gamepad samples taken since the
// previous flush.
type InputGamepad struct {
	ReportType  InputReportType
	SequenceNum uint32
	Timestamp   float64
	Gamepads    []GamepadData
}

func (g InputGamepad) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU8(byte(g.ReportType))
	w.PutU32(g.SequenceNum)
	w.PutF64(g.Timestamp)
	w.PutU8(byte(len(g.Gamepads)))
	for i := range g.Gamepads {
		g.Gamepads[i].marshal(w)
	}
	return w.Bytes()
}

func UnmarshalInputGamepad(b []byte) (InputGamepad, error) {
	var g InputGamepad
	r := codec.NewReader(b)
	reportType, err := r.U8()
	if err != nil {
		return g, err
	}
	g.ReportType = InputReportType(reportType)
	if g.SequenceNum, err = r.U32(); err != nil {
		return g, err
	}
	if g.Timestamp, err = r.F64(); err != nil {
		return g, err
	}
	count, err := r.U8()
	if err != nil {
		return g, err
	}
	g.Gamepads = make([]GamepadData, count)
	for i := range g.Gamepads {
		if g.Gamepads[i], err = unmarshalGamepadData(r); err != nil {
			return g, err
		}
	}
	return g, nil
}

// InputClientMetadata is the small client-identity report sent once on
// channel start.
type InputClientMetadata struct {
	ReportType  InputReportType
	SequenceNum uint32
	Timestamp   float64
	Metadata    byte
}

func (m InputClientMetadata) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU8(byte(m.ReportType))
	w.PutU32(m.SequenceNum)
	w.PutF64(m.Timestamp)
	w.PutU8(m.Metadata)
	return w.Bytes()
}

func UnmarshalInputClientMetadata(b []byte) (InputClientMetadata, error) {
	var m InputClientMetadata
	r := codec.NewReader(b)
	reportType, err := r.U8()
	if err != nil {
		return m, err
	}
	m.ReportType = InputReportType(reportType)
	if m.SequenceNum, err = r.U32(); err != nil {
		return m, err
	}
	if m.Timestamp, err = r.F64(); err != nil {
		return m, err
	}
	if m.Metadata, err = r.U8(); err != nil {
		return m, err
	}
	return m, nil
}

var errUnknownInputReportType = errors.New("packets: unrecognized input report type byte")
