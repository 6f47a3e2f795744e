package packets_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xcloudgo/gssv-stream/packets"
)

// TestInputRumblePacketVector reproduces input.rs's rumble test vector:
// [0x80,0x00,0x00,0xF1,0xF2,0xF3,0xF4,0x50,0x01,0xFF,0x01,0x10].
func TestInputRumblePacketVector(t *testing.T) {
	raw := []byte{0x80, 0x00, 0x00, 0xF1, 0xF2, 0xF3, 0xF4, 0x50, 0x01, 0xFF, 0x01, 0x10}
	p, err := packets.UnmarshalInputRumblePacket(raw)
	require.NoError(t, err)

	require.Equal(t, packets.InputReportVibration, p.ReportType)
	require.EqualValues(t, 0, p.RumbleType)
	require.EqualValues(t, 0xF1, p.LeftMotorPercent)
	require.EqualValues(t, 0xF2, p.RightMotorPercent)
	require.EqualValues(t, 0xF3, p.LeftTriggerMotorPercent)
	require.EqualValues(t, 0xF4, p.RightTriggerMotorPercent)
	require.EqualValues(t, 0x0150, p.DurationMS)
	require.EqualValues(t, 0x01FF, p.DelayMS)
	require.EqualValues(t, 0x10, p.Repeat)

	require.Equal(t, raw, p.Marshal())
}

func TestInputGamepadRoundTrip(t *testing.T) {
	g := packets.InputGamepad{
		ReportType:  packets.InputReportGamepad,
		SequenceNum: 4,
		Timestamp:   1.5,
		Gamepads: []packets.GamepadData{
			{GamepadIndex: 0, ButtonMask: 0x0003, LeftThumbX: -100, RightTrigger: 255},
		},
	}
	got, err := packets.UnmarshalInputGamepad(g.Marshal())
	require.NoError(t, err)
	require.Equal(t, g, got)
}

func TestInputClientMetadataRoundTrip(t *testing.T) {
	m := packets.InputClientMetadata{ReportType: packets.InputReportClientMetadata, SequenceNum: 1, Timestamp: 0, Metadata: 0}
	got, err := packets.UnmarshalInputClientMetadata(m.Marshal())
	require.NoError(t, err)
	require.Equal(t, m, got)
}
