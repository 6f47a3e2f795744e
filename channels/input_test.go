package channels_test

import (
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/xcloudgo/gssv-stream/channels"
	"github.com/xcloudgo/gssv-stream/packets"
)

func TestInputProcessorFlushOnButtonPress(t *testing.T) {
	sink := make(channels.Sink, 4)
	var sent [][]byte
	p := channels.NewInputProcessor(sink, func(data []byte) error {
		sent = append(sent, data)
		return nil
	}, zerolog.Nop())

	p.OnMetadata(packets.InputMetadataEntry{ServerDataKey: 1})
	require.Empty(t, sent, "metadata alone must not flush")

	p.OnButtonPress(packets.GamepadData{GamepadIndex: 0, ButtonMask: 0x01})
	require.Len(t, sent, 2, "button press flushes both gamepad and metadata frames")

	gp, err := packets.UnmarshalInputGamepad(sent[0])
	require.NoError(t, err)
	require.Equal(t, packets.InputReportGamepad, gp.ReportType)
	require.Len(t, gp.Gamepads, 1)
	require.Equal(t, uint16(0x01), gp.Gamepads[0].ButtonMask)

	md, err := packets.UnmarshalInputMetadata(sent[1])
	require.NoError(t, err)
	require.Len(t, md.Metadata, 1)
	require.Equal(t, uint32(1), md.Metadata[0].ServerDataKey)
}

func TestInputProcessorSequenceNumMonotonic(t *testing.T) {
	sink := make(channels.Sink, 4)
	p := channels.NewInputProcessor(sink, func(data []byte) error { return nil }, zerolog.Nop())

	p.Start()
	p.OnButtonPress(packets.GamepadData{})
	p.OnButtonPress(packets.GamepadData{})
}

func TestInputProcessorOnMessageForwardsRumble(t *testing.T) {
	sink := make(channels.Sink, 1)
	p := channels.NewInputProcessor(sink, func(data []byte) error { return nil }, zerolog.Nop())

	rumble := packets.InputRumblePacket{
		ReportType:       packets.InputReportVibration,
		LeftMotorPercent: 0xF1,
	}
	err := p.OnMessage(webrtc.DataChannelMessage{Data: rumble.Marshal()})
	require.NoError(t, err)

	ev := <-sink
	require.Equal(t, channels.TypeInput, ev.Channel)
	require.Equal(t, channels.EventGamepadRumble, ev.Kind)
	got, ok := ev.Payload.(packets.InputRumblePacket)
	require.True(t, ok)
	require.Equal(t, byte(0xF1), got.LeftMotorPercent)
}

func TestInputProcessorOnMessageRejectsNonVibration(t *testing.T) {
	sink := make(channels.Sink, 1)
	p := channels.NewInputProcessor(sink, func(data []byte) error { return nil }, zerolog.Nop())

	nonVibration := packets.InputRumblePacket{ReportType: 0}
	err := p.OnMessage(webrtc.DataChannelMessage{Data: nonVibration.Marshal()})
	require.Error(t, err)
}
