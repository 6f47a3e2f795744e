package packets

import "encoding/json"

// Envelope is the JSON wrapper every message exchanged over the control
// and message data channels is wrapped in, grounded on
// gamestreaming_webrtc/src/channels/message.rs's generate_message/
// send_transaction helpers.
type Envelope struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	ID      string `json:"id"`
	Target  string `json:"target,omitempty"`
	CV      string `json:"cv"`

	Version string `json:"version,omitempty"`
}

// NewHandshakeEnvelope builds the first message sent on channel open,
// matching message.rs's on_open payload.
func NewHandshakeEnvelope(id string) Envelope {
	return Envelope{Type: "Handshake", Version: "messageV1", ID: id, CV: ""}
}

// NewMessageEnvelope wraps data as JSON content addressed at target,
// matching generate_message.
func NewMessageEnvelope(id, target string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: "Message", Content: string(raw), ID: id, Target: target, CV: ""}, nil
}

// NewTransactionCompleteEnvelope wraps data as a TransactionComplete
// reply, matching send_transaction.
func NewTransactionCompleteEnvelope(id, target string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: "TransactionComplete", Content: string(raw), ID: id, Target: target, CV: ""}, nil
}

// AuthorizationRequest is sent by both the control and message channels
// immediately after the handshake completes, grounded on control.rs's and
// message.rs's shared start() behavior.
type AuthorizationRequest struct {
	AccessKey string `json:"accessKey"`
}

// GSSVAccessKey is the fixed access key both channels authorize with.
const GSSVAccessKey = "4BDB3609-C1F1-4195-9B37-FEFF45DA8B8E"

// GamepadChanged announces gamepad presence to the server.
type GamepadChanged struct {
	GamepadIndex int  `json:"gamepadIndex"`
	WasAdded     bool `json:"wasAdded"`
}

// VideoKeyframeRequested asks the server for an IDR frame, matching
// control.rs's request_keyframe.
type VideoKeyframeRequested struct {
	Message      string `json:"message"`
	IFRRequested bool   `json:"ifrRequested"`
}

func NewVideoKeyframeRequested() VideoKeyframeRequested {
	return VideoKeyframeRequested{Message: "videoKeyframeRequested", IFRRequested: true}
}

// Dimensions describes the client's rendering surface, sent on the
// dimensionschanged characteristic.
type Dimensions struct {
	Horizontal             int  `json:"horizontal"`
	Vertical               int  `json:"vertical"`
	PreferredWidth         int  `json:"preferredWidth"`
	PreferredHeight        int  `json:"preferredHeight"`
	SafeAreaLeft           int  `json:"safeAreaLeft"`
	SafeAreaTop            int  `json:"safeAreaTop"`
	SafeAreaRight          int  `json:"safeAreaRight"`
	SafeAreaBottom         int  `json:"safeAreaBottom"`
	SupportsCustomResolution bool `json:"supportsCustomResolution"`
}

// DefaultDimensions matches message.rs's fixed 1920x1080 bundle.
func DefaultDimensions() Dimensions {
	return Dimensions{
		Horizontal: 1920, Vertical: 1080,
		PreferredWidth: 1920, PreferredHeight: 1080,
		SafeAreaLeft: 0, SafeAreaTop: 0, SafeAreaRight: 1920, SafeAreaBottom: 1080,
		SupportsCustomResolution: true,
	}
}

// SystemUIConfiguration mirrors message.rs's systemUi/configuration
// payload; the systemUis values are opaque UI surface codes upstream
// documents only positionally.
type SystemUIConfiguration struct {
	SystemUIs []int `json:"systemUis"`
	Version   []int `json:"version"`
}

// DefaultSystemUIConfiguration matches the fixed bundle message.rs sends
// after HandshakeAck: UI codes 10,19,31,27,32,-41 at version 0.1.0.
func DefaultSystemUIConfiguration() SystemUIConfiguration {
	return SystemUIConfiguration{
		SystemUIs: []int{10, 19, 31, 27, 32, -41},
		Version:   []int{0, 1, 0},
	}
}

// ClientAppInstallIDChanged reports the client's install identifier.
type ClientAppInstallIDChanged struct {
	ClientAppInstallID string `json:"clientAppInstallId"`
}

// OrientationChanged reports device orientation (0 = unrotated landscape).
type OrientationChanged struct {
	Orientation int `json:"orientation"`
}

// TouchInputEnabledChanged reports whether the client surface accepts
// touch input.
type TouchInputEnabledChanged struct {
	TouchInputEnabled bool `json:"touchInputEnabled"`
}
