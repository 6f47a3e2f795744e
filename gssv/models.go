// Package gssv implements the GSSV session-provisioning REST client:
// title/console lookup, session start, SDP/ICE exchange, and the
// provisioning state machine that waits for a stream to become playable.
// Grounded on gamestreaming_webrtc/src/api.rs (GssvApi) and
// gamestreaming_native/src/models.rs (the request/response shapes).
package gssv

import (
	"encoding/json"
	"fmt"
)

// Platform selects which xHome/xCloud product family a session targets,
// mirroring gamestreaming_webrtc/src/client.rs's Platform.
type Platform int

const (
	PlatformCloud Platform = iota
	PlatformHome
)

func (p Platform) String() string {
	switch p {
	case PlatformCloud:
		return "cloud"
	case PlatformHome:
		return "home"
	default:
		return "unknown"
	}
}

// ParsePlatform parses "cloud"/"home" case-sensitively, matching the
// original FromStr implementation.
func ParsePlatform(s string) (Platform, error) {
	switch s {
	case "cloud":
		return PlatformCloud, nil
	case "home":
		return PlatformHome, nil
	default:
		return 0, ErrInvalidPlatform
	}
}

// StreamState is the session provisioning lifecycle state reported by
// GET .../state, per spec.md §4.F.
type StreamState string

const (
	StreamStateWaitingForResources StreamState = "WaitingForResources"
	StreamStateProvisioning        StreamState = "Provisioning"
	StreamStateReadyToConnect      StreamState = "ReadyToConnect"
	StreamStateProvisioned         StreamState = "Provisioned"
	StreamStateFailed              StreamState = "Failed"
)

// StreamErrorDetails is attached to a Failed state response.
type StreamErrorDetails struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StreamStateResponse is the GET .../state response body.
type StreamStateResponse struct {
	State        StreamState         `json:"state"`
	ErrorDetails *StreamErrorDetails `json:"errorDetails,omitempty"`
}

// StreamSRtpData carries the base64-encoded MS-SRTP master secret.
type StreamSRtpData struct {
	Key string `json:"key"`
}

// StreamServerDetails is embedded in StreamConfig.
type StreamServerDetails struct {
	IPAddress string `json:"ipAddress"`
	Port      int    `json:"port"`
}

// StreamConfig is the GET .../configuration response body.
type StreamConfig struct {
	KeepAlivePulseInSeconds int                   `json:"keepAlivePulseInSeconds"`
	ServerDetails           *StreamServerDetails  `json:"serverDetails,omitempty"`
	SRTPData                *StreamSRtpData       `json:"srtpData,omitempty"`
}

// StreamICEConfig is returned from the ICE-servers lookup endpoint.
type StreamICEConfig struct {
	ICEServers []ICEServer `json:"iceServers"`
}

// ICEServer is one STUN/TURN server descriptor.
type ICEServer struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

// TitleResult is one entry of the game-title catalog lookup, grounded on
// models.rs's CloudGameTitle / CloudGameTitleDetails.
type TitleResult struct {
	TitleID     string `json:"titleId"`
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	IsSupported bool   `json:"isSupported"`
}

// TitlesResponse wraps a page of TitleResult entries.
type TitlesResponse struct {
	Results []TitleResult `json:"results"`
}

// ConsoleResult is one entry of the Home-platform console lookup.
type ConsoleResult struct {
	ServerID string `json:"serverId"`
	Name     string `json:"consoleName"`
	PowerState string `json:"powerState"`
}

// ConsolesResponse wraps the console lookup result.
type ConsolesResponse struct {
	Results []ConsoleResult `json:"results"`
}

// DeviceInfo is marshaled to JSON and sent as the X-MS-Device-Info
// header on session start, grounded on api.rs's DeviceInfo/AppInfo/
// DevInfo structs.
type DeviceInfo struct {
	AppInfo AppInfo `json:"appInfo"`
	Dev     DevInfo `json:"dev"`
}

type AppInfo struct {
	Env AppEnvironment `json:"env"`
}

type AppEnvironment struct {
	ClientAppID      string `json:"clientAppId"`
	ClientAppType    string `json:"clientAppType"`
	ClientAppVersion string `json:"clientAppVersion"`
	ClientSDKVersion string `json:"clientSdkVersion"`
	HTTPEnvironment  string `json:"httpEnvironment"`
	SDKInstallID     string `json:"sdkInstallId"`
}

type DevInfo struct {
	HW          DevHardwareInfo    `json:"hw"`
	OS          DevOSInfo          `json:"os"`
	DisplayInfo DevDisplayInfo     `json:"displayInfo"`
}

type DevHardwareInfo struct {
	Make    string `json:"make"`
	Model   string `json:"model"`
	SDKType string `json:"sdkType"`
}

type DevOSInfo struct {
	Name    string `json:"name"`
	Version string `json:"ver"`
}

type DevDisplayInfo struct {
	Dimensions   DevDisplayDimensions   `json:"dimensions"`
	PixelDensity DevDisplayPixelDensity `json:"pixelDensity"`
}

type DevDisplayDimensions struct {
	WidthInPixels  int `json:"widthInPixels"`
	HeightInPixels int `json:"heightInPixels"`
}

type DevDisplayPixelDensity struct {
	DPIX float64 `json:"dpiX"`
	DPIY float64 `json:"dpiY"`
}

// DefaultDeviceInfo matches api.rs's hardcoded device identity.
func DefaultDeviceInfo(widthPx, heightPx int) DeviceInfo {
	return DeviceInfo{
		AppInfo: AppInfo{Env: AppEnvironment{
			ClientAppID:      "Microsoft.GamingApp",
			ClientAppType:    "native",
			ClientAppVersion: "2203.1001.4.0",
			ClientSDKVersion: "5.3.0",
			HTTPEnvironment:  "prod",
			SDKInstallID:     "",
		}},
		Dev: DevInfo{
			HW: DevHardwareInfo{Make: "Microsoft", Model: "gssv-stream", SDKType: "web"},
			OS: DevOSInfo{Name: "linux", Version: "1.0"},
			DisplayInfo: DevDisplayInfo{
				Dimensions:   DevDisplayDimensions{WidthInPixels: widthPx, HeightInPixels: heightPx},
				PixelDensity: DevDisplayPixelDensity{DPIX: 96, DPIY: 96},
			},
		},
	}
}

func (d DeviceInfo) Header() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ChannelVersion bounds the min/max protocol version a client supports
// for one channel, per api.rs's ChannelVersion.
type ChannelVersion struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ChatAudioFormat describes the chat channel's audio encoding.
type ChatAudioFormat struct {
	Codec     string `json:"codec"`
	Container string `json:"container"`
}

// ChatConfiguration is embedded in SdpConfiguration.
type ChatConfiguration struct {
	BytesPerSample        int             `json:"bytesPerSample"`
	ExpectedClipDurationMS int            `json:"expectedClipDurationMs"`
	Format                ChatAudioFormat `json:"format"`
	NumChannels           int             `json:"numChannels"`
	SampleFrequencyHz     int             `json:"sampleFrequencyHz"`
}

// SdpConfiguration is attached to the SDP offer body, per api.rs's
// SdpConfiguration.
type SdpConfiguration struct {
	ContainerizeAudio bool              `json:"containerizeAudio"`
	Chat              ChannelVersion    `json:"chat"`
	Control           ChannelVersion    `json:"control"`
	Input             ChannelVersion    `json:"input"`
	Message           ChannelVersion    `json:"message"`
	ChatConfiguration ChatConfiguration `json:"chatConfiguration"`
}

// DefaultSdpConfiguration matches api.rs's fixed channel-version bundle.
func DefaultSdpConfiguration() SdpConfiguration {
	return SdpConfiguration{
		ContainerizeAudio: false,
		Chat:              ChannelVersion{Min: 1, Max: 1},
		Control:           ChannelVersion{Min: 1, Max: 3},
		Input:             ChannelVersion{Min: 1, Max: 7},
		Message:           ChannelVersion{Min: 1, Max: 1},
		ChatConfiguration: ChatConfiguration{
			BytesPerSample: 2, ExpectedClipDurationMS: 100,
			Format:            ChatAudioFormat{Codec: "opus", Container: "webm"},
			NumChannels:       1,
			SampleFrequencyHz: 24000,
		},
	}
}

// SdpOffer is the POST .../sdp request body.
type SdpOffer struct {
	MessageType   string           `json:"messageType"`
	SDP           string           `json:"sdp"`
	Configuration SdpConfiguration `json:"configuration"`
}

// SdpExchangeResponse reports whether the offer was accepted.
type SdpExchangeResponse struct {
	Status string `json:"status"`
}

// IceCandidate normalizes the sdpMLineIndex field, which upstream servers
// inconsistently encode as either a JSON number or a numeric string; the
// custom UnmarshalJSON below accepts both, grounded on the same quirk the
// original source's serde_helpers module worked around.
type IceCandidate struct {
	Candidate        string `json:"candidate"`
	SdpMid           string `json:"sdpMid"`
	SdpMLineIndex    int    `json:"sdpMLineIndex"`
}

type iceCandidateWire struct {
	Candidate     string          `json:"candidate"`
	SdpMid        string          `json:"sdpMid"`
	SdpMLineIndex json.RawMessage `json:"sdpMLineIndex"`
}

func (c *IceCandidate) UnmarshalJSON(b []byte) error {
	var wire iceCandidateWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	c.Candidate = wire.Candidate
	c.SdpMid = wire.SdpMid

	var asInt int
	if err := json.Unmarshal(wire.SdpMLineIndex, &asInt); err == nil {
		c.SdpMLineIndex = asInt
		return nil
	}
	var asString string
	if err := json.Unmarshal(wire.SdpMLineIndex, &asString); err == nil {
		var parsed int
		if _, err := fmt.Sscanf(asString, "%d", &parsed); err != nil {
			return err
		}
		c.SdpMLineIndex = parsed
		return nil
	}
	return nil
}

// IceMessage is the POST .../ice request body.
type IceMessage struct {
	MessageType string       `json:"messageType"`
	Candidate   IceCandidate `json:"candidate"`
}

// SessionConfig is the POST .../play request body.
type SessionConfig struct {
	TitleID               string              `json:"titleId"`
	SystemUpdateGroup      string              `json:"systemUpdateGroup"`
	ServerID               string              `json:"serverId,omitempty"`
	FallbackRegionNames    []string            `json:"fallbackRegionNames,omitempty"`
	Settings               SessionSettings     `json:"settings"`
}

// SessionSettings matches api.rs's GssvSessionSettings.
type SessionSettings struct {
	NanoVersion         string `json:"nanoVersion"`
	EnableTextToSpeech  bool   `json:"enableTextToSpeech"`
	HighContrast        int    `json:"highContrast"`
	Locale              string `json:"locale"`
	UseIceConnection    bool   `json:"useIceConnection"`
	TimezoneOffsetMinutes int  `json:"timezoneOffsetMinutes"`
	SDKType             string `json:"sdkType"`
	OSName              string `json:"osName"`
}

// DefaultSessionSettings matches api.rs's fixed settings bundle.
func DefaultSessionSettings() SessionSettings {
	return SessionSettings{
		NanoVersion:           "V3;WebrtcTransport.dll",
		EnableTextToSpeech:    false,
		HighContrast:          0,
		Locale:                "en-US",
		UseIceConnection:      false,
		TimezoneOffsetMinutes: 120,
		SDKType:               "web",
		OSName:                "windows",
	}
}

// SessionResponse is the POST .../play response body.
type SessionResponse struct {
	SessionID string `json:"sessionId"`
}

// XCloudConnect is the POST .../connect request body.
type XCloudConnect struct {
	UserToken string `json:"userToken"`
}
