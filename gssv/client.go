package gssv

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	defaultCloudBaseURL = "https://uks.gssv-play-prodxcloud.xboxlive.com"
	defaultHomeBaseURL  = "https://uks.gssv-play-prodxhome.xboxlive.com"
)

// bearerTransport installs a fixed Bearer token and the GSSV device-info
// headers on every outgoing request, mirroring api.rs's GssvApi::new,
// which builds its reqwest::Client with default_headers baked in rather
// than re-attaching them per call.
type bearerTransport struct {
	base        http.RoundTripper
	token       string
	deviceInfo  string
	userAgent   string
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("Content-Type", "application/json")
	if t.deviceInfo != "" {
		req.Header.Set("X-MS-Device-Info", t.deviceInfo)
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// Client is the GSSV session-provisioning REST client, constructed with
// the functional-options pattern grounded on
// SilvaMendes-go-rtpengine's NewClient(rtpengine, options ...ClientOption).
type Client struct {
	httpClient         *http.Client
	baseURL            string
	platform           Platform
	provisioningTimeout time.Duration
	pollInterval        time.Duration
	log                 zerolog.Logger
}

// Option configures a Client.
type Option func(c *Client) error

// NewClient builds a Client authorized with token, targeting platform.
// platform selects the default base URL (prodxcloud vs prodxhome) and the
// "cloud"/"home" path segment every session endpoint is built from,
// matching client.rs's login_xcloud/login_xhome split.
func NewClient(platform Platform, token string, opts ...Option) (*Client, error) {
	deviceInfo, err := DefaultDeviceInfo(1920, 1080).Header()
	if err != nil {
		return nil, errors.Wrap(err, "gssv: encode default device info")
	}
	baseURL := defaultHomeBaseURL
	if platform == PlatformCloud {
		baseURL = defaultCloudBaseURL
	}
	c := &Client{
		baseURL:             baseURL,
		platform:            platform,
		provisioningTimeout: 30 * time.Second,
		pollInterval:        1 * time.Second,
		log:                 zerolog.Nop(),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &bearerTransport{
				base:       http.DefaultTransport,
				token:      token,
				deviceInfo: deviceInfo,
				userAgent:  "gssv-stream/1.0",
			},
		},
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// pathSegment returns the "cloud"/"home" path component every session
// endpoint is built from, per c.platform.
func (c *Client) pathSegment() string {
	if c.platform == PlatformCloud {
		return "cloud"
	}
	return "home"
}

// WithBaseURL overrides the GSSV API base URL, useful for pointing at a
// regional endpoint other than the hardcoded xHome default.
func WithBaseURL(url string) Option {
	return func(c *Client) error {
		c.baseURL = url
		return nil
	}
}

// WithProvisioningTimeout bounds how long StartSession polls before
// giving up, matching client.rs's CONNECTION_TIMEOUT_SECS.
func WithProvisioningTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.provisioningTimeout = d
		return nil
	}
}

// WithPollInterval overrides the provisioning poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) error {
		c.pollInterval = d
		return nil
	}
}

// WithLogger attaches a structured logger, replacing the no-op default.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = log.With().Str("component", "gssv").Logger()
		return nil
	}
}

// WithDeviceInfo overrides the device-identity header sent on session
// start.
func WithDeviceInfo(info DeviceInfo) Option {
	return func(c *Client) error {
		header, err := info.Header()
		if err != nil {
			return errors.Wrap(err, "gssv: encode device info")
		}
		if bt, ok := c.httpClient.Transport.(*bearerTransport); ok {
			bt.deviceInfo = header
		}
		return nil
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "gssv: encode request body")
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "gssv: build request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(ErrAPI, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "gssv: read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Wrapf(ErrAPI, "%s %s: status %d: %s", method, path, resp.StatusCode, string(respBody))
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(err, "gssv: decode response body")
	}
	return nil
}

// LookupGames returns the xCloud game-title catalog. Only valid on
// PlatformCloud, per client.rs's lookup_games gating.
func (c *Client) LookupGames(ctx context.Context) (*TitlesResponse, error) {
	if c.platform != PlatformCloud {
		return nil, errors.Wrapf(ErrInvalidPlatform, "lookup_games requires platform cloud, got %s", c.platform)
	}
	var out TitlesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/titles", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LookupConsoles returns the caller's registered Home consoles. Only
// valid on PlatformHome, per client.rs's lookup_consoles gating.
func (c *Client) LookupConsoles(ctx context.Context) (*ConsolesResponse, error) {
	if c.platform != PlatformHome {
		return nil, errors.Wrapf(ErrInvalidPlatform, "lookup_consoles requires platform home, got %s", c.platform)
	}
	var out ConsolesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v6/servers/home", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartSessionRequest starts a new streaming session, POSTing the fixed
// settings bundle to /v5/sessions/{cloud,home}/play, per api.rs's
// start_session. It is platform-matched: Cloud sessions are keyed by
// titleID (start_stream_xcloud), Home sessions by serverID
// (start_stream_xhome).
func (c *Client) StartSessionRequest(ctx context.Context, titleID, serverID string) (*SessionResponse, error) {
	cfg := SessionConfig{SystemUpdateGroup: "", Settings: DefaultSessionSettings()}
	switch c.platform {
	case PlatformCloud:
		if titleID == "" {
			return nil, errors.Wrap(ErrInvalidPlatform, "start_stream_xcloud requires a title id")
		}
		cfg.TitleID = titleID
	case PlatformHome:
		if serverID == "" {
			return nil, errors.Wrap(ErrInvalidPlatform, "start_stream_xhome requires a server id")
		}
		cfg.ServerID = serverID
	default:
		return nil, ErrInvalidPlatform
	}
	var out SessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v5/sessions/"+c.pathSegment()+"/play", cfg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Connect posts the transfer token to finalize session handoff, per
// api.rs's xcloud_connect.
func (c *Client) Connect(ctx context.Context, sessionID, transferToken string) error {
	return c.doJSON(ctx, http.MethodPost, "/v4/sessions/"+c.pathSegment()+"/connect", XCloudConnect{UserToken: transferToken}, nil)
}

// GetSessionState polls the provisioning state machine.
func (c *Client) GetSessionState(ctx context.Context, sessionID string) (*StreamStateResponse, error) {
	var out StreamStateResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v4/sessions/"+c.pathSegment()+"/"+sessionID+"/state", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSessionConfig fetches the server address/port and SRTP master
// secret once the session reaches Provisioned.
func (c *Client) GetSessionConfig(ctx context.Context, sessionID string) (*StreamConfig, error) {
	var out StreamConfig
	if err := c.doJSON(ctx, http.MethodGet, "/v4/sessions/"+c.pathSegment()+"/"+sessionID+"/configuration", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExchangeSDP posts a local SDP offer and polls for the server's answer,
// per client.rs's exchange_sdp.
func (c *Client) ExchangeSDP(ctx context.Context, sessionID, sdp string) (string, error) {
	offer := SdpOffer{MessageType: "offer", SDP: sdp, Configuration: DefaultSdpConfiguration()}
	var postResp SdpExchangeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v4/sessions/"+c.pathSegment()+"/"+sessionID+"/sdp", offer, &postResp); err != nil {
		return "", err
	}
	if postResp.Status != "success" {
		return "", &ConnectionExchangeError{Stage: "sdp post", Status: postResp.Status}
	}
	var answer SdpOffer
	if err := c.doJSON(ctx, http.MethodGet, "/v4/sessions/"+c.pathSegment()+"/"+sessionID+"/sdp", nil, &answer); err != nil {
		return "", err
	}
	return answer.SDP, nil
}

// ExchangeICE posts a local ICE candidate and returns the server's
// candidates gathered so far, per client.rs's exchange_ice.
func (c *Client) ExchangeICE(ctx context.Context, sessionID string, candidate IceCandidate) ([]IceCandidate, error) {
	msg := IceMessage{MessageType: "iceCandidate", Candidate: candidate}
	if err := c.doJSON(ctx, http.MethodPost, "/v4/sessions/"+c.pathSegment()+"/"+sessionID+"/ice", msg, nil); err != nil {
		return nil, err
	}
	var out struct {
		Candidates []IceCandidate `json:"candidates"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v4/sessions/"+c.pathSegment()+"/"+sessionID+"/ice", nil, &out); err != nil {
		return nil, err
	}
	return out.Candidates, nil
}

// SendKeepalive posts the periodic empty-body keepalive, per api.rs's
// send_keepalive.
func (c *Client) SendKeepalive(ctx context.Context, sessionID string) error {
	return c.doJSON(ctx, http.MethodPost, "/v4/sessions/"+c.pathSegment()+"/"+sessionID+"/keepalive", nil, nil)
}

// StartSession drives the provisioning state machine to completion:
// WaitingForResources/Provisioning are polled, ReadyToConnect triggers a
// single Connect call, Provisioned returns, Failed or an unrecognized
// state returns a *ProvisioningError. Matches client.rs's start_stream
// polling loop, bounded by c.provisioningTimeout.
func (c *Client) StartSession(ctx context.Context, sessionID, transferToken string) error {
	deadline := time.Now().Add(c.provisioningTimeout)
	connected := false

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		state, err := c.GetSessionState(ctx, sessionID)
		if err != nil {
			return err
		}

		switch state.State {
		case StreamStateWaitingForResources, StreamStateProvisioning:
			// keep polling
		case StreamStateReadyToConnect:
			if !connected {
				if err := c.Connect(ctx, sessionID, transferToken); err != nil {
					return err
				}
				connected = true
			}
		case StreamStateProvisioned:
			return nil
		case StreamStateFailed:
			return &ProvisioningError{State: state.State, Details: state.ErrorDetails}
		default:
			return &ProvisioningError{State: state.State}
		}

		if time.Now().After(deadline) {
			return &ProvisioningError{State: state.State}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
