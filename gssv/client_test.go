package gssv_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xcloudgo/gssv-stream/gssv"
)

func TestParsePlatform(t *testing.T) {
	p, err := gssv.ParsePlatform("cloud")
	require.NoError(t, err)
	require.Equal(t, gssv.PlatformCloud, p)

	_, err = gssv.ParsePlatform("bogus")
	require.ErrorIs(t, err, gssv.ErrInvalidPlatform)
}

func TestLookupGamesRejectsPlatformHome(t *testing.T) {
	client, err := gssv.NewClient(gssv.PlatformHome, "test-token")
	require.NoError(t, err)

	_, err = client.LookupGames(context.Background())
	require.ErrorIs(t, err, gssv.ErrInvalidPlatform)
}

func TestLookupConsolesRejectsPlatformCloud(t *testing.T) {
	client, err := gssv.NewClient(gssv.PlatformCloud, "test-token")
	require.NoError(t, err)

	_, err = client.LookupConsoles(context.Background())
	require.ErrorIs(t, err, gssv.ErrInvalidPlatform)
}

func TestStartSessionRequestUsesCloudPathAndTitleID(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(gssv.SessionResponse{SessionID: "sess-cloud"})
	}))
	defer srv.Close()

	client, err := gssv.NewClient(gssv.PlatformCloud, "test-token", gssv.WithBaseURL(srv.URL))
	require.NoError(t, err)

	resp, err := client.StartSessionRequest(context.Background(), "title-123", "")
	require.NoError(t, err)
	require.Equal(t, "sess-cloud", resp.SessionID)
	require.Equal(t, "/v5/sessions/cloud/play", gotPath)
	require.Equal(t, "title-123", gotBody["titleId"])
}

func TestStartSessionRequestRejectsMissingTitleIDOnCloud(t *testing.T) {
	client, err := gssv.NewClient(gssv.PlatformCloud, "test-token")
	require.NoError(t, err)

	_, err = client.StartSessionRequest(context.Background(), "", "")
	require.ErrorIs(t, err, gssv.ErrInvalidPlatform)
}

func TestIceCandidateAcceptsNumberOrStringMLineIndex(t *testing.T) {
	var c gssv.IceCandidate
	require.NoError(t, json.Unmarshal([]byte(`{"candidate":"x","sdpMid":"0","sdpMLineIndex":2}`), &c))
	require.Equal(t, 2, c.SdpMLineIndex)

	var c2 gssv.IceCandidate
	require.NoError(t, json.Unmarshal([]byte(`{"candidate":"x","sdpMid":"0","sdpMLineIndex":"3"}`), &c2))
	require.Equal(t, 3, c2.SdpMLineIndex)
}

func TestStartSessionReachesProvisioned(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v4/sessions/home/sess-1/state":
			calls++
			state := gssv.StreamStateProvisioning
			if calls == 1 {
				state = gssv.StreamStateReadyToConnect
			} else if calls >= 2 {
				state = gssv.StreamStateProvisioned
			}
			json.NewEncoder(w).Encode(gssv.StreamStateResponse{State: state})
		case r.Method == http.MethodPost && r.URL.Path == "/v4/sessions/home/sess-1/connect":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client, err := gssv.NewClient(gssv.PlatformHome, "test-token",
		gssv.WithBaseURL(srv.URL),
		gssv.WithPollInterval(1*time.Millisecond),
		gssv.WithProvisioningTimeout(time.Second),
	)
	require.NoError(t, err)

	err = client.StartSession(context.Background(), "sess-1", "transfer-token")
	require.NoError(t, err)
	require.GreaterOrEqual(t, calls, 2)
}

func TestStartSessionReturnsProvisioningErrorOnFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(gssv.StreamStateResponse{
			State:        gssv.StreamStateFailed,
			ErrorDetails: &gssv.StreamErrorDetails{Code: "E1", Message: "no capacity"},
		})
	}))
	defer srv.Close()

	client, err := gssv.NewClient(gssv.PlatformHome, "test-token", gssv.WithBaseURL(srv.URL))
	require.NoError(t, err)

	err = client.StartSession(context.Background(), "sess-1", "transfer-token")
	var provErr *gssv.ProvisioningError
	require.ErrorAs(t, err, &provErr)
	require.Equal(t, gssv.StreamStateFailed, provErr.State)
}
