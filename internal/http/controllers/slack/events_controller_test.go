package slack

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/slackjohn/internal/events"
	"github.com/dropDatabas3/slackjohn/internal/security/signature"
)

const testSigningSecret = "8f742231b10e8888abcd99yyyzzz85a5"

var testNow = time.Unix(1_700_000_000, 0)

func sign(body []byte, ts string) string {
	mac := hmac.New(sha256.New, []byte(testSigningSecret))
	fmt.Fprintf(mac, "v0:%s:%s", ts, body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func newEventsController(t *testing.T) (*EventsController, *fakePoster) {
	t.Helper()
	v := newTestVault(t)
	installTeam(t, v, "T1", "B1")
	poster := &fakePoster{}
	d := events.NewDispatcher(events.NewRouter(v, poster, nil), 16, 1)
	verifier := signature.NewVerifierAt(testSigningSecret, func() time.Time { return testNow })
	return NewEventsController(verifier, d), poster
}

func postEvent(c *EventsController, body []byte, ts, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/slack/events", bytes.NewReader(body))
	req.Header.Set(headerTimestamp, ts)
	req.Header.Set(headerSignature, sig)
	rec := httptest.NewRecorder()
	c.Handle(rec, req)
	return rec
}

func TestEvents_URLVerification_EchoesChallenge(t *testing.T) {
	c, _ := newEventsController(t)

	body := []byte(`{"type":"url_verification","challenge":"ch4ll3ng3"}`)
	ts := strconv.FormatInt(testNow.Unix(), 10)
	rec := postEvent(c, body, ts, sign(body, ts))

	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "ch4ll3ng3", out["challenge"])
}

func TestEvents_InvalidSignature_Forbidden(t *testing.T) {
	c, _ := newEventsController(t)

	body := []byte(`{"type":"url_verification","challenge":"x"}`)
	ts := strconv.FormatInt(testNow.Unix(), 10)
	rec := postEvent(c, body, ts, "v0="+hex.EncodeToString(bytes.Repeat([]byte{0xAB}, 32)))

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEvents_TamperedBody_Forbidden(t *testing.T) {
	c, _ := newEventsController(t)

	body := []byte(`{"type":"url_verification","challenge":"x"}`)
	ts := strconv.FormatInt(testNow.Unix(), 10)
	sig := sign(body, ts)
	tampered := bytes.Replace(body, []byte(`"x"`), []byte(`"y"`), 1)
	rec := postEvent(c, tampered, ts, sig)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEvents_StaleTimestamp_Forbidden(t *testing.T) {
	c, _ := newEventsController(t)

	body := []byte(`{"type":"url_verification","challenge":"x"}`)
	ts := strconv.FormatInt(testNow.Add(-6*time.Minute).Unix(), 10)
	rec := postEvent(c, body, ts, sign(body, ts))

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEvents_MalformedPayload_BadRequest(t *testing.T) {
	c, _ := newEventsController(t)

	body := []byte(`{not json`)
	ts := strconv.FormatInt(testNow.Unix(), 10)
	rec := postEvent(c, body, ts, sign(body, ts))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvents_EventCallback_AcksImmediately(t *testing.T) {
	c, _ := newEventsController(t)

	body := []byte(`{"type":"event_callback","team_id":"T1","event":{"type":"app_mention","channel":"C1"}}`)
	ts := strconv.FormatInt(testNow.Unix(), 10)
	rec := postEvent(c, body, ts, sign(body, ts))

	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "ok", out["status"])
}

func TestEvents_UnknownEnvelopeType_Acked(t *testing.T) {
	c, _ := newEventsController(t)

	body := []byte(`{"type":"app_rate_limited","team_id":"T1"}`)
	ts := strconv.FormatInt(testNow.Unix(), 10)
	rec := postEvent(c, body, ts, sign(body, ts))

	require.Equal(t, http.StatusOK, rec.Code)
}
