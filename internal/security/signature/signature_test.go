package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"testing"
	"time"
)

const testSecret = "8f742231b10e8888abcd99yyyzzz85a5"

// sign computes a valid v0 signature the way Slack does.
func sign(secret string, ts int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + strconv.FormatInt(ts, 10) + ":"))
	mac.Write(body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func fixedClock(unix int64) func() time.Time {
	return func() time.Time { return time.Unix(unix, 0) }
}

func TestVerify_ValidSignature(t *testing.T) {
	t.Parallel()

	now := int64(1700000000)
	v := NewVerifierAt(testSecret, fixedClock(now))
	body := []byte(`{"type":"event_callback","team_id":"T1"}`)

	if !v.Verify(body, strconv.FormatInt(now, 10), sign(testSecret, now, body)) {
		t.Fatalf("expected valid signature to verify")
	}
}

func TestVerify_Deterministic(t *testing.T) {
	t.Parallel()

	now := int64(1700000000)
	v := NewVerifierAt(testSecret, fixedClock(now))
	body := []byte(`{"x":1}`)
	ts := strconv.FormatInt(now, 10)
	sig := sign(testSecret, now, body)

	for i := 0; i < 10; i++ {
		if v.Verify(body, ts, sig) != true {
			t.Fatalf("verify flipped result on iteration %d", i)
		}
	}
}

func TestVerify_RejectsBadSignature(t *testing.T) {
	t.Parallel()

	now := int64(1700000000)
	v := NewVerifierAt(testSecret, fixedClock(now))
	body := []byte(`{"x":1}`)
	ts := strconv.FormatInt(now, 10)

	if v.Verify(body, ts, "v0=deadbeef") {
		t.Fatalf("accepted garbage signature")
	}
	if v.Verify(body, ts, sign("other-secret", now, body)) {
		t.Fatalf("accepted signature from wrong secret")
	}
	// body altered after signing
	if v.Verify([]byte(`{"x":2}`), ts, sign(testSecret, now, body)) {
		t.Fatalf("accepted signature over different body")
	}
}

func TestVerify_ReplayWindowBoundary(t *testing.T) {
	t.Parallel()

	now := int64(1700000000)
	v := NewVerifierAt(testSecret, fixedClock(now))
	body := []byte(`{}`)

	cases := []struct {
		name   string
		offset int64
		want   bool
	}{
		{"exactly 300s past", -300, true},
		{"301s past", -301, false},
		{"exactly 300s future", 300, true},
		{"301s future", 301, false},
		{"now", 0, true},
	}
	for _, tc := range cases {
		ts := now + tc.offset
		got := v.Verify(body, strconv.FormatInt(ts, 10), sign(testSecret, ts, body))
		if got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestVerify_RejectsUnparsableTimestamp(t *testing.T) {
	t.Parallel()

	now := int64(1700000000)
	v := NewVerifierAt(testSecret, fixedClock(now))
	body := []byte(`{}`)

	for _, ts := range []string{"", "abc", "12.5", "1700000000x"} {
		if v.Verify(body, ts, sign(testSecret, now, body)) {
			t.Fatalf("accepted unparsable timestamp %q", ts)
		}
	}
}
