package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridmarket/negotiator/internal/httpserver"
	"github.com/gridmarket/negotiator/internal/ledger"
	"github.com/gridmarket/negotiator/internal/trail"
)

func openServer(t *testing.T, store trail.Store, l *ledger.Ledger) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(httpserver.New(store, nil, l).Router(""))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz(t *testing.T) {
	srv := openServer(t, trail.NewMemoryStore(), nil)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPostAndGetDecision(t *testing.T) {
	srv := openServer(t, trail.NewMemoryStore(), nil)

	body := `{"kind":"invoice-decision","agreementId":"agr-1","proposed":"100","accepted":"30"}`
	resp, err := http.Post(srv.URL+"/decisions", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var posted struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&posted))
	require.NotEmpty(t, posted.ID)

	getResp, err := http.Get(srv.URL + "/decisions/" + posted.ID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var got trail.Decision
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&got))
	assert.Equal(t, trail.KindInvoice, got.Kind)
	assert.Equal(t, "30", got.Accepted)
}

func TestPostDecisionRequiresKind(t *testing.T) {
	srv := openServer(t, trail.NewMemoryStore(), nil)

	resp, err := http.Post(srv.URL+"/decisions", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetDecisionNotFound(t *testing.T) {
	srv := openServer(t, trail.NewMemoryStore(), nil)

	resp, err := http.Get(srv.URL + "/decisions/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListDecisionsByAgreement(t *testing.T) {
	store := trail.NewMemoryStore()
	for _, d := range []trail.Decision{
		{Kind: trail.KindDebitNote, AgreementID: "agr-1"},
		{Kind: trail.KindDebitNote, AgreementID: "agr-2"},
	} {
		d := d
		require.NoError(t, store.AppendDecision(context.Background(), &d))
	}
	srv := openServer(t, store, nil)

	resp, err := http.Get(srv.URL + "/decisions?agreementId=agr-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Decisions []trail.Decision `json:"decisions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Decisions, 1)
	assert.Equal(t, "agr-1", payload.Decisions[0].AgreementID)
}

func TestAgreementAcceptanceSnapshot(t *testing.T) {
	l := ledger.New()
	l.TrackActivity("agr-1", "act-1")
	l.TrackActivity("agr-1", "act-2")
	l.ConfirmDebitNote("act-1", decimal.NewFromInt(30))
	l.MarkFailed("act-2")
	srv := openServer(t, trail.NewMemoryStore(), l)

	resp, err := http.Get(srv.URL + "/agreements/agr-1/acceptance")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		AgreementID       string            `json:"agreementId"`
		HasFailedActivity bool              `json:"hasFailedActivity"`
		AcceptedTotal     string            `json:"acceptedTotal"`
		AcceptedAmounts   map[string]string `json:"acceptedAmounts"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "agr-1", payload.AgreementID)
	assert.True(t, payload.HasFailedActivity)
	assert.Equal(t, "30", payload.AcceptedTotal)
	assert.Equal(t, "30", payload.AcceptedAmounts["act-1"])
	assert.Equal(t, "0", payload.AcceptedAmounts["act-2"])
}

func TestBearerAuth(t *testing.T) {
	secret := "test-secret"
	srv := httptest.NewServer(httpserver.New(trail.NewMemoryStore(), nil, nil).Router(secret))
	defer srv.Close()

	// No token.
	resp, err := http.Get(srv.URL + "/decisions")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Health stays open.
	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Valid token.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/decisions", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Token signed with a different secret.
	bad, err := token.SignedString([]byte("other"))
	require.NoError(t, err)
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/decisions", nil)
	req.Header.Set("Authorization", "Bearer "+bad)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
