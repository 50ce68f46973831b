package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ldimov09/mocksys-tui/internal/session"
)

func sessionUserFixture() session.User {
	return session.User{
		TransactionKey:        "tx-key",
		TransactionKeyEnabled: true,
		FiscalKey:             "fi-key",
		FiscalKeyEnabled:      true,
	}
}

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, func() string { return token })
}

func TestLoginSendsCredentialsAndDecodesUser(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Empty(t, r.Header.Get("Authorization"), "no bearer header before login")
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "BG-001", body["account_number"])
		require.Equal(t, "hunter2", body["password"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user":{"name":"Lyubomir","account_number":"BG-001","balance":900,"token":"tok-1"}}`))
	})

	u, err := client.Login(context.Background(), "BG-001", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "Lyubomir", u.Name)
	require.Equal(t, "tok-1", u.Token)
	require.True(t, u.Balance.Equal(decimal.RequireFromString("900")))
}

func TestBearerTokenAttachedWhenPresent(t *testing.T) {
	client := newTestClient(t, "tok-99", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-99", r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":{"asReceiver":[],"asSender":[]}}`))
	})
	_, err := client.Transfers(context.Background())
	require.NoError(t, err)
}

func TestErrorDetailSurfacedVerbatim(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Invalid transaction key"}`))
	})
	_, err := client.Transfer(context.Background(), "BG-002", "1234", decimal.RequireFromString("10"))
	require.Error(t, err)

	apiErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "Invalid transaction key", apiErr.Detail)
}

func TestValidationFieldsTakeFirstMessage(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"Validation failed","errors":{"name":["Name is required","too short"],"price":["Must be positive"]}}`))
	})
	err := client.SaveItem(context.Background(), Item{Name: ""})
	require.Error(t, err)

	apiErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, map[string]string{
		"name":  "Name is required",
		"price": "Must be positive",
	}, apiErr.Fields)
}

func TestNonJSONErrorBodyStillYieldsStatus(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	})
	err := client.DeleteCompany(context.Background())
	apiErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, http.StatusBadGateway, apiErr.Status)
	require.Empty(t, apiErr.Detail)
	require.Contains(t, apiErr.Error(), "502")
}

func TestTransferSendsAmountAsNumber(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "57.5", string(body["amount"]), "amount must be a bare JSON number")
		w.Write([]byte(`{"balance":842.5}`))
	})
	receipt, err := client.Transfer(context.Background(), "BG-002", "1234", decimal.RequireFromString("57.50"))
	require.NoError(t, err)
	require.NotNil(t, receipt.Balance)
	require.True(t, receipt.Balance.Equal(decimal.RequireFromString("842.50")))
}

func TestTransferReceiptWithoutBalance(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	receipt, err := client.Transfer(context.Background(), "BG-002", "1234", decimal.RequireFromString("1"))
	require.NoError(t, err)
	require.Nil(t, receipt.Balance)
}

func TestSaveItemRoutesCreateVsUpdate(t *testing.T) {
	var gotMethod, gotPath string
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Write([]byte(`{}`))
	})

	require.NoError(t, client.SaveItem(context.Background(), Item{Name: "Coffee"}))
	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "/api/items", gotPath)

	require.NoError(t, client.SaveItem(context.Background(), Item{ID: 7, Name: "Coffee"}))
	require.Equal(t, http.MethodPut, gotMethod)
	require.Equal(t, "/api/items/7", gotPath)
}

func TestKeyActionPathAndMerge(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/keys/transaction/toggle", r.URL.Path)
		w.Write([]byte(`{"transaction_key":"new-key","transaction_key_enabled":false,"fiscal_key":null,"fiscal_key_enabled":null}`))
	})
	update, err := client.KeyAction(context.Background(), "transaction", "toggle")
	require.NoError(t, err)

	u := update.Merge(sessionUserFixture())
	require.Equal(t, "new-key", u.TransactionKey)
	require.False(t, u.TransactionKeyEnabled)
	require.Equal(t, "fi-key", u.FiscalKey, "nil fields leave existing values alone")
	require.True(t, u.FiscalKeyEnabled)
}

func TestUserDecodesDataEnvelope(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users/BG-002", r.URL.Path)
		w.Write([]byte(`{"data":{"name":"Receiver","account_number":"BG-002"}}`))
	})
	u, err := client.User(context.Background(), "BG-002")
	require.NoError(t, err)
	require.Equal(t, "Receiver", u.Name)
}
