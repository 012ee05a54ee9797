package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/ticket_inventory/internal/adapter/notifier"
	"github.com/srgjo27/ticket_inventory/internal/adapter/repository/memory"
	"github.com/srgjo27/ticket_inventory/internal/clock"
	"github.com/srgjo27/ticket_inventory/internal/core/domain"
	"github.com/srgjo27/ticket_inventory/internal/core/services"
)

type testServer struct {
	srv          *httptest.Server
	store        *memory.Store
	eventID      uuid.UUID
	ticketTypeID uuid.UUID
}

func newTestServer(t *testing.T, total int) *testServer {
	t.Helper()

	store := memory.NewStore(clock.NewSystem())
	hub := notifier.NewHub()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	availability := services.NewAvailabilityService(store, store, services.Thresholds{LowStock: 10, CriticalStock: 5})
	engine := services.NewAllocationService(store, store, hub, availability,
		clock.NewSystem(), logger, services.AllocationConfig{
			CheckoutTTL:         15 * time.Minute,
			AdminBlockTTL:       24 * time.Hour,
			WaitlistOfferTTL:    30 * time.Minute,
			MaxActivePerSession: 5,
			SweepBatchSize:      100,
		})

	mux := http.NewServeMux()
	NewInventoryHandler(engine, hub).Register(mux)

	ts := &testServer{
		srv:          httptest.NewServer(mux),
		store:        store,
		eventID:      uuid.New(),
		ticketTypeID: uuid.New(),
	}
	t.Cleanup(ts.srv.Close)

	require.NoError(t, engine.ConfigureTicketType(context.Background(), &domain.TicketTypeCapacity{
		EventID:       ts.eventID,
		TicketTypeID:  ts.ticketTypeID,
		Name:          "General Admission",
		TotalQuantity: total,
	}))

	return ts
}

func (ts *testServer) post(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.srv.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func (ts *testServer) do(t *testing.T, method, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.srv.URL+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func (ts *testServer) createHold(t *testing.T, sessionID string, qty int) domain.Hold {
	t.Helper()
	resp := ts.post(t, "/holds", services.CreateHoldRequest{
		EventID:      ts.eventID.String(),
		TicketTypeID: ts.ticketTypeID.String(),
		SessionID:    sessionID,
		Quantity:     qty,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var hold domain.Hold
	decode(t, resp, &hold)
	return hold
}

func TestHoldLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t, 20)

	hold := ts.createHold(t, "session-1", 3)
	assert.Equal(t, domain.HoldActive, hold.Status)
	assert.Equal(t, 3, hold.Quantity)

	// Availability reflects the hold.
	resp := ts.do(t, http.MethodGet, fmt.Sprintf("/availability?event_id=%s&ticket_type_id=%s&qty=18", ts.eventID, ts.ticketTypeID))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap domain.AvailabilitySnapshot
	decode(t, resp, &snap)
	assert.Equal(t, 17, snap.AvailableQuantity)
	assert.False(t, snap.CanFulfill)

	// Purchase converts the hold.
	resp = ts.post(t, "/purchases", map[string]string{"hold_id": hold.ID.String()})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var purchased domain.Hold
	decode(t, resp, &purchased)
	assert.Equal(t, domain.HoldConverted, purchased.Status)

	// Converting again conflicts and tells the caller what to do next.
	resp = ts.post(t, "/purchases", map[string]string{"hold_id": hold.ID.String()})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var conflict map[string]string
	decode(t, resp, &conflict)
	assert.Contains(t, conflict["action"], "re-check availability")
}

func TestCreateHold_InsufficientCapacityBody(t *testing.T) {
	ts := newTestServer(t, 5)
	ts.createHold(t, "session-1", 3)

	resp := ts.post(t, "/holds", services.CreateHoldRequest{
		EventID:      ts.eventID.String(),
		TicketTypeID: ts.ticketTypeID.String(),
		SessionID:    "session-2",
		Quantity:     4,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var body struct {
		Error             string `json:"error"`
		RequestedQuantity int    `json:"requested_quantity"`
		AvailableQuantity int    `json:"available_quantity"`
	}
	decode(t, resp, &body)
	assert.Equal(t, 4, body.RequestedQuantity)
	assert.Equal(t, 2, body.AvailableQuantity)
}

func TestCreateHold_BadRequests(t *testing.T) {
	ts := newTestServer(t, 5)

	cases := []struct {
		name string
		req  services.CreateHoldRequest
	}{
		{"bad event id", services.CreateHoldRequest{EventID: "nope", TicketTypeID: ts.ticketTypeID.String(), Quantity: 1}},
		{"zero quantity", services.CreateHoldRequest{EventID: ts.eventID.String(), TicketTypeID: ts.ticketTypeID.String(), Quantity: 0}},
		{"unknown hold type", services.CreateHoldRequest{EventID: ts.eventID.String(), TicketTypeID: ts.ticketTypeID.String(), Quantity: 1, HoldType: "forever"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := ts.post(t, "/holds", tc.req)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			resp.Body.Close()
		})
	}
}

func TestReleaseHold_IsIdempotentOverHTTP(t *testing.T) {
	ts := newTestServer(t, 10)
	hold := ts.createHold(t, "session-1", 2)

	for i := 0; i < 2; i++ {
		resp := ts.do(t, http.MethodDelete, "/holds/"+hold.ID.String()+"?reason=changed+mind")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	c, err := ts.store.GetCapacity(context.Background(), ts.eventID, ts.ticketTypeID)
	require.NoError(t, err)
	assert.Equal(t, 0, c.HeldQuantity)
}

func TestReleaseHold_UnknownHoldIs404(t *testing.T) {
	ts := newTestServer(t, 10)

	resp := ts.do(t, http.MethodDelete, "/holds/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestSessionHolds_ReleasesEverything(t *testing.T) {
	ts := newTestServer(t, 10)
	ts.createHold(t, "session-1", 2)
	ts.createHold(t, "session-1", 3)

	resp := ts.do(t, http.MethodDelete, "/sessions/session-1/holds")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]int
	decode(t, resp, &body)
	assert.Equal(t, 2, body["released"])

	c, err := ts.store.GetCapacity(context.Background(), ts.eventID, ts.ticketTypeID)
	require.NoError(t, err)
	assert.Equal(t, 0, c.HeldQuantity)
}

func TestAvailability_EventWideStatus(t *testing.T) {
	ts := newTestServer(t, 10)
	ts.createHold(t, "session-1", 4)

	resp := ts.do(t, http.MethodGet, fmt.Sprintf("/availability?event_id=%s&session_id=session-1", ts.eventID))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status domain.EventInventoryStatus
	decode(t, resp, &status)
	assert.Equal(t, 10, status.TotalTickets)
	assert.Equal(t, 4, status.TotalHeld)
	assert.Equal(t, 6, status.TotalAvailable)
	assert.Len(t, status.SessionHolds, 1)
}

func TestAvailability_UnknownTicketTypeIsComingSoon(t *testing.T) {
	ts := newTestServer(t, 10)

	resp := ts.do(t, http.MethodGet, fmt.Sprintf("/availability?event_id=%s&ticket_type_id=%s", ts.eventID, uuid.New()))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap domain.AvailabilitySnapshot
	decode(t, resp, &snap)
	assert.Equal(t, domain.LevelComingSoon, snap.Status)
}

func TestTransactions_ReturnsAuditTrail(t *testing.T) {
	ts := newTestServer(t, 10)
	hold := ts.createHold(t, "session-1", 2)

	resp := ts.post(t, "/purchases", map[string]string{"hold_id": hold.ID.String()})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodGet, fmt.Sprintf("/transactions?event_id=%s", ts.eventID))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var txns []domain.InventoryTransaction
	decode(t, resp, &txns)
	require.Len(t, txns, 2)
	assert.Equal(t, domain.TxnPurchase, txns[0].Type)
	assert.Equal(t, domain.TxnHoldCreate, txns[1].Type)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, 10)

	resp := ts.do(t, http.MethodPut, "/holds")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()
}

func TestSubscribe_StreamsEvents(t *testing.T) {
	ts := newTestServer(t, 10)

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL+"/subscribe?event_id="+ts.eventID.String(), nil)
	require.NoError(t, err)
	ctx, cancelReq := context.WithCancel(context.Background())
	defer cancelReq()
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// Give the stream a moment to register before mutating.
	time.Sleep(50 * time.Millisecond)
	ts.createHold(t, "session-1", 2)

	buf := make([]byte, 4096)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)
	body := string(buf[:n])
	assert.Contains(t, body, "event: hold-created")
	assert.Contains(t, body, `"available_quantity":8`)
}
