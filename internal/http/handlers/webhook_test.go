package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type dispatchRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (d *dispatchRecorder) dispatch(chatID, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, chatID+"|"+text)
}

func TestWebhookVerifySuccess(t *testing.T) {
	h := NewWebhookHandler((&dispatchRecorder{}).dispatch, "topsecret", nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=topsecret&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.Verify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "12345" {
		t.Fatalf("expected challenge echoed, got %q", rec.Body.String())
	}
}

func TestWebhookVerifyWrongToken(t *testing.T) {
	h := NewWebhookHandler((&dispatchRecorder{}).dispatch, "topsecret", nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.Verify(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestWebhookVerifyBadMode(t *testing.T) {
	h := NewWebhookHandler((&dispatchRecorder{}).dispatch, "topsecret", nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=unsubscribe&hub.verify_token=topsecret&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.Verify(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

const sampleEvent = `{
	"object": "whatsapp_business_account",
	"entry": [{
		"changes": [{
			"value": {
				"messages": [
					{"from": "60123456789", "type": "text", "text": {"body": "hello"}},
					{"from": "60198765432", "type": "text", "text": {"body": "restart"}}
				]
			}
		}]
	}]
}`

func TestWebhookReceiveDispatchesMessages(t *testing.T) {
	recorder := &dispatchRecorder{}
	h := NewWebhookHandler(recorder.dispatch, "topsecret", nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(sampleEvent))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(recorder.calls) != 2 {
		t.Fatalf("expected 2 dispatches, got %d", len(recorder.calls))
	}
	if recorder.calls[0] != "60123456789|hello" || recorder.calls[1] != "60198765432|restart" {
		t.Fatalf("unexpected dispatches: %v", recorder.calls)
	}
}

func TestWebhookReceiveUnknownObject(t *testing.T) {
	recorder := &dispatchRecorder{}
	h := NewWebhookHandler(recorder.dispatch, "topsecret", nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"object":"page","entry":[]}`))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if len(recorder.calls) != 0 {
		t.Fatalf("expected no dispatches, got %v", recorder.calls)
	}
}

func TestWebhookReceiveSkipsNonTextMessages(t *testing.T) {
	recorder := &dispatchRecorder{}
	h := NewWebhookHandler(recorder.dispatch, "topsecret", nil, nil)

	body := `{
		"object": "whatsapp_business_account",
		"entry": [{"changes": [{"value": {"messages": [
			{"from": "60123456789", "type": "image", "text": {"body": ""}}
		]}}]}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(recorder.calls) != 0 {
		t.Fatalf("expected no dispatches, got %v", recorder.calls)
	}
}

func TestWebhookReceiveMalformedBody(t *testing.T) {
	h := NewWebhookHandler((&dispatchRecorder{}).dispatch, "topsecret", nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
