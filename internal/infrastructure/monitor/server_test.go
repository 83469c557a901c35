package monitor

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/felixgeelhaar/remedy/internal/domain/conversation"
)

func TestSnapshotHandler(t *testing.T) {
	log := conversation.NewLog()
	log.Append(conversation.NewEntry(conversation.SystemNote{Text: "first"}))
	log.Append(conversation.NewEntry(conversation.SystemNote{Text: "second"}))

	srv := NewServer(":0", log, nil)

	rec := httptest.NewRecorder()
	srv.handleSnapshot(rec, httptest.NewRequest("GET", "/api/log", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %s", ct)
	}

	var rows []struct {
		Kind    string `json:"kind"`
		Payload struct {
			Text string `json:"text"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Payload.Text != "first" || rows[1].Payload.Text != "second" {
		t.Errorf("rows = %+v", rows)
	}
	if rows[0].Kind != string(conversation.KindSystemNote) {
		t.Errorf("kind = %s", rows[0].Kind)
	}
}
