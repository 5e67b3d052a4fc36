package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/campusfix/hostel-desk/internal/domain"
)

func TestWireTimeShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want time.Time
	}{
		{name: "rfc3339", raw: `"2025-03-04T10:20:30Z"`, want: time.Date(2025, 3, 4, 10, 20, 30, 0, time.UTC)},
		{name: "local date time", raw: `"2025-03-04T10:20:30"`, want: time.Date(2025, 3, 4, 10, 20, 30, 0, time.UTC)},
		{name: "date only", raw: `"2025-03-04"`, want: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
		{name: "date array", raw: `[2025, 3, 4]`, want: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
		{name: "date time array", raw: `[2025, 3, 4, 10, 20, 30]`, want: time.Date(2025, 3, 4, 10, 20, 30, 0, time.UTC)},
		{name: "null", raw: `null`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got WireTime
			if err := json.Unmarshal([]byte(tc.raw), &got); err != nil {
				t.Fatalf("unmarshal %s: %v", tc.raw, err)
			}
			if !got.Time.Equal(tc.want) {
				t.Errorf("got %v, want %v", got.Time, tc.want)
			}
		})
	}

	var bad WireTime
	if err := json.Unmarshal([]byte(`"yesterday"`), &bad); err == nil {
		t.Error("expected error for unrecognized timestamp")
	}
	if err := json.Unmarshal([]byte(`[2025]`), &bad); err == nil {
		t.Error("expected error for short date array")
	}
}

func TestFlexibleID(t *testing.T) {
	var req AssignTicketRequest
	if err := json.Unmarshal([]byte(`{"staffId":"42","status":"ASSIGNED"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Assignee() != 42 {
		t.Errorf("Assignee() = %d, want 42", req.Assignee())
	}

	req = AssignTicketRequest{}
	if err := json.Unmarshal([]byte(`{"staffUserId":7,"staffId":"9"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Assignee() != 7 {
		t.Errorf("staffUserId should win, got %d", req.Assignee())
	}

	if err := json.Unmarshal([]byte(`{"staffId":"abc"}`), &req); err == nil {
		t.Error("expected error for non-numeric staff id")
	}
}

func TestTicketResponseToDomain(t *testing.T) {
	raw := `{
		"id": 12,
		"title": "Leaking tap",
		"category": "Plumbing",
		"blockName": "C",
		"roomNo": "110",
		"priority": "high",
		"status": "INPROGRESS",
		"createdByUserId": 3,
		"createdByName": "Asha",
		"assignedToUserId": 8,
		"createdAt": [2025, 1, 15]
	}`
	var resp TicketResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	ticket := resp.ToDomain()
	if ticket.Status != domain.TicketStatusInProgress {
		t.Errorf("Status = %q", ticket.Status)
	}
	if ticket.Priority != domain.TicketPriorityHigh {
		t.Errorf("Priority = %q", ticket.Priority)
	}
	if ticket.Location.Kind() != domain.LocationRoom || ticket.Location.Block() != "C" || ticket.Location.RoomNo() != "110" {
		t.Errorf("Location = %+v", ticket.Location)
	}
	if ticket.AssignedToUserID == nil || *ticket.AssignedToUserID != 8 {
		t.Errorf("AssignedToUserID = %v", ticket.AssignedToUserID)
	}
	if ticket.CreatedAt.Year() != 2025 || ticket.CreatedAt.Month() != time.January {
		t.Errorf("CreatedAt = %v", ticket.CreatedAt)
	}
}

func TestCreateTicketRequestLocation(t *testing.T) {
	var room CreateTicketRequest
	room.ApplyLocation(domain.RoomLocation("A", "12"))
	if room.Block != "A" || room.RoomNo != "12" || room.Location != "" {
		t.Errorf("room payload = %+v", room)
	}

	var free CreateTicketRequest
	free.ApplyLocation(domain.FreeformLocation("library"))
	if free.Location != "library" || free.Block != "" {
		t.Errorf("freeform payload = %+v", free)
	}

	encoded, err := json.Marshal(free)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := fields["block"]; ok {
		t.Error("freeform payload should not carry a block key")
	}
}

func TestLoginResponseCredentialAliases(t *testing.T) {
	cases := map[string]string{
		`{"id":1,"role":"admin","token":"t1"}`:       "t1",
		`{"id":1,"role":"ADMIN","accessToken":"t2"}`: "t2",
		`{"id":1,"role":"STAFF","jwt":"t3"}`:         "t3",
		`{"id":1,"role":"STAFF"}`:                    "",
	}
	for raw, want := range cases {
		var resp LoginResponse
		if err := json.Unmarshal([]byte(raw), &resp); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		session := resp.Session()
		if session.Credential != want {
			t.Errorf("%s: credential = %q, want %q", raw, session.Credential, want)
		}
		if session.Role != domain.RoleAdmin && session.Role != domain.RoleStaff {
			t.Errorf("%s: role not normalized: %q", raw, session.Role)
		}
	}
}
