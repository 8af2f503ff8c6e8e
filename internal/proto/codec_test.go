package proto

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/coderace-dev/coderace/internal/problem"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ServerEvent
	}{
		{
			name: "countdown",
			in:   `{"type":"countdown","countdown":3}`,
			want: Countdown{Value: 3},
		},
		{
			name: "countdown zero",
			in:   `{"type":"countdown","countdown":0}`,
			want: Countdown{Value: 0},
		},
		{
			name: "race started",
			in:   `{"type":"race_started","question":{"title":"Sum","description":"...","starting_code":"def sum(a,b):\n    pass"},"time":300}`,
			want: RaceStarted{
				Question: &problem.Problem{Title: "Sum", Description: "...", StartingCode: "def sum(a,b):\n    pass"},
				Duration: 300,
			},
		},
		{
			name: "code update",
			in:   `{"type":"code_update","username":"alice","code":"x = 1"}`,
			want: CodeUpdate{Username: "alice", Code: "x = 1"},
		},
		{
			name: "code update with empty code",
			in:   `{"type":"code_update","username":"alice","code":""}`,
			want: CodeUpdate{Username: "alice", Code: ""},
		},
		{
			name: "submission result",
			in:   `{"type":"submission_result","username":"alice","success":true,"results":["test1 passed","test2 passed"]}`,
			want: SubmissionResult{Username: "alice", Success: true, Results: []string{"test1 passed", "test2 passed"}},
		},
		{
			name: "player joined",
			in:   `{"type":"player_joined","username":"bob","players":["alice","bob"]}`,
			want: PlayerJoined{Username: "bob", Players: [2]string{"alice", "bob"}},
		},
		{
			name: "race finished",
			in:   `{"type":"race_finished","winner":"alice"}`,
			want: RaceFinished{Winner: "alice"},
		},
		{
			name: "game over",
			in:   `{"type":"game_over"}`,
			want: GameOver{},
		},
		{
			name: "error",
			in:   `{"type":"error","message":"name already taken!"}`,
			want: ErrorEvent{Message: "name already taken!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeEvent([]byte(tt.in))
			if err != nil {
				t.Fatalf("DecodeEvent: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeEventUnknownTypeIsDropped(t *testing.T) {
	_, err := DecodeEvent([]byte(`{"type":"shiny_new_feature","payload":42}`))
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
}

func TestDecodeEventMissingFields(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"countdown without value", `{"type":"countdown"}`},
		{"countdown negative", `{"type":"countdown","countdown":-1}`},
		{"race started without question", `{"type":"race_started","time":300}`},
		{"code update without username", `{"type":"code_update","code":"x"}`},
		{"code update without code", `{"type":"code_update","username":"alice"}`},
		{"submission result without success", `{"type":"submission_result","username":"alice"}`},
		{"player joined with one player", `{"type":"player_joined","players":["alice"]}`},
		{"race finished without winner", `{"type":"race_finished"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvent([]byte(tt.in))
			if !errors.Is(err, ErrMissingField) {
				t.Fatalf("err = %v, want ErrMissingField", err)
			}
		})
	}
}

func TestDecodeEventMalformedJSON(t *testing.T) {
	if _, err := DecodeEvent([]byte(`{nope`)); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	events := []ServerEvent{
		Countdown{Value: 5},
		RaceStarted{Question: &problem.Problem{Title: "Sum", Description: "d", StartingCode: "s"}, Duration: 300},
		CodeUpdate{Username: "alice", Code: "x = 1"},
		SubmissionResult{Username: "bob", Success: false, Results: []string{"test1 failed"}},
		PlayerJoined{Username: "bob", Players: [2]string{"alice", "bob"}},
		RaceFinished{Winner: "alice"},
		GameOver{},
		ErrorEvent{Message: "boom"},
	}

	for _, ev := range events {
		data, err := json.Marshal(EncodeEvent(ev))
		if err != nil {
			t.Fatalf("marshal %#v: %v", ev, err)
		}
		got, err := DecodeEvent(data)
		if err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
		if !reflect.DeepEqual(got, ev) {
			t.Fatalf("round trip mismatch:\nsent %#v\ngot  %#v", ev, got)
		}
	}
}

func TestDecodeIntent(t *testing.T) {
	in, err := DecodeIntent([]byte(`{"type":"sync_code","room_id":"r1","username":"bob","code":"x = 1"}`))
	if err != nil {
		t.Fatalf("DecodeIntent: %v", err)
	}
	if in.Type != TypeSyncCode || in.RoomID != "r1" || in.Username != "bob" || in.Code == nil || *in.Code != "x = 1" {
		t.Fatalf("intent = %+v", in)
	}

	join, err := DecodeIntent([]byte(`{"type":"join_room","room_id":"r1","username":"bob"}`))
	if err != nil {
		t.Fatalf("DecodeIntent join: %v", err)
	}
	if join.Type != TypeJoinRoom {
		t.Fatalf("intent = %+v", join)
	}
}

func TestDecodeIntentRejectsBadFrames(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"unknown type", `{"type":"dance","room_id":"r1","username":"bob"}`, ErrUnknownType},
		{"missing room", `{"type":"join_room","username":"bob"}`, ErrMissingField},
		{"missing username", `{"type":"join_room","room_id":"r1"}`, ErrMissingField},
		{"sync without code", `{"type":"sync_code","room_id":"r1","username":"bob"}`, ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeIntent([]byte(tt.in)); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
