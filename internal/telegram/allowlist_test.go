package telegram

import "testing"

func TestAllowListEmptyAllowsAll(t *testing.T) {
	msg := &Message{From: &User{ID: 1}, Chat: Chat{ID: 2}}
	if !NewAllowList(nil, nil).IsAllowed(msg) {
		t.Error("empty allow list should permit everyone")
	}
	var nilList *AllowList
	if !nilList.IsAllowed(msg) {
		t.Error("nil allow list should permit everyone")
	}
}

func TestAllowListRestricts(t *testing.T) {
	a := NewAllowList([]int64{100}, []int64{-200})

	tests := []struct {
		name string
		msg  *Message
		want bool
	}{
		{"allowed user", &Message{From: &User{ID: 100}, Chat: Chat{ID: 5}}, true},
		{"allowed chat", &Message{From: &User{ID: 7}, Chat: Chat{ID: -200}}, true},
		{"denied", &Message{From: &User{ID: 7}, Chat: Chat{ID: 5}}, false},
		{"no sender", &Message{Chat: Chat{ID: 5}}, false},
	}
	for _, tt := range tests {
		if got := a.IsAllowed(tt.msg); got != tt.want {
			t.Errorf("%s: IsAllowed = %v, want %v", tt.name, got, tt.want)
		}
	}
}
