package domain

import "testing"

func TestNewEventID(t *testing.T) {
	tests := []struct {
		name    string
		input   int64
		want    EventID
		wantErr bool
	}{
		{"zero", 0, 0, false},
		{"one", 1, 1, false},
		{"max", int64(MaxEventID), MaxEventID, false},
		{"negative", -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEventID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewEventID(%d) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("NewEventID(%d) unexpected error: %v", tt.input, err)
				return
			}
			if got != tt.want {
				t.Errorf("NewEventID(%d) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestEventIDNext(t *testing.T) {
	tests := []struct {
		name string
		id   EventID
		want EventID
	}{
		{"zero to one", 0, 1},
		{"increments", 41, 42},
		{"wraps at max", MaxEventID, 0},
		{"one before max", MaxEventID - 1, MaxEventID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Next(); got != tt.want {
				t.Errorf("EventID(%d).Next() = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestEventIDIsNextOf(t *testing.T) {
	tests := []struct {
		name  string
		id    EventID
		other EventID
		want  bool
	}{
		{"direct successor", 2, 1, true},
		{"one of zero", 1, 0, true},
		{"gap", 3, 1, false},
		{"same", 5, 5, false},
		{"predecessor", 4, 5, false},
		{"zero after max", 0, MaxEventID, true},
		{"one after max", 1, MaxEventID, false},
		{"max after max minus one", MaxEventID, MaxEventID - 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.IsNextOf(tt.other); got != tt.want {
				t.Errorf("EventID(%d).IsNextOf(%d) = %v, want %v", tt.id, tt.other, got, tt.want)
			}
		})
	}
}

func TestEventIDCompare(t *testing.T) {
	tests := []struct {
		name  string
		id    EventID
		other EventID
		want  int
	}{
		{"less", 1, 2, -1},
		{"greater", 2, 1, 1},
		{"equal", 7, 7, 0},
		{"max before wrapped zero", MaxEventID, 0, -1},
		{"wrapped zero after max", 0, MaxEventID, 1},
		{"max after ordinary", MaxEventID, 5, 1},
		{"zero before ordinary", 0, 5, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Compare(tt.other); got != tt.want {
				t.Errorf("EventID(%d).Compare(%d) = %d, want %d", tt.id, tt.other, got, tt.want)
			}
		})
	}
}
