package mediaio

import "testing"

func TestParseContentRange(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantStart int64
		wantEnd   int64
		wantTotal int64
		wantOK    bool
	}{
		{"well formed", "bytes 0-499/1234", 0, 499, 1234, true},
		{"unknown total", "bytes 0-499/*", 0, 499, -1, true},
		{"whitespace tolerant", "bytes  0 - 499 / 1234", 0, 499, 1234, true},
		{"mixed case", "Bytes 0-499/1234", 0, 499, 1234, true},
		{"empty", "", 0, -1, -1, false},
		{"bare range without bytes prefix", "0-499/1234", 0, 499, 1234, true},
		{"missing slash", "bytes 0-499", 0, -1, -1, false},
		{"missing dash", "bytes 0499/1234", 0, -1, -1, false},
		{"non-numeric", "bytes a-b/1234", 0, -1, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, total, ok := parseContentRange(tt.header)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if start != tt.wantStart || end != tt.wantEnd || total != tt.wantTotal {
				t.Errorf("got (%d, %d, %d), want (%d, %d, %d)",
					start, end, total, tt.wantStart, tt.wantEnd, tt.wantTotal)
			}
		})
	}
}
