package cache

import (
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "constant key",
			key:  Key{Kind: "today"},
			want: "football:today",
		},
		{
			name: "keyed by date",
			key: Key{
				Kind:   "date",
				Params: map[string]string{"date": "2025-08-27"},
			},
			want: "football:date:date=2025-08-27",
		},
		{
			name: "keyed by days",
			key: Key{
				Kind:   "upcoming",
				Params: map[string]string{"days": "7"},
			},
			want: "football:upcoming:days=7",
		},
		{
			name: "kind with stray separators",
			key:  Key{Kind: ":live:"},
			want: "football:live",
		},
		{
			name: "deterministic ordering with multiple params",
			key: Key{
				Kind: "match",
				Params: map[string]string{
					"z": "3",
					"a": "1",
					"m": "2",
				},
			},
			want: "football:match:a=1:m=2:z=3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("Key.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestKey_Determinism ensures same input always produces same key
func TestKey_Determinism(t *testing.T) {
	key := Key{
		Kind: "date",
		Params: map[string]string{
			"date":   "2025-08-27",
			"locale": "en",
			"league": "8",
		},
	}

	first := key.String()
	for i := 0; i < 10; i++ {
		if got := key.String(); got != first {
			t.Errorf("result[%d] = %v, want %v (not deterministic)", i, got, first)
		}
	}
}
