package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "kind and id",
			key:  Key{Kind: "friends", ID: 261},
			want: "rbx:friends:261",
		},
		{
			name: "kind is normalized",
			key:  Key{Kind: "/groups/", ID: 1},
			want: "rbx:groups:1",
		},
		{
			name: "no kind",
			key:  Key{ID: 7},
			want: "rbx:7",
		},
		{
			name: "params sorted",
			key: Key{
				Kind: "badges",
				ID:   261,
				Params: url.Values{
					"sortOrder": []string{"Desc"},
					"limit":     []string{"25"},
				},
			},
			want: "rbx:badges:261:limit=25:sortOrder=Desc",
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
		Kind: "badges",
		ID:   123456789,
		Params: url.Values{
			"z": []string{"1"},
			"a": []string{"2"},
			"m": []string{"3"},
		},
	}

	first := key.String()
	for i := 0; i < 10; i++ {
		if got := key.String(); got != first {
			t.Errorf("result[%d] = %v, want %v (not deterministic)", i, got, first)
		}
	}
}
