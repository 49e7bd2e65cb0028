package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-a", "127.0.0.1:50051", "-x", "1"},
			allowed: []string{"-a"},
			want:    []string{"-a", "127.0.0.1:50051"},
		},
		{
			name:    "equals form",
			args:    []string{"-p=session-identifier", "-q=1"},
			allowed: []string{"-p"},
			want:    []string{"-p=session-identifier"},
		},
		{
			name:    "unknown flags dropped",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next dash token is not a value",
			args:    []string{"-c", "-d", "shiftdesk.db"},
			allowed: []string{"-c", "-d"},
			want:    []string{"-c", "-d", "shiftdesk.db"},
		},
		{
			name:    "repeated flag keeps order",
			args:    []string{"-c", "one.json", "-c", "two.json"},
			allowed: []string{"-c"},
			want:    []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:    "empty",
			args:    []string{},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "short", args: []string{"bin", "-c", "/etc/shiftdesk.json"}, want: "/etc/shiftdesk.json"},
		{name: "long", args: []string{"bin", "-config", "/etc/console.json"}, want: "/etc/console.json"},
		{name: "absent", args: []string{"bin", "-a", "localhost:1"}, want: ""},
		{name: "last wins", args: []string{"bin", "-c", "1.json", "-config", "2.json"}, want: "2.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			assert.Equal(t, tt.want, JsonConfigFlags())
		})
	}
}
