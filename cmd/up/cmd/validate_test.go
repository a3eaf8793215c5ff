package cmd

import (
	"testing"

	"github.com/up-stack/up/internal/task"
)

func mkTask(pairs ...any) *task.Task {
	t := task.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		t.Set(pairs[i].(string), pairs[i+1])
	}
	return t
}

func TestValidateTask(t *testing.T) {
	tests := []struct {
		name    string
		task    *task.Task
		wantErr bool
	}{
		{"empty task", mkTask(), false},
		{"bool guard", mkTask("when", true), false},
		{"expression guard", mkTask("when", "x > 5"), false},
		{"unbound guard ok statically", mkTask("when", "missing > 5"), false},
		{"valid mode", mkTask("mode", "u=rw,g=r,o="), false},
		{"directory mode", mkTask("mode", "u=rwX", "directory", true), false},
		{"string timeout", mkTask("timeout", "1m30s"), false},
		{"int timeout", mkTask("timeout", 45), false},
		{"src string", mkTask("src", "anything.j2"), false},

		{"bad guard syntax", mkTask("when", "3 >"), true},
		{"bad guard type", mkTask("when", 123), true},
		{"bad mode spec", mkTask("mode", "u~r"), true},
		{"non-string mode", mkTask("mode", 644), true},
		{"bad timeout", mkTask("timeout", "soon"), true},
		{"negative timeout", mkTask("timeout", -1), true},
		{"non-string src", mkTask("src", 7), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTask(tt.task)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateTask() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
