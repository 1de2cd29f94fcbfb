package app

import (
	"testing"
)

func TestParseCommand_DefaultsToServe(t *testing.T) {
	cmd, known := ParseCommand([]string{})
	if !known {
		t.Errorf("ParseCommand(%v) reported unknown command", []string{})
	}
	if cmd != CommandServe {
		t.Errorf("ParseCommand([]) = %q, want %q", cmd, CommandServe)
	}
}

func TestParseCommand_Serve(t *testing.T) {
	cmd, known := ParseCommand([]string{"serve"})
	if !known {
		t.Errorf("ParseCommand(%v) reported unknown command", []string{"serve"})
	}
	if cmd != CommandServe {
		t.Errorf("ParseCommand([serve]) = %q, want %q", cmd, CommandServe)
	}
}

func TestParseCommand_Migrate(t *testing.T) {
	cmd, known := ParseCommand([]string{"migrate"})
	if !known {
		t.Errorf("ParseCommand(%v) reported unknown command", []string{"migrate"})
	}
	if cmd != CommandMigrate {
		t.Errorf("ParseCommand([migrate]) = %q, want %q", cmd, CommandMigrate)
	}
}

func TestParseCommand_Healthcheck(t *testing.T) {
	cmd, known := ParseCommand([]string{"healthcheck"})
	if !known {
		t.Errorf("ParseCommand(%v) reported unknown command", []string{"healthcheck"})
	}
	if cmd != CommandHealthcheck {
		t.Errorf("ParseCommand([healthcheck]) = %q, want %q", cmd, CommandHealthcheck)
	}
}

func TestParseCommand_UnknownDefaultsToServe(t *testing.T) {
	for _, arg := range []string{"unknown", "worker"} {
		cmd, known := ParseCommand([]string{arg})
		if cmd != CommandServe {
			t.Errorf("ParseCommand([%s]) = %q, want %q", arg, cmd, CommandServe)
		}
		if known {
			t.Errorf("ParseCommand([%s]) should report an unknown command", arg)
		}
	}
}

func TestParseCommand_IgnoresExtraArgs(t *testing.T) {
	cmd, known := ParseCommand([]string{"migrate", "--flag", "value"})
	if !known {
		t.Errorf("ParseCommand(%v) reported unknown command", []string{"migrate", "--flag", "value"})
	}
	if cmd != CommandMigrate {
		t.Errorf("ParseCommand([migrate --flag value]) = %q, want %q", cmd, CommandMigrate)
	}
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{CommandServe, "serve"},
		{CommandMigrate, "migrate"},
		{CommandHealthcheck, "healthcheck"},
	}

	for _, tt := range tests {
		if got := string(tt.cmd); got != tt.want {
			t.Errorf("Command(%q) string = %q, want %q", tt.cmd, got, tt.want)
		}
	}
}
