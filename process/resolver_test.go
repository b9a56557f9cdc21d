package process

import (
	"errors"
	"testing"

	goerrors "github.com/kbukum/butler/errors"
)

func TestResolverCachesHits(t *testing.T) {
	calls := 0
	r := NewResolver()
	r.lookPath = func(name string) (string, error) {
		calls++
		if name == "sh" {
			return "/bin/sh", nil
		}
		return "", errors.New("executable file not found in $PATH")
	}

	for range 3 {
		path, err := r.Resolve("sh")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path != "/bin/sh" {
			t.Fatalf("expected /bin/sh, got %q", path)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one lookup, got %d", calls)
	}
	if r.Len() != 1 {
		t.Fatalf("expected one cached entry, got %d", r.Len())
	}
}

func TestResolverDoesNotCacheMisses(t *testing.T) {
	calls := 0
	r := NewResolver()
	r.lookPath = func(string) (string, error) {
		calls++
		return "", errors.New("missing")
	}

	for range 2 {
		_, err := r.Resolve("nope")
		if !errors.Is(err, goerrors.ErrNotFound) {
			t.Fatalf("expected NOT_FOUND, got %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected a lookup per miss, got %d", calls)
	}
	if r.Len() != 0 {
		t.Fatalf("expected no cached entries, got %d", r.Len())
	}
}

func TestTail(t *testing.T) {
	if got := tail([]byte("  short\n")); got != "short" {
		t.Fatalf("expected trimmed text, got %q", got)
	}
	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'x'
	}
	if got := tail(long); len(got) != 2048+3 || got[:3] != "..." {
		t.Fatalf("expected truncated tail, got len %d", len(got))
	}
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{Command{Binary: "go", Args: []string{"build", "./..."}}, "go build ./..."},
		{ShellCommand("sh", "echo $HOME"), `sh -c "echo $HOME"`},
		{Command{Binary: "touch", Args: []string{""}}, `touch ""`},
	}
	for _, tt := range tests {
		if got := tt.cmd.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCommandDefaults(t *testing.T) {
	var c Command
	if c.gracePeriod() != defaultGracePeriod {
		t.Errorf("gracePeriod() = %v, want %v", c.gracePeriod(), defaultGracePeriod)
	}
	if c.environ() != nil {
		t.Error("environ() should inherit the parent environment")
	}
	c.Env = []string{"BUTLER_X=1"}
	env := c.environ()
	if env[len(env)-1] != "BUTLER_X=1" {
		t.Errorf("extra env not appended last: %v", env[len(env)-1])
	}
}
