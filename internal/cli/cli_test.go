package cli

import "testing"

func TestRootCommandHasExpectedSubcommands(t *testing.T) {
	root := NewRootCmd()

	found := map[string]bool{}
	for _, c := range root.Commands() {
		found[c.Name()] = true
	}
	for _, want := range []string{"serve", "flush"} {
		if !found[want] {
			t.Errorf("root command is missing %q subcommand", want)
		}
	}
}

func TestServeRejectsDaemonize(t *testing.T) {
	serveDaemonizeFlag = true
	defer func() { serveDaemonizeFlag = false }()

	if err := runServe(nil, []string{"."}); err == nil {
		t.Fatal("expected an error when --daemonize is set")
	}
}
