package boot

import (
	"strconv"
	"strings"

	"github.com/gothread/tinykernel/kerr"
)

// Action names the boot-time command requested on the kernel command
// line, the equivalent of Pintos's run_actions dispatch.
type Action string

const (
	// ActionIdle runs no workload; the kernel boots and idles.
	ActionIdle Action = ""
	// ActionRun is the "run <spec>" action: run whatever workload the
	// options selected (currently only the threads-tests suite, gated by
	// -threads-tests). Other action words are file-system actions and are
	// out of scope; they parse but do nothing.
	ActionRun Action = "run"
)

// ParseArgs parses a kernel command line of the form used by Pintos's
// -q/-mlfqs/-rs=N flags: each argv entry is either a flag ("-mlfqs",
// "-q", "-rs=<seed>", "-ul=<pages>", "-threads-tests", "-h", "-f") or,
// for the first non-flag token, the action to run. Only the action
// "run" takes a following positional argument (the test spec); it is
// required (a bare "run" is a BootError) and otherwise ignored, since
// this kernel does not select among named test specs, only the
// threads-tests suite as a whole. Unlike unknown
// options, unrecognized action words are not fatal: the spec limits
// the fatal-unknown-option rule to options, and other actions are
// merely out-of-scope file-system actions that should parse cleanly.
func ParseArgs(argv []string) (opts []Option, action Action, err error) {
	sawAction := false
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		if !strings.HasPrefix(arg, "-") {
			if sawAction {
				return nil, "", kerr.NewBootError("multiple actions specified: "+arg, nil)
			}
			action = Action(arg)
			sawAction = true
			if action == ActionRun {
				if i+1 >= len(argv) || strings.HasPrefix(argv[i+1], "-") {
					return nil, "", kerr.NewBootError("action run requires a test spec argument", nil)
				}
				i++ // consume the <spec> token; this kernel runs one fixed suite
			}
			continue
		}
		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "-"), "=")
		switch name {
		case "h":
			opts = append(opts, WithHelp())
		case "f":
			opts = append(opts, WithFormat())
		case "mlfqs":
			opts = append(opts, WithMLFQS())
		case "q":
			opts = append(opts, WithPowerOffWhenDone())
		case "threads-tests":
			opts = append(opts, WithThreadsTests())
		case "rs":
			if !hasValue {
				return nil, "", kerr.NewBootError("-rs requires a value", nil)
			}
			seed, perr := strconv.ParseUint(value, 10, 64)
			if perr != nil {
				return nil, "", kerr.NewBootError("invalid -rs value: "+value, perr)
			}
			opts = append(opts, WithRandomSeed(seed))
		case "ul":
			if !hasValue {
				return nil, "", kerr.NewBootError("-ul requires a value", nil)
			}
			n, perr := strconv.Atoi(value)
			if perr != nil {
				return nil, "", kerr.NewBootError("invalid -ul value: "+value, perr)
			}
			opts = append(opts, WithUserPageLimit(n))
		default:
			return nil, "", kerr.NewBootError("unknown option -"+name, nil)
		}
	}
	return opts, action, nil
}
