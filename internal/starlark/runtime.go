package starlark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/xmirlint/pkg/lint/pattern"
	"github.com/leapstack-labs/xmirlint/pkg/xmir"
)

// CheckFunction is the entry point every pattern script defines.
const CheckFunction = "check"

// DefaultMaxSteps bounds one check() call.
const DefaultMaxSteps = 10_000_000

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	Recursion:       true,
}

// ScriptError is a compile or evaluation failure of one script.
type ScriptError struct {
	Script    string
	Message   string
	Backtrace string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s: %s", e.Script, e.Message)
}

func newScriptError(script string, err error) *ScriptError {
	se := &ScriptError{Script: script, Message: err.Error()}
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		se.Message = evalErr.Msg
		se.Backtrace = evalErr.Backtrace()
	}
	return se
}

// Runtime compiles and runs Starlark pattern scripts.
// It implements pattern.Runtime and is safe for concurrent use.
type Runtime struct {
	pool        *ThreadPool
	logger      *slog.Logger
	maxSteps    uint64
	predeclared starlark.StringDict
}

var _ pattern.Runtime = (*Runtime)(nil)

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger for script diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMaxSteps bounds the work of one check() call; zero disables the limit.
func WithMaxSteps(n uint64) Option {
	return func(r *Runtime) { r.maxSteps = n }
}

// stepLimit is the per-call step budget. Pooled threads only read a zero
// limit as unlimited on their first call, so zero is made explicit.
func (r *Runtime) stepLimit() uint64 {
	if r.maxSteps == 0 {
		return math.MaxUint64
	}
	return r.maxSteps
}

// NewRuntime creates a Starlark pattern runtime.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		logger:      slog.New(slog.DiscardHandler),
		maxSteps:    DefaultMaxSteps,
		predeclared: Predeclared(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.pool = NewThreadPool(0, r.logger)
	return r
}

// Compile executes the script's top level and returns a matcher calling its
// check(program, options) function. Globals are frozen afterwards so the
// matcher can run on many goroutines.
func (r *Runtime) Compile(name string, src []byte) (pattern.Matcher, error) {
	thread := r.pool.Get(name)
	defer r.pool.Put(thread)
	thread.SetMaxExecutionSteps(r.stepLimit())

	globals, err := starlark.ExecFileOptions(fileOptions, thread, name, src, r.predeclared)
	if err != nil {
		return nil, newScriptError(name, err)
	}

	fn, ok := globals[CheckFunction].(*starlark.Function)
	if !ok {
		return nil, &ScriptError{Script: name, Message: "script does not define check(program, options)"}
	}
	if fn.NumParams() != 2 || fn.HasVarargs() || fn.HasKwargs() {
		return nil, &ScriptError{Script: name, Message: "check must take exactly (program, options)"}
	}
	globals.Freeze()

	r.logger.Debug("pattern compiled", slog.String("script", name))
	return &matcher{runtime: r, name: name, check: fn}, nil
}

type matcher struct {
	runtime *Runtime
	name    string
	check   *starlark.Function
}

// Match calls check(program, options). The thread is cancelled as soon as
// ctx is done.
func (m *matcher) Match(ctx context.Context, prog *xmir.Program, opts map[string]any) ([]pattern.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	options, err := GoToStarlark(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: options: %w", m.name, err)
	}

	thread := m.runtime.pool.Get(m.name)
	thread.SetMaxExecutionSteps(m.runtime.stepLimit())
	stop := context.AfterFunc(ctx, func() {
		thread.Cancel(context.Cause(ctx).Error())
	})

	result, err := starlark.Call(thread, m.check, starlark.Tuple{ProgramToStarlark(prog), options}, nil)
	if stop() {
		m.runtime.pool.Put(thread)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", m.name, ctxErr)
		}
		return nil, newScriptError(m.name, err)
	}
	return toMatches(m.name, result)
}

// toMatches converts the value returned by check(). None means no matches.
func toMatches(script string, v starlark.Value) ([]pattern.Match, error) {
	if v == starlark.None {
		return nil, nil
	}
	iterable, ok := v.(starlark.Iterable)
	if !ok {
		return nil, &ScriptError{Script: script, Message: fmt.Sprintf("check returned %s, want list of match()", v.Type())}
	}

	var out []pattern.Match
	iter := iterable.Iterate()
	defer iter.Done()
	var item starlark.Value
	for i := 0; iter.Next(&item); i++ {
		s, ok := item.(*starlarkstruct.Struct)
		if !ok || s.Constructor() != matchConstructor {
			return nil, &ScriptError{Script: script, Message: fmt.Sprintf("item %d is %s, want match()", i, item.Type())}
		}
		m, err := structToMatch(s)
		if err != nil {
			return nil, &ScriptError{Script: script, Message: fmt.Sprintf("item %d: %v", i, err)}
		}
		out = append(out, m)
	}
	return out, nil
}

func structToMatch(s *starlarkstruct.Struct) (pattern.Match, error) {
	var m pattern.Match
	d := make(starlark.StringDict)
	s.ToStringDict(d)

	line, err := starlark.AsInt32(d["line"])
	if err != nil {
		return m, fmt.Errorf("line: %w", err)
	}
	m.Line = line
	text, _ := starlark.AsString(d["text"])
	m.Text = text
	severity, _ := starlark.AsString(d["severity"])
	m.Severity = severity
	return m, nil
}
