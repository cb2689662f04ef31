package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// VarResolver resolves {{var}} placeholders in stage commands, arguments and
// environment values. It supports built-ins: {{$timestamp}} and {{$uuid}}.
//
// This lives in domain because it does not depend on YAML/FS/exec. Only stdlib.
type VarResolver struct {
	now    func() time.Time
	uuidV4 func() (string, error)
}

// VarResolverOption configures VarResolver.
type VarResolverOption func(*VarResolver)

// WithNow overrides the clock (useful for tests).
func WithNow(now func() time.Time) VarResolverOption {
	return func(r *VarResolver) { r.now = now }
}

// WithUUID overrides UUID generation (useful for tests).
func WithUUID(gen func() (string, error)) VarResolverOption {
	return func(r *VarResolver) { r.uuidV4 = gen }
}

func NewVarResolver(opts ...VarResolverOption) *VarResolver {
	r := &VarResolver{
		now:    time.Now,
		uuidV4: uuidV4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RuntimeResolver caches built-ins for a single "resolution session" (one stage
// run) so repeated {{$uuid}} across command, args and env stays consistent.
type RuntimeResolver struct {
	base     Vars
	builtins Vars
	inner    *VarResolver
}

func (r *VarResolver) NewRuntime(vars Vars) (*RuntimeResolver, error) {
	ts := strconv.FormatInt(r.now().Unix(), 10)

	u, err := r.uuidV4()
	if err != nil {
		return nil, &OpError{
			Op:   "vars.builtins.uuid",
			Kind: KindExecution,
			Err:  err,
		}
	}

	baseCopy := Vars{}
	for k, v := range vars {
		baseCopy[k] = v
	}

	return &RuntimeResolver{
		base: baseCopy,
		builtins: Vars{
			"$timestamp": ts,
			"$uuid":      u,
		},
		inner: r,
	}, nil
}

// ResolveString resolves placeholders in a string.
// Supported tokens: {{workdir}}, {{python}}, {{$timestamp}}, {{$uuid}}.
func (rr *RuntimeResolver) ResolveString(s string) (string, error) {
	return rr.inner.resolveStringWith(rr.base, rr.builtins, s)
}

// ResolveArgs resolves placeholders in every argument, preserving order.
func (rr *RuntimeResolver) ResolveArgs(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for i, a := range args {
		ra, err := rr.ResolveString(a)
		if err != nil {
			return nil, wrapField(err, fmt.Sprintf("args[%d]", i))
		}
		out = append(out, ra)
	}
	return out, nil
}

// ResolveEnv resolves placeholders in environment values (not keys).
func (rr *RuntimeResolver) ResolveEnv(env map[string]string) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range env {
		rv, err := rr.ResolveString(v)
		if err != nil {
			return nil, wrapField(err, "env."+k)
		}
		out[k] = rv
	}
	return out, nil
}

// ResolveStage resolves placeholders in command, args and env.
// It returns a copy (does not mutate input).
func (rr *RuntimeResolver) ResolveStage(stage StageSpec) (StageSpec, error) {
	out := stage

	cmd, err := rr.ResolveString(stage.Command)
	if err != nil {
		return StageSpec{}, wrapField(err, "stage.command")
	}
	out.Command = cmd

	args, err := rr.ResolveArgs(stage.Args)
	if err != nil {
		return StageSpec{}, wrapField(err, "stage.args")
	}
	out.Args = args

	if stage.Env != nil {
		env, err := rr.ResolveEnv(stage.Env)
		if err != nil {
			return StageSpec{}, wrapField(err, "stage.env")
		}
		out.Env = env
	} else {
		out.Env = map[string]string{}
	}

	files := make([]FileCheck, 0, len(stage.Checks.Files))
	for i, fc := range stage.Checks.Files {
		p, err := rr.ResolveString(fc.Path)
		if err != nil {
			return StageSpec{}, wrapField(err, fmt.Sprintf("stage.checks.files[%d]", i))
		}
		files = append(files, FileCheck{Path: p, MinBytes: fc.MinBytes})
	}
	out.Checks.Files = files

	return out, nil
}

func (r *VarResolver) resolveStringWith(vars Vars, builtins Vars, s string) (string, error) {
	// Fast path: no token start.
	if !strings.Contains(s, "{{") {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s) + 16)

	for i := 0; i < len(s); {
		// Look for "{{"
		if i+1 < len(s) && s[i] == '{' && s[i+1] == '{' {
			start := i + 2

			// Find "}}"
			end := strings.Index(s[start:], "}}")
			if end < 0 {
				return "", &OpError{
					Op:   "vars.resolve",
					Kind: KindInvalidConfig,
					Err:  errors.New("unclosed placeholder"),
				}
			}
			end = start + end

			name := strings.TrimSpace(s[start:end])
			if name == "" {
				return "", &OpError{
					Op:   "vars.resolve",
					Kind: KindInvalidConfig,
					Err:  errors.New("empty placeholder"),
				}
			}

			val, ok := builtins[name]
			if !ok {
				val, ok = vars[name]
			}
			if !ok {
				return "", &OpError{
					Op:   "vars.resolve",
					Kind: KindMissingVar,
					Err:  fmt.Errorf("missing variable: %s", name),
				}
			}

			b.WriteString(val)
			i = end + 2
			continue
		}

		b.WriteByte(s[i])
		i++
	}

	return b.String(), nil
}

func wrapField(err error, field string) error {
	// Keep Kind information, but add context about which field was being resolved.
	return &OpError{
		Op:   "vars.resolve",
		Kind: KindOf(err),
		Err:  fmt.Errorf("%s: %w", field, err),
	}
}

// uuidV4 generates a RFC4122-ish UUID v4 without external dependencies.
func uuidV4() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}

	// Version 4 (random)
	b[6] = (b[6] & 0x0f) | 0x40
	// Variant 10xxxxxx
	b[8] = (b[8] & 0x3f) | 0x80

	hexed := make([]byte, 36)
	hex.Encode(hexed[0:8], b[0:4])
	hexed[8] = '-'
	hex.Encode(hexed[9:13], b[4:6])
	hexed[13] = '-'
	hex.Encode(hexed[14:18], b[6:8])
	hexed[18] = '-'
	hex.Encode(hexed[19:23], b[8:10])
	hexed[23] = '-'
	hex.Encode(hexed[24:36], b[10:16])

	return string(hexed), nil
}
