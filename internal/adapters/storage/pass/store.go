package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"strings"

	"github.com/bnema/serverctl/internal/domain"
	"github.com/bnema/serverctl/internal/ports"
)

const DefaultPrefix = "serverctl"

var ErrUnavailable = errors.New("pass command unavailable")

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

// Store keeps values in the pass password manager under a key prefix.
type Store struct {
	prefix   string
	run      runFunc
	lookPath func(file string) (string, error)
}

var _ ports.KeyValueStore = (*Store)(nil)

func NewStore(prefix string) *Store {
	return &Store{prefix: prefix, run: runPassCommand, lookPath: exec.LookPath}
}

func (s *Store) Available() bool {
	if s.lookPath == nil {
		return true
	}
	_, err := s.lookPath("pass")
	return err == nil
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	_, err := s.pass(ctx, "put", key, value+"\n", "insert", "-m", "-f")
	return err
}

// Get returns the stored value without the newline pass appends on output.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	stdout, err := s.pass(ctx, "get", key, "", "show")
	if err != nil {
		return "", err
	}

	return strings.TrimRight(stdout, "\r\n"), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.pass(ctx, "delete", key, "", "rm", "-f")
	return err
}

// pass runs one pass subcommand against the entry for key, which is always
// the last argument.
func (s *Store) pass(ctx context.Context, op, key, input string, args ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	args = append(args, s.entry(key))
	stdout, stderr, err := s.run(ctx, input, args...)
	switch {
	case err == nil:
		return stdout, nil
	case strings.Contains(stderr, "is not in the password store"):
		return "", fmt.Errorf("pass %s %q: %w", op, key, domain.ErrKeyNotFound)
	case stderr == "":
		return "", fmt.Errorf("pass %s %q: %w", op, key, err)
	default:
		return "", fmt.Errorf("pass %s %q: %w: %s", op, key, err, stderr)
	}
}

func (s *Store) entry(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func runPassCommand(ctx context.Context, input string, args ...string) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}
