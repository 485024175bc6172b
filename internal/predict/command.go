package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Command is a Predictor backed by an external model process.
//
// The process receives {"rows": [...]} as JSON on stdin and must print
// {"labels": [...]} on stdout, then exit 0. A process that cannot be
// started is reported as ErrUnavailable.
type Command struct {
	Path string
	Args []string

	// Env is appended to the current environment.
	Env []string
}

// NewCommand builds a Command from an argv list, or returns Unavailable
// when argv is empty.
func NewCommand(argv []string) Predictor {
	if len(argv) == 0 {
		return Unavailable{Reason: "no model command configured"}
	}
	return Command{Path: argv[0], Args: argv[1:]}
}

type commandRequest struct {
	Rows []Row `json:"rows"`
}

type commandResponse struct {
	Labels []string `json:"labels"`
}

// Predict runs the model process once for the whole batch.
func (c Command) Predict(ctx context.Context, rows []Row) ([]string, error) {
	input, err := json.Marshal(commandRequest{Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("model process exited with code %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var resp commandResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	return resp.Labels, nil
}
