package predict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helperEnv = "KPIDASH_HELPER_PREDICTOR"

// TestHelperProcess is the fake model process started by helperCommand.
func TestHelperProcess(t *testing.T) {
	mode := os.Getenv(helperEnv)
	if mode == "" {
		return
	}

	var req commandRequest
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		fmt.Fprintln(os.Stderr, "bad input:", err)
		os.Exit(3)
	}

	switch mode {
	case "label":
		labels := make([]string, len(req.Rows))
		for i, r := range req.Rows {
			if r[EventType] == "purchase" {
				labels[i] = "Converted"
			} else {
				labels[i] = "Bounced"
			}
		}
		_ = json.NewEncoder(os.Stdout).Encode(commandResponse{Labels: labels})
	case "short":
		_ = json.NewEncoder(os.Stdout).Encode(commandResponse{Labels: []string{}})
	case "garbage":
		fmt.Fprint(os.Stdout, "not json")
	case "fail":
		fmt.Fprintln(os.Stderr, "feature transform failed")
		os.Exit(4)
	}
	os.Exit(0)
}

func helperCommand(mode string) Command {
	return Command{
		Path: os.Args[0],
		Args: []string{"-test.run=TestHelperProcess", "--"},
		Env:  []string{helperEnv + "=" + mode},
	}
}

func TestCommand_Labels(t *testing.T) {
	purchase := fullRow()
	purchase[EventType] = "purchase"

	labels, err := Run(context.Background(), helperCommand("label"), []Row{fullRow(), purchase})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bounced", "Converted"}, labels)
}

func TestCommand_Failures(t *testing.T) {
	tests := []struct {
		mode string
		code string
		msg  string
	}{
		{"short", CodeRowCount, "returned 0 labels for 1 rows"},
		{"garbage", CodePredictFailed, "decode labels"},
		{"fail", CodePredictFailed, "feature transform failed"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			_, err := Run(context.Background(), helperCommand(tt.mode), []Row{fullRow()})
			require.Error(t, err)

			var be *BatchError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tt.code, be.Code)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestCommand_MissingExecutable(t *testing.T) {
	c := Command{Path: filepath.Join(t.TempDir(), "no-such-model")}
	_, err := Run(context.Background(), c, []Row{fullRow()})
	require.Error(t, err)

	var be *BatchError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, CodeUnavailable, be.Code)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestNewCommand(t *testing.T) {
	p := NewCommand(nil)
	_, isUnavailable := p.(Unavailable)
	assert.True(t, isUnavailable)

	c, ok := NewCommand([]string{"python3", "predict.py", "--model", "rf.pkl"}).(Command)
	require.True(t, ok)
	assert.Equal(t, "python3", c.Path)
	assert.Equal(t, "predict.py --model rf.pkl", strings.Join(c.Args, " "))
}
