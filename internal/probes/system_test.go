package probes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/basilica-ai/minercheck/internal/checks"
	"github.com/basilica-ai/minercheck/internal/execution"
)

func okResult(stdout string) execution.Result {
	return execution.Result{Stdout: stdout}
}

func exitResult(code int, stdout, stderr string) execution.Result {
	return execution.Result{ExitCode: code, Stdout: stdout, Stderr: stderr, Err: errors.New("exit status")}
}

func notFoundResult(name string) execution.Result {
	return execution.Result{ExitCode: -1, NotFound: true, Err: errors.New("command not found: " + name)}
}

var (
	unameCmd = execution.Command{Name: "uname", Args: []string{"-s"}, Timeout: CommandTimeout}
	nprocCmd = execution.Command{Name: "nproc", Timeout: CommandTimeout}
	freeCmd  = execution.Command{Name: "free", Args: []string{"-g"}, Timeout: CommandTimeout}
)

const freeOutput = `               total        used        free      shared  buff/cache   available
Mem:              62          11           2           0          48          50
Swap:              1           0           1
`

func probeOnce(t *testing.T, p checks.Prober) []checks.Outcome {
	t.Helper()
	out, err := p.Probe(context.Background())
	require.NoError(t, err)
	return out
}

func TestOSProbe(t *testing.T) {
	tests := []struct {
		name       string
		res        execution.Result
		wantPassed bool
		wantMsg    string
		wantKind   checks.Kind
	}{
		{"linux", okResult("Linux\n"), true, "Running on Linux", ""},
		{"darwin", okResult("Darwin\n"), false, "Running on Darwin", checks.KindCheckFailed},
		{"uname missing", notFoundResult("uname"), false, "Running on unknown OS", checks.KindEnvironmentMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			r := NewMockRunner(ctrl)
			r.EXPECT().Run(gomock.Any(), unameCmd).Return(tt.res)

			out := probeOnce(t, OSProbe(r))
			require.Len(t, out, 1)
			require.Equal(t, "Operating System", out[0].Name)
			require.Equal(t, tt.wantPassed, out[0].Passed)
			require.Equal(t, tt.wantMsg, out[0].Message)
			require.Equal(t, tt.wantKind, out[0].Kind)
			if !tt.wantPassed {
				require.Contains(t, out[0].Detail, "Basilica requires Linux")
			}
		})
	}
}

func TestCPUProbe(t *testing.T) {
	tests := []struct {
		name       string
		res        execution.Result
		wantPassed bool
		wantMsg    string
	}{
		{"enough", okResult("16\n"), true, "16 cores detected"},
		{"exactly minimum", okResult("8"), true, "8 cores detected"},
		{"too few", okResult("4\n"), false, "4 cores detected"},
		{"garbage", okResult("lots"), false, "Could not determine CPU cores"},
		{"nproc fails", exitResult(1, "", "boom"), false, "Could not determine CPU cores"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			r := NewMockRunner(ctrl)
			r.EXPECT().Run(gomock.Any(), nprocCmd).Return(tt.res)

			out := probeOnce(t, CPUProbe(r))
			require.Len(t, out, 1)
			require.Equal(t, tt.wantPassed, out[0].Passed)
			require.Equal(t, tt.wantMsg, out[0].Message)
			if !tt.wantPassed {
				require.Contains(t, out[0].Detail, "Recommended: 8+ cores")
			}
		})
	}
}

func TestRAMProbe(t *testing.T) {
	t.Run("enough", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r := NewMockRunner(ctrl)
		r.EXPECT().Run(gomock.Any(), freeCmd).Return(okResult(freeOutput))

		out := probeOnce(t, RAMProbe(r))
		require.Len(t, out, 1)
		require.True(t, out[0].Passed)
		require.Equal(t, "62GB total memory", out[0].Message)
	})

	t.Run("too little", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r := NewMockRunner(ctrl)
		r.EXPECT().Run(gomock.Any(), freeCmd).Return(okResult("Mem: 8 1 7 0 0 7\n"))

		out := probeOnce(t, RAMProbe(r))
		require.Len(t, out, 1)
		require.False(t, out[0].Passed)
		require.Equal(t, "8GB total memory", out[0].Message)
		require.Equal(t, "Recommended: 16GB+", out[0].Detail)
	})

	t.Run("free missing still reports", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r := NewMockRunner(ctrl)
		r.EXPECT().Run(gomock.Any(), freeCmd).Return(notFoundResult("free"))

		out := probeOnce(t, RAMProbe(r))
		require.Len(t, out, 1)
		require.False(t, out[0].Passed)
		require.Equal(t, checks.KindEnvironmentMissing, out[0].Kind)
		require.Contains(t, out[0].Detail, "command not found: free")
	})
}

func TestParseFreeTotal(t *testing.T) {
	gb, err := parseFreeTotal(freeOutput)
	require.NoError(t, err)
	require.Equal(t, 62, gb)

	_, err = parseFreeTotal("Swap: 1 0 1\n")
	require.Error(t, err)

	_, err = parseFreeTotal("Mem: many\n")
	require.Error(t, err)
}
