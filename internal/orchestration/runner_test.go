package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/basilica-ai/minercheck/internal/checks"
)

type testConfig struct {
	Nodes  []string
	Wallet bool
}

func passProbe(name string) checks.Prober {
	return checks.NewProbe(name, 0, func(context.Context) ([]checks.Outcome, error) {
		return []checks.Outcome{checks.Pass(name, "ok")}, nil
	})
}

func failProbe(name string) checks.Prober {
	return checks.NewProbe(name, 0, func(context.Context) ([]checks.Outcome, error) {
		return []checks.Outcome{checks.Fail(name, checks.KindCheckFailed, "not ok", "fix it")}, nil
	})
}

func outcomeNames(outcomes []checks.Outcome) []string {
	names := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		names = append(names, o.Name)
	}
	return names
}

func testStages() []checks.Stage[testConfig] {
	return []checks.Stage[testConfig]{
		{
			Name:   "System",
			Probes: checks.Static[testConfig](passProbe("OS"), failProbe("CPU"), passProbe("RAM")),
		},
		{
			Name:   "Nodes",
			Active: func(c testConfig) bool { return len(c.Nodes) > 0 },
			Probes: func(c testConfig) []checks.Prober {
				var ps []checks.Prober
				for _, n := range c.Nodes {
					ps = append(ps, passProbe("Node SSH: "+n))
				}
				return ps
			},
		},
		{
			Name:   "Wallet",
			Active: func(c testConfig) bool { return c.Wallet },
			Probes: checks.Static[testConfig](passProbe("btcli")),
		},
		{
			Name:   "Service",
			Active: checks.Always[testConfig],
			Probes: checks.Static[testConfig](failProbe("Miner Service")),
		},
	}
}

func TestRun_OnlyAlwaysActiveStages(t *testing.T) {
	run := New(testStages()).Run(context.Background(), testConfig{})

	require.Len(t, run.Stages, 2)
	assert.Equal(t, "System", run.Stages[0].Name)
	assert.Equal(t, "Service", run.Stages[1].Name)

	s := run.Summary()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Passed)
	assert.InDelta(t, 50.0, s.Percentage, 0.001)
	assert.Equal(t, []string{"CPU", "Miner Service"}, outcomeNames(s.Failed))
	assert.NotEmpty(t, run.ID)
}

func TestRun_OrderFollowsStagesThenProbes(t *testing.T) {
	run := New(testStages()).Run(context.Background(), testConfig{Nodes: []string{"a", "b"}, Wallet: true})

	assert.Equal(t,
		[]string{"OS", "CPU", "RAM", "Node SSH: a", "Node SSH: b", "btcli", "Miner Service"},
		outcomeNames(run.Outcomes()))
	s := run.Summary()
	assert.Equal(t, s.Total, s.Passed+len(s.Failed))
}

func TestRun_NoStages(t *testing.T) {
	run := New[testConfig](nil).Run(context.Background(), testConfig{})
	s := run.Summary()
	assert.Zero(t, s.Total)
	assert.Zero(t, s.Percentage)
	assert.False(t, s.OK())
}

func TestRun_FailureIsolation(t *testing.T) {
	var ranAfter atomic.Bool
	stages := []checks.Stage[testConfig]{{
		Name: "Faulty",
		Probes: checks.Static[testConfig](
			checks.NewProbe("errors", 0, func(context.Context) ([]checks.Outcome, error) {
				return nil, errors.New("unexpected output from free")
			}),
			checks.NewProbe("panics", 0, func(context.Context) ([]checks.Outcome, error) {
				panic("index out of range")
			}),
			checks.NewProbe("after", 0, func(context.Context) ([]checks.Outcome, error) {
				ranAfter.Store(true)
				return []checks.Outcome{checks.Pass("after", "still ran")}, nil
			}),
		),
	}}

	run := New(stages).Run(context.Background(), testConfig{})
	out := run.Outcomes()

	require.True(t, ranAfter.Load())
	require.Len(t, out, 3)

	assert.Equal(t, "errors", out[0].Name)
	assert.False(t, out[0].Passed)
	assert.Equal(t, checks.KindInternalFault, out[0].Kind)
	assert.Contains(t, out[0].Detail, "unexpected output from free")

	assert.Equal(t, "panics", out[1].Name)
	assert.False(t, out[1].Passed)
	assert.Equal(t, checks.KindInternalFault, out[1].Kind)
	assert.Contains(t, out[1].Detail, "index out of range")

	assert.True(t, out[2].Passed)
}

func TestRun_ProbeErrorKeepsPartialOutcomes(t *testing.T) {
	stages := []checks.Stage[testConfig]{{
		Name: "Partial",
		Probes: checks.Static[testConfig](checks.NewProbe("chain", 0, func(context.Context) ([]checks.Outcome, error) {
			return []checks.Outcome{checks.Pass("first link", "ok")}, errors.New("second link exploded")
		})),
	}}

	out := New(stages).Run(context.Background(), testConfig{}).Outcomes()
	require.Len(t, out, 2)
	assert.True(t, out[0].Passed)
	assert.Equal(t, "chain", out[1].Name)
	assert.False(t, out[1].Passed)
}

func TestRun_ProbeIgnoringDeadlineIsAbandoned(t *testing.T) {
	const timeout = 50 * time.Millisecond
	const grace = 20 * time.Millisecond

	release := make(chan struct{})
	defer close(release)

	stages := []checks.Stage[testConfig]{{
		Name: "Slow",
		Probes: checks.Static[testConfig](checks.NewProbe("stuck", timeout, func(context.Context) ([]checks.Outcome, error) {
			// ignores ctx on purpose
			select {
			case <-release:
			case <-time.After(5 * time.Second):
			}
			return []checks.Outcome{checks.Pass("stuck", "too late")}, nil
		})),
	}}

	start := time.Now()
	out := New(stages, WithGracePeriod(grace)).Run(context.Background(), testConfig{}).Outcomes()
	elapsed := time.Since(start)

	require.Len(t, out, 1)
	assert.False(t, out[0].Passed)
	assert.Equal(t, checks.KindTimeout, out[0].Kind)
	assert.NotEmpty(t, out[0].Detail)
	assert.Less(t, elapsed, timeout+grace+500*time.Millisecond)
}

func TestRun_ProbeHonouringDeadline(t *testing.T) {
	defer goleak.VerifyNone(t)

	stages := []checks.Stage[testConfig]{{
		Name: "Slow",
		Probes: checks.Static[testConfig](checks.NewProbe("waits", 0, func(ctx context.Context) ([]checks.Outcome, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})),
	}}

	start := time.Now()
	out := New(stages, WithProbeTimeout(30*time.Millisecond)).Run(context.Background(), testConfig{}).Outcomes()

	require.Len(t, out, 1)
	assert.Equal(t, checks.KindTimeout, out[0].Kind)
	assert.Contains(t, out[0].Detail, "30ms")
	assert.Less(t, time.Since(start), time.Second)
}

func TestRun_PanickingActivationDeactivatesStage(t *testing.T) {
	stages := []checks.Stage[testConfig]{
		{
			Name:   "Broken",
			Active: func(c testConfig) bool { return c.Nodes[3] != "" },
			Probes: checks.Static[testConfig](passProbe("never")),
		},
		{Name: "Fine", Probes: checks.Static[testConfig](passProbe("ok"))},
	}

	run := New(stages).Run(context.Background(), testConfig{})
	require.Len(t, run.Stages, 1)
	assert.Equal(t, []string{"ok"}, outcomeNames(run.Outcomes()))
}

func TestRun_PanickingFactoryBecomesFault(t *testing.T) {
	stages := []checks.Stage[testConfig]{{
		Name: "Factory",
		Probes: func(testConfig) []checks.Prober {
			panic("bad node list")
		},
	}}

	out := New(stages).Run(context.Background(), testConfig{}).Outcomes()
	require.Len(t, out, 1)
	assert.Equal(t, "Factory", out[0].Name)
	assert.Equal(t, checks.KindInternalFault, out[0].Kind)
}

func TestRun_WorkersPreserveOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	var probes []checks.Prober
	var want []string
	for i := range 12 {
		name := fmt.Sprintf("probe-%02d", i)
		want = append(want, name)
		delay := time.Duration(12-i) * 3 * time.Millisecond
		probes = append(probes, checks.NewProbe(name, 0, func(ctx context.Context) ([]checks.Outcome, error) {
			time.Sleep(delay)
			return []checks.Outcome{checks.Pass(name, "ok")}, nil
		}))
	}
	stages := []checks.Stage[testConfig]{{Name: "Many", Probes: checks.Static[testConfig](probes...)}}

	sequential := New(stages).Run(context.Background(), testConfig{})
	parallel := New(stages, WithWorkers(4)).Run(context.Background(), testConfig{})

	assert.Equal(t, want, outcomeNames(sequential.Outcomes()))
	assert.Equal(t, want, outcomeNames(parallel.Outcomes()))
}

func TestRun_ProgressEvents(t *testing.T) {
	o := New(testStages())

	var events []EventType
	var probesSeen []string
	o.OnProgress(func(e ProgressEvent) {
		events = append(events, e.EventType)
		if e.EventType == EventProbeComplete {
			probesSeen = append(probesSeen, e.Probe)
		}
	})

	o.Run(context.Background(), testConfig{})

	assert.Equal(t, []EventType{
		EventStageStart, EventProbeComplete, EventProbeComplete, EventProbeComplete, EventStageComplete,
		EventStageStart, EventProbeComplete, EventStageComplete,
		EventRunComplete,
	}, events)
	assert.Equal(t, []string{"OS", "CPU", "RAM", "Miner Service"}, probesSeen)
}

func TestRun_DurationsStamped(t *testing.T) {
	stages := []checks.Stage[testConfig]{{
		Name: "Timed",
		Probes: checks.Static[testConfig](checks.NewProbe("sleepy", 0, func(context.Context) ([]checks.Outcome, error) {
			time.Sleep(5 * time.Millisecond)
			return []checks.Outcome{checks.Pass("sleepy", "ok")}, nil
		})),
	}}
	out := New(stages).Run(context.Background(), testConfig{}).Outcomes()
	require.Len(t, out, 1)
	assert.GreaterOrEqual(t, out[0].Duration, 5*time.Millisecond)
}
