// Command demo wires a minimal Executor + SafetySystem + telemetry server
// together so the scheduler and safety machine can be exercised from an
// interactive shell, instead of a full control application.
//
// Grounded on the teacher's cmd/demo (signal-driven shutdown, periodic
// ticker loop) combined with CodedInternet-godynastat's top-level main.go
// (env.Parse into a config struct, chi router, ishell console).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/abiosoft/ishell/v2"
	"github.com/caarlos0/env/v6"

	"github.com/ferrodyne/rtcore/control"
	"github.com/ferrodyne/rtcore/core"
	"github.com/ferrodyne/rtcore/hal"
	"github.com/ferrodyne/rtcore/logger"
	"github.com/ferrodyne/rtcore/safety"
	"github.com/ferrodyne/rtcore/task"
	"github.com/ferrodyne/rtcore/telemetry"
)

// envConfig is the demo binary's own process configuration, separate from
// the declarative task/safety config package: it controls the process,
// not the scheduled work.
type envConfig struct {
	BasePeriodMS  int    `env:"RTCORE_BASE_PERIOD_MS" envDefault:"10"`
	LogLevel      string `env:"RTCORE_LOG_LEVEL" envDefault:"info"`
	TelemetryAddr string `env:"RTCORE_TELEMETRY_ADDR" envDefault:":8090"`
	AuditDBPath   string `env:"RTCORE_AUDIT_DB" envDefault:"/tmp/rtcore-safety-audit.db"`
	ArchiveDBPath string `env:"RTCORE_ARCHIVE_DB" envDefault:"/tmp/rtcore-counters.db"`
}

// estopChannel is a trivial in-memory hal.Channel stand-in for a real
// emergency-stop input; CallOutputFeature is unused here.
type estopChannel struct {
	asserted bool
}

func (c *estopChannel) Get() control.Signal                    { return control.BoolSignal(c.asserted) }
func (c *estopChannel) Set(s control.Signal)                    { c.asserted = s.Bool }
func (c *estopChannel) CallOutputFeature(string, ...any) error { return nil }

func main() {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		panic(fmt.Sprintf("unable to parse environment config: %v", err))
	}

	appLog := logger.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logger.ParseLevel(cfg.LogLevel)}))

	registry := hal.NewRegistry()
	estop := &estopChannel{}
	registry.Register("estop", estop)

	sys := safety.New(appLog)
	sys.AddLevel("off")
	onLevel := sys.AddLevel("on")
	sys.AddLevel("emergency")

	powerUp := safety.NewPublicEvent("powerUp")
	estopTripped := safety.NewPublicEvent("estopTripped")

	onLevel.AddInputAction(&safety.InputAction{
		Name:  "estop-check",
		Kind:  safety.ActionCheck,
		Input: estop.Get,
		Check: func(s control.Signal) bool { return s.Bool },
		Event: estopTripped,
	})

	must(sys.AddTransition("off", powerUp, "on"))
	must(sys.AddEventToLevelAndAbove("on", estopTripped, "emergency"))
	must(sys.SetInitialLevel("off"))

	audit, err := safety.OpenSQLiteAuditLog(cfg.AuditDBPath)
	if err != nil {
		appLog.Warn("audit log unavailable, continuing without it", "error", err)
	} else {
		sys.SetAuditSink(audit)
		defer audit.Close()
	}

	archive, err := telemetry.OpenArchive(cfg.ArchiveDBPath)
	if err != nil {
		appLog.Warn("counter archive unavailable, continuing without it", "error", err)
		archive = nil
	} else {
		defer archive.Close()
	}

	exec := core.Instance()
	exec.SetLogger(appLog)
	must(exec.SetExecutorPeriod(float64(cfg.BasePeriodMS) / 1000))
	must(exec.SetSafetySystem(sys))

	heartbeat := task.New("heartbeat", float64(cfg.BasePeriodMS)/1000, false, task.RunnableFunc(func() error {
		return nil
	}))
	if archive != nil {
		heartbeat.Counter().AddMonitor(archive.Monitor("heartbeat"))
	}
	must(exec.Add(heartbeat))

	telSrv := telemetry.NewServer(exec.CounterSnapshot, sys.CurrentLevel, appLog)
	httpSrv := &http.Server{Addr: cfg.TelemetryAddr, Handler: telSrv}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Error("telemetry server stopped", "error", err)
		}
	}()

	broadcastStop := make(chan struct{})
	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				telSrv.Broadcast()
			case <-broadcastStop:
				return
			}
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		appLog.Info("shutdown signal received")
		exec.Stop()
	}()

	go func() {
		if err := exec.Run(); err != nil {
			appLog.Error("executor run failed", "error", err)
		}
	}()

	shell := ishell.New()
	shell.Println("rtcore operator console")
	shell.AddCmd(&ishell.Cmd{
		Name: "raise",
		Help: "raise <event> -- raise a public safety event (e.g. raise powerUp)",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Println("usage: raise <event>")
				return
			}
			if err := sys.Raise(safety.NewPublicEvent(safety.EventID(c.Args[0]))); err != nil {
				c.Printf("raise failed: %v\n", err)
				return
			}
			c.Printf("raised %q\n", c.Args[0])
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "level",
		Help: "print the current safety level",
		Func: func(c *ishell.Context) {
			c.Println(sys.CurrentLevel())
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "counters",
		Help: "print every task's current timing stats",
		Func: func(c *ishell.Context) {
			for name, stats := range exec.CounterSnapshot() {
				c.Printf("%s: ticks=%d mean=%s max=%s jitter=%s\n",
					name, stats.Ticks, stats.MeanRun, stats.MaxRun, stats.MaxJitter)
			}
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "estop",
		Help: "estop <0|1> -- set the simulated estop input",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Println("usage: estop <0|1>")
				return
			}
			v, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Printf("invalid value: %v\n", err)
				return
			}
			estop.asserted = v != 0
		},
	})

	shell.Run()
	shell.Close()

	exec.Stop()
	close(broadcastStop)
	_ = httpSrv.Shutdown(context.Background())
	<-exec.Stopped()
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
