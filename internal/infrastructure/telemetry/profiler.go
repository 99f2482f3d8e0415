package telemetry

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig points the Pyroscope agent at its server. Tags are added to
// every profile; the pod hostname is appended when HOSTNAME is set.
type ProfilerConfig struct {
	Enabled           bool
	ServerAddress     string
	ApplicationName   string
	BasicAuthUser     string
	BasicAuthPassword string
	Tags              map[string]string
}

var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseObjects,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

// Profiler is the continuous profiling agent. A disabled Profiler is inert.
type Profiler struct {
	agent *pyroscope.Profiler
	log   *zap.Logger
	stop  sync.Once
}

func NewProfiler(cfg ProfilerConfig, log *zap.Logger) (*Profiler, error) {
	p := &Profiler{log: log}
	if !cfg.Enabled {
		log.Info("Continuous profiling disabled")
		return p, nil
	}

	switch {
	case cfg.ServerAddress == "":
		return nil, errors.New("profiler: server address is required")
	case cfg.ApplicationName == "":
		return nil, errors.New("profiler: application name is required")
	}

	tags := maps.Clone(cfg.Tags)
	if tags == nil {
		tags = map[string]string{}
	}
	if host := os.Getenv("HOSTNAME"); host != "" {
		tags["hostname"] = host
	}

	agentCfg := pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          log.Named("pyroscope").Sugar(),
		Tags:            tags,
		ProfileTypes:    profileTypes,
	}
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPassword != "" {
		agentCfg.BasicAuthUser = cfg.BasicAuthUser
		agentCfg.BasicAuthPassword = cfg.BasicAuthPassword
	}

	agent, err := pyroscope.Start(agentCfg)
	if err != nil {
		return nil, fmt.Errorf("profiler: %w", err)
	}
	p.agent = agent

	log.Info("Continuous profiling enabled",
		zap.String("server", cfg.ServerAddress),
		zap.String("application", cfg.ApplicationName),
	)
	return p, nil
}

func (p *Profiler) IsEnabled() bool {
	return p.agent != nil
}

// Stop uploads the last profiles. Later calls are no-ops.
func (p *Profiler) Stop() error {
	var err error
	p.stop.Do(func() {
		if p.agent == nil {
			return
		}
		if err = p.agent.Stop(); err != nil {
			p.log.Error("Profiler stop failed", zap.Error(err))
			err = fmt.Errorf("profiler: %w", err)
		}
	})
	return err
}
