package observability

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/grafana/pyroscope-go"
	"github.com/rabsht/fpl-h2h/internal/config"
	"github.com/rabsht/fpl-h2h/internal/platform/logging"
)

// InitPyroscope starts continuous profiling and returns the stop hook.
func InitPyroscope(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if reason := pyroscopeDisabledReason(cfg); reason != "" {
		logger.Info("pyroscope disabled", "reason", reason)
		return func() error { return nil }, nil
	}

	// Mutex and block profiles stay empty unless the runtime sampling
	// rates are set; the agent does not switch them on by itself.
	runtime.SetMutexProfileFraction(5)
	runtime.SetBlockProfileRate(5)

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":     cfg.AppEnv,
			"service": cfg.ServiceName,
			"version": cfg.ServiceVersion,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexCount,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockCount,
			pyroscope.ProfileBlockDuration,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}

	logger.Info("pyroscope enabled",
		"server_address", cfg.PyroscopeServerAddress,
		"application", cfg.PyroscopeAppName,
	)

	return profiler.Stop, nil
}

func pyroscopeDisabledReason(cfg config.Config) string {
	if !cfg.PyroscopeEnabled {
		return "PYROSCOPE_ENABLED=false"
	}
	if strings.TrimSpace(cfg.PyroscopeServerAddress) == "" {
		return "PYROSCOPE_SERVER_ADDRESS empty"
	}
	return ""
}
