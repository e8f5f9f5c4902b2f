// Package config loads the environment tunables that control retry ceilings and
// pass-through mode.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FS_EXTENDER"

const (
	keyTimeout           = "timeout"
	keyTimeoutSync       = "timeout_sync"
	keyWin32Timeout      = "win32_timeout"
	keyWin32TimeoutSync  = "win32_timeout_sync"
	keyIgnorePatch       = "ignore_patch"
	keyIgnorePatchClose  = "ignore_patch_close"
	defaultCeilingMillis = 60000
)

// Config holds the resolved tunables.
type Config struct {
	// RetryTimeout bounds asynchronous retries (queue entries, unlink).
	RetryTimeout time.Duration
	// SyncRetryTimeout bounds blocking retries.
	SyncRetryTimeout time.Duration
	// RenameTimeout bounds the asynchronous rename stabilizer.
	RenameTimeout time.Duration
	// SyncRenameTimeout bounds the blocking rename stabilizer.
	SyncRenameTimeout time.Duration
	// PassThrough disables every retry and recovery path.
	PassThrough bool
	// IgnoreClose disables the descriptor-released notification on Close.
	IgnoreClose bool
}

// Default returns the built-in tunables.
func Default() Config {
	ceiling := defaultCeilingMillis * time.Millisecond
	return Config{
		RetryTimeout:      ceiling,
		SyncRetryTimeout:  ceiling,
		RenameTimeout:     ceiling,
		SyncRenameTimeout: ceiling,
	}
}

// Load reads the tunables from the environment. On error the returned Config still
// holds usable defaults for every key that failed to parse.
func Load() (Config, error) {
	return load(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyTimeout, defaultCeilingMillis)
	v.SetDefault(keyTimeoutSync, defaultCeilingMillis)
	v.SetDefault(keyWin32Timeout, defaultCeilingMillis)
	v.SetDefault(keyWin32TimeoutSync, defaultCeilingMillis)
	v.SetDefault(keyIgnorePatch, false)
	v.SetDefault(keyIgnorePatchClose, false)
	return v
}

func load(v *viper.Viper) (Config, error) {
	cfg := Default()
	var errs []string

	millis := func(key string, dst *time.Duration) {
		raw := strings.TrimSpace(v.GetString(key))
		n, err := cast.ToInt64E(raw)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Sprintf("%s_%s=%q is not a non-negative number of milliseconds",
				EnvPrefix, strings.ToUpper(key), raw))
			return
		}
		*dst = time.Duration(n) * time.Millisecond
	}
	millis(keyTimeout, &cfg.RetryTimeout)
	millis(keyTimeoutSync, &cfg.SyncRetryTimeout)
	millis(keyWin32Timeout, &cfg.RenameTimeout)
	millis(keyWin32TimeoutSync, &cfg.SyncRenameTimeout)

	cfg.PassThrough = v.GetBool(keyIgnorePatch)
	cfg.IgnoreClose = v.GetBool(keyIgnorePatchClose)

	if len(errs) > 0 {
		return cfg, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}
