// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// LocalSignals reads the current process environment. It is the command-line
// counterpart of the browser signals: terminal geometry stands in for the screen,
// and there are no graphics signals, so those components are omitted.
func LocalSignals() Signals {
	locale := firstEnv("LC_ALL", "LC_MESSAGES", "LANG")

	var languages []string
	if lang := os.Getenv("LANGUAGE"); lang != "" {
		languages = strings.Split(lang, ":")
	} else if locale != "" {
		languages = []string{locale}
	}

	return Signals{
		ScreenWidth:         envInt("COLUMNS"),
		ScreenHeight:        envInt("LINES"),
		Timezone:            localTimezone(),
		Language:            locale,
		Languages:           languages,
		Platform:            runtime.GOOS + "/" + runtime.GOARCH,
		HardwareConcurrency: runtime.NumCPU(),
	}
}

func localTimezone() string {
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	return time.Now().Location().String()
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func envInt(key string) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return n
}
