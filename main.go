package main

import (
	"fmt"
	"os"
	"strconv"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: sttprobe <probe [FILE]|live [SECONDS]|realtime FILE.pcm|mock [ADDR]>\n")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "probe":
		cfg := mustLoadConfig()
		payload, err := buildPayload(cfg.Audio, cfg.Probe.Filename, argAt(2))
		if err != nil {
			fmt.Fprintf(os.Stderr, "payload: %v\n", err)
			os.Exit(1)
		}
		exitStrict(cfg, runProbe(cfg, payload))
	case "live":
		cfg := mustLoadConfig()
		seconds := cfg.Audio.RecordSeconds
		if arg := argAt(2); arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil || n <= 0 {
				fmt.Fprintf(os.Stderr, "bad duration: %q\n", arg)
				os.Exit(1)
			}
			seconds = n
		}
		payload, err := recordPayload(cfg.Audio, seconds)
		if err != nil {
			fmt.Fprintf(os.Stderr, "record: %v\n", err)
			os.Exit(1)
		}
		exitStrict(cfg, runProbe(cfg, payload))
	case "realtime":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "usage: sttprobe realtime FILE.pcm\n")
			os.Exit(1)
		}
		cfg := mustLoadConfig()
		exitStrict(cfg, runRealtime(cfg, os.Args[2]))
	case "mock":
		cfg := mustLoadConfig()
		addr := cfg.Mock.Addr
		if arg := argAt(2); arg != "" {
			addr = arg
		}
		runMock(addr, cfg.Mock.DetectedLanguage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func argAt(i int) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return ""
}

// exitStrict turns a probe failure into a non-zero exit only when strict
// mode is on. The default keeps the always-exit-0 behavior for hand-run
// diagnostics.
func exitStrict(cfg *Config, err error) {
	if err != nil && cfg.Service.Strict {
		os.Exit(1)
	}
}
