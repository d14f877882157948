package service

import (
	"fmt"
	"strings"
	"time"
)

func intervalToDuration(tf string) time.Duration {
	switch tf {
	case "1m":
		return time.Minute
	case "3m":
		return 3 * time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "30m":
		return 30 * time.Minute
	case "1h":
		return time.Hour
	case "4h":
		return 4 * time.Hour
	case "1d":
		return 24 * time.Hour
	default:
		return 0
	}
}

// streamURL — combined stream: /stream?streams=btcusdt@kline_1m/ethusdt@kline_1m
func streamURL(base string, symbols []string, interval string) (string, error) {
	if intervalToDuration(interval) == 0 {
		return "", fmt.Errorf("unsupported kline interval: %q", interval)
	}
	streams := make([]string, 0, len(symbols))
	for _, s := range symbols {
		streams = append(streams, strings.ToLower(s)+"@kline_"+interval)
	}
	return base + "/stream?streams=" + strings.Join(streams, "/"), nil
}
