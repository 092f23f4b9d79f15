package env

import (
	"os"
	"strconv"
)

func Debug() bool {
	return os.Getenv("DEBUG") != ""
}

func Timeout() (int, bool) {
	return intVar("TRIDENT_TIMEOUT")
}

// ChaosN is the number of random diagrams the chaos tests lay out.
func ChaosN() (int, bool) {
	return intVar("TRIDENT_CHAOS_N")
}

// ChaosMaxi bounds the number of generator steps per random diagram.
func ChaosMaxi() (int, bool) {
	return intVar("TRIDENT_CHAOS_MAXI")
}

func intVar(name string) (int, bool) {
	if s := os.Getenv(name); s != "" {
		i, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return int(i), true
		}
	}
	return -1, false
}
