package template

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// funcRegistry maps generator names usable inside placeholders, e.g.
// {uuid()}, {random(1,100)}, {date(2006-01-02)}.
var funcRegistry = map[string]func(args string) (string, error){
	"uuid":          fnUUID,
	"timestamp":     fnTimestamp,
	"timestamp_ms":  fnTimestampMs,
	"random":        fnRandom,
	"random_string": fnRandomString,
	"date":          fnDate,
}

// evalFunction evaluates a built-in generator call.
// Returns the result string, or handled=false if expr is not a known call.
func evalFunction(expr string) (result string, handled bool, err error) {
	parenIdx := strings.Index(expr, "(")
	if parenIdx == -1 || !strings.HasSuffix(expr, ")") {
		return "", false, nil
	}

	funcName := expr[:parenIdx]
	args := expr[parenIdx+1 : len(expr)-1]

	fn, ok := funcRegistry[funcName]
	if !ok {
		return "", false, nil
	}

	result, err = fn(args)
	if err != nil {
		return "", true, fmt.Errorf("function %s: %w", funcName, err)
	}
	return result, true, nil
}

// fnUUID generates a UUID v4.
func fnUUID(args string) (string, error) {
	if args != "" {
		return "", fmt.Errorf("uuid() takes no arguments")
	}
	return uuid.NewString(), nil
}

// fnTimestamp returns the current Unix timestamp in seconds.
func fnTimestamp(args string) (string, error) {
	if args != "" {
		return "", fmt.Errorf("timestamp() takes no arguments")
	}
	return strconv.FormatInt(time.Now().Unix(), 10), nil
}

// fnTimestampMs returns the current Unix timestamp in milliseconds.
func fnTimestampMs(args string) (string, error) {
	if args != "" {
		return "", fmt.Errorf("timestamp_ms() takes no arguments")
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 10), nil
}

// fnRandom returns a random integer in [min, max] inclusive.
func fnRandom(args string) (string, error) {
	parts := strings.Split(args, ",")
	if len(parts) != 2 {
		return "", fmt.Errorf("random(min,max) requires exactly 2 arguments")
	}

	min, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid min: %w", err)
	}
	max, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid max: %w", err)
	}
	if min > max {
		return "", fmt.Errorf("min %d greater than max %d", min, max)
	}

	n, err := rand.Int(rand.Reader, big.NewInt(max-min+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(min+n.Int64(), 10), nil
}

const randomStringChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// fnRandomString returns a random alphanumeric string of the given length.
func fnRandomString(args string) (string, error) {
	length, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		return "", fmt.Errorf("random_string(length) requires an integer argument")
	}
	if length < 1 || length > 1024 {
		return "", fmt.Errorf("length must be between 1 and 1024")
	}

	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(randomStringChars))))
		if err != nil {
			return "", err
		}
		out[i] = randomStringChars[n.Int64()]
	}
	return string(out), nil
}

// fnDate formats the current time with a Go reference layout.
func fnDate(args string) (string, error) {
	layout := strings.TrimSpace(args)
	if layout == "" {
		layout = "2006-01-02"
	}
	return time.Now().Format(layout), nil
}
