package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
)

const memBudgetEnv = "FRAMESERVER_MEM_GB"

// MemoryBudgetBytes returns the operator's advertised memory budget in
// bytes, read from the FRAMESERVER_MEM_GB environment variable
// (gigabytes), defaulting to 1 GiB.
//
// This is advisory input to CheckCapacityBudget: nothing in this
// design enforces a hard memory ceiling at runtime, so a frame cache
// sized past the budget is a configuration warning, not a fault to
// recover from.
func MemoryBudgetBytes() int64 {
	e := os.Getenv(memBudgetEnv)
	if e == "" {
		return 1024 * 1024 * 1024
	}
	f, err := strconv.ParseFloat(e, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		panic(fmt.Sprintf("config: malformed %s environment variable, should be a number of gigabytes: %s", memBudgetEnv, e))
	}
	return int64(f * 1024 * 1024 * 1024)
}

// CheckCapacityBudget reports whether capacity lines at bytesPerLine
// each would exceed budget. It returns a descriptive error rather than
// panicking: exceeding the advisory budget is something the operator
// should see logged at startup, not a reason to refuse to serve.
func CheckCapacityBudget(capacity int, bytesPerLine, budget int64) error {
	total := int64(capacity) * bytesPerLine
	if total > budget {
		return fmt.Errorf("config: %d cache lines at ~%d bytes each (%d total) exceeds the %d byte memory budget (%s)",
			capacity, bytesPerLine, total, budget, memBudgetEnv)
	}
	return nil
}
