// Package rules holds the per-benchmark-type rule checkers. A checker
// declares an explicit, statically enumerable list of checks at
// construction; the runner executes every check and isolates failures
// so one broken check cannot abort rule evaluation of the rest.
package rules

import (
	"fmt"

	"github.com/storage-sig/benchverify/core"
)

// Check is one independent rule evaluation. Run returns zero or more
// findings. Check execution order must not affect the resolved
// category.
type Check struct {
	Name string
	Run  func() []core.Finding
}

// Checker owns the ordered check list for one benchmark type and scope
// (single run or submission).
type Checker interface {
	Checks() []Check
}

// RunChecks executes every check of the checker and collects the
// findings. A check that panics is converted into an INVALID finding
// naming the check, and the remaining checks still run.
func RunChecks(c Checker) []core.Finding {
	var findings []core.Finding
	for _, check := range c.Checks() {
		findings = append(findings, runCheck(check)...)
	}
	return findings
}

func runCheck(c Check) (findings []core.Finding) {
	defer func() {
		if r := recover(); r != nil {
			findings = []core.Finding{{
				Category: core.CategoryInvalid,
				Message:  fmt.Sprintf("Check %s failed with error: %v", c.Name, r),
				Severity: core.SeverityError,
			}}
		}
	}()
	return c.Run()
}

// single returns a one-element finding slice, for checks that emit at
// most one finding.
func single(f core.Finding) []core.Finding { return []core.Finding{f} }
