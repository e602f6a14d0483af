//go:build ruleguard

// Package gorules contains custom linting rules for golangci-lint via ruleguard.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// WaitGroupGo detects the manual Add/Done pattern that wg.Go replaces.
//
//	wg.Add(1)
//	go func() {
//	    defer wg.Done()
//	    tick()
//	}()
//
// becomes
//
//	wg.Go(tick)
func WaitGroupGo(m dsl.Matcher) {
	m.Match(`$wg.Add(1); go func() { defer $wg.Done(); $*body }()`).
		Where(m["wg"].Type.Is("*sync.WaitGroup") || m["wg"].Type.Is("sync.WaitGroup")).
		Report("use $wg.Go(func() { $body }) instead of manual Add/Done pattern").
		Suggest("$wg.Go(func() { $body })")

	m.Match(`go func() { defer $wg.Done(); $*_ }()`).
		Where(m["wg"].Type.Is("*sync.WaitGroup")).
		Report("use $wg.Go(func() { ... }) instead of go func() { defer $wg.Done(); ... }()")
}

// EnhancedErrors keeps engine and bank errors on the errors builder so they
// carry a component and category for errors.Is and telemetry.
func EnhancedErrors(m dsl.Matcher) {
	m.Import("errors")

	m.Match(`fmt.Errorf($*_)`, `errors.New($_)`).
		Where(m.File().PkgPath.Matches(`internal/(playback|soundbank)$`) && !m.File().Name.Matches(`_test\.go$`)).
		Report("build errors with internal/errors: errors.New(err).Component(...).Category(...).Build()")
}

// StructuredLogging rejects the standard log package and bare prints in
// library code.
func StructuredLogging(m dsl.Matcher) {
	m.Match(`log.Printf($*_)`, `log.Println($*_)`, `log.Print($*_)`, `fmt.Println($*_)`, `fmt.Printf($*_)`).
		Where(m.File().PkgPath.Matches(`/internal/`)).
		Report("use the logger package: logger.Global().Module(name)")
}

// PerceptualCurve keeps the volume curve in one place.
func PerceptualCurve(m dsl.Matcher) {
	m.Match(`math.Pow($x, 1.6)`, `math.Pow($x, 1/1.6)`).
		Where(!m.File().Name.Matches(`gain\.go$`)).
		Report("use playback.Perceptual / InversePerceptual")
}
