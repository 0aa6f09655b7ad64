package scenario

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"strings"
)

// Generator is the text-generation capability stance agents reason with.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ModeReporter is implemented by generators that know which run mode they represent.
type ModeReporter interface {
	Mode() string
}

// generatorMode returns the generator's reported mode, or ModeLive.
func generatorMode(g Generator) string {
	if m, ok := g.(ModeReporter); ok && m.Mode() != "" {
		return m.Mode()
	}
	return ModeLive
}

// DefaultMockSeed is the seed the CLI uses when none is given.
const DefaultMockSeed = 42

var baseSignals = []string{
	"auditor turnover",
	"working-capital strain",
	"governance flags",
	"accounting ambiguity",
	"regulatory chatter",
}

// MockGenerator is a deterministic Generator: the prompt's SHA-256 digest, mixed with Seed,
// drives a shuffle of a fixed signal vocabulary.
type MockGenerator struct {
	Seed uint64
}

// Generate returns a compact "Signals: ...; Thesis: ...;" summary. It only fails when ctx
// is already done.
func (m MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	digest := sha256.Sum256([]byte(prompt))
	r := rand.New(rand.NewPCG(binary.BigEndian.Uint64(digest[:8]), m.Seed))

	signals := append([]string(nil), baseSignals...)
	r.Shuffle(len(signals), func(i, j int) {
		signals[i], signals[j] = signals[j], signals[i]
	})

	return "Signals: " + strings.Join(signals, ", ") +
		"; Thesis: reflexive dynamics shape price; Drivers: A,B,C; Risks: X,Y,Z;", nil
}

// Mode reports ModeMock.
func (MockGenerator) Mode() string { return ModeMock }
