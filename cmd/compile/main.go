// Command compile reads an ACIR-shaped opcode stream and writes the
// compiled R1CS instance (A/B/C sparse matrices plus interner) to
// disk as the document serialize.ReadR1CS loads back (cmd/prove does
// not read it; it recompiles the opcode stream itself). It also
// carries a circuit_stats subcommand, the
// demonstrator CLI that reports opcode counts, black-box usage,
// range-check distribution, memory operations, and an estimated R1CS
// cost for an opcode stream without running the full compiler.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/reilabs/provekit-go/internal/r1cs"
	"github.com/reilabs/provekit-go/internal/serialize"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("compile failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "compile",
		Usage: "Compiles an ACIR opcode stream into an R1CS instance",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "opcodes", Usage: "Path to the opcode-stream JSON file", Required: true},
			&cli.StringFlag{Name: "out", Usage: "Path to write the R1CS document to", Required: true},
		},
		Action: compileAction,
		Commands: []*cli.Command{
			circuitStatsCommand(),
		},
	}
}

func compileAction(c *cli.Context) error {
	prog, err := readProgramDoc(c.String("opcodes"))
	if err != nil {
		return err
	}

	opcodes, err := r1cs.DecodeOpcodes(prog.Opcodes)
	if err != nil {
		return fmt.Errorf("compile: decoding opcode stream: %w", err)
	}
	log.Info().Int("opcodes", len(opcodes)).Int("public_inputs", prog.PublicInputs).Msg("compiling")

	inst, err := r1cs.Compile(opcodes)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	doc, err := serialize.EncodeR1CS(inst, prog.PublicInputs)
	if err != nil {
		return fmt.Errorf("compile: encoding r1cs document: %w", err)
	}
	if err := serialize.WriteR1CS(c.String("out"), doc); err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	log.Info().
		Uint64("constraints", doc.Constraints).
		Uint64("witnesses", doc.Witnesses).
		Str("out", c.String("out")).
		Msg("wrote r1cs document")
	return nil
}

func circuitStatsCommand() *cli.Command {
	return &cli.Command{
		Name:      "circuit_stats",
		Usage:     "Report opcode, black-box, range-check and memory statistics for an opcode stream",
		ArgsUsage: "<circuit_path> <witness_path>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("circuit_stats: expected <circuit_path> <witness_path>, got %d args", c.NArg())
			}
			circuitPath, witnessPath := c.Args().Get(0), c.Args().Get(1)

			prog, err := readProgramDoc(circuitPath)
			if err != nil {
				return err
			}
			opcodes, err := r1cs.DecodeOpcodes(prog.Opcodes)
			if err != nil {
				return fmt.Errorf("circuit_stats: decoding opcode stream: %w", err)
			}

			witnessData, err := os.ReadFile(witnessPath)
			if err != nil {
				return fmt.Errorf("circuit_stats: reading witness file: %w", err)
			}
			var witnessDoc r1cs.WitnessDoc
			if err := json.Unmarshal(witnessData, &witnessDoc); err != nil {
				return fmt.Errorf("circuit_stats: unmarshaling witness file: %w", err)
			}

			stats := computeStats(opcodes)
			stats.WitnessLen = len(witnessDoc)
			stats.print()
			return nil
		},
	}
}

func readProgramDoc(path string) (*r1cs.ProgramDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compile: reading opcode stream: %w", err)
	}
	var prog r1cs.ProgramDoc
	if err := json.Unmarshal(data, &prog); err != nil {
		return nil, fmt.Errorf("compile: unmarshaling opcode stream: %w", err)
	}
	return &prog, nil
}

// circuitStats is the demonstrator's tally, a scaled-down Go rendition
// of circuit_stats.rs's per-run counters: blackbox/opcode counts, the
// range-check bit-width histogram, memory op tallies, and a rough
// estimated R1CS row cost: one row per AssertZero, memory op, AND and
// XOR opcode, plus one per started byte of each range check's width.
// This is a flat per-opcode tally; it does not reproduce the row count
// internal/r1cs.Compile produces.
type circuitStats struct {
	WitnessLen        int
	AssertZero        int
	MemoryInit        int
	MemoryOp          int
	MemoryLoads       int
	MemoryStores      int
	RangeCheck        int
	And               int
	Xor               int
	BrilligCall       int
	RangeCheckBitDist map[int]int
	EstimatedRows     int
}

func computeStats(opcodes []r1cs.Opcode) circuitStats {
	stats := circuitStats{RangeCheckBitDist: map[int]int{}}
	for _, op := range opcodes {
		switch o := op.(type) {
		case r1cs.AssertZero:
			stats.AssertZero++
			stats.EstimatedRows++
		case r1cs.MemoryInit:
			stats.MemoryInit++
		case r1cs.MemoryOp:
			stats.MemoryOp++
			if o.Kind == r1cs.OpStore {
				stats.MemoryStores++
			} else {
				stats.MemoryLoads++
			}
			stats.EstimatedRows++
		case r1cs.RangeCheck:
			stats.RangeCheck++
			stats.RangeCheckBitDist[o.NumBits]++
			stats.EstimatedRows += (o.NumBits + 7) / 8
		case r1cs.AndOp:
			stats.And++
			stats.EstimatedRows++
		case r1cs.XorOp:
			stats.Xor++
			stats.EstimatedRows++
		case r1cs.BrilligCall:
			stats.BrilligCall++
		}
	}
	return stats
}

func (s circuitStats) print() {
	fmt.Printf("Witness length:       %d\n", s.WitnessLen)
	fmt.Printf("AssertZero opcodes:   %d\n", s.AssertZero)
	fmt.Printf("Memory blocks:        %d\n", s.MemoryInit)
	fmt.Printf("Memory ops:           %d (%d loads, %d stores)\n", s.MemoryOp, s.MemoryLoads, s.MemoryStores)
	fmt.Printf("Range checks:         %d\n", s.RangeCheck)
	for bits, count := range s.RangeCheckBitDist {
		fmt.Printf("  %2d bits: %d\n", bits, count)
	}
	fmt.Printf("AND / XOR opcodes:    %d / %d\n", s.And, s.Xor)
	fmt.Printf("Brillig calls:        %d (ignored by the compiler)\n", s.BrilligCall)
	fmt.Printf("Estimated R1CS rows:  %d\n", s.EstimatedRows)
}
