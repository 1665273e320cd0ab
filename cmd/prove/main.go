// Command prove recompiles an opcode stream, solves it against an
// ACIR witness-map input, and writes a Spartan/WHIR proof to disk.
// It recompiles from the opcode stream rather than loading a
// cmd/compile-produced R1CS document: the document only carries the
// A/B/C matrices, not the witness-builder dataflow graph
// (internal/witness.Builder values are Go closures over compiled
// state, not a JSON-shaped value), so solving a witness always needs
// the same opcode stream compile passed through.
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
	"github.com/reilabs/provekit-go/internal/spartan"
	"github.com/reilabs/provekit-go/internal/transcript"
	"github.com/reilabs/provekit-go/internal/witness"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("prove failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "prove",
		Usage: "Solves a witness and produces a Spartan/WHIR proof for an ACIR opcode stream",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "opcodes", Usage: "Path to the opcode-stream JSON file", Required: true},
			&cli.StringFlag{Name: "witness", Usage: "Path to the ACIR witness-map JSON file", Required: true},
			&cli.StringFlag{Name: "out", Usage: "Path to write the proof to", Required: true},
			&cli.StringFlag{Name: "r1cs_out", Usage: "Optional path to also write the compiled R1CS document", Required: false, Value: ""},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	opcodesData, err := os.ReadFile(c.String("opcodes"))
	if err != nil {
		return fmt.Errorf("prove: reading opcode stream: %w", err)
	}
	var prog r1cs.ProgramDoc
	if err := json.Unmarshal(opcodesData, &prog); err != nil {
		return fmt.Errorf("prove: unmarshaling opcode stream: %w", err)
	}
	opcodes, err := r1cs.DecodeOpcodes(prog.Opcodes)
	if err != nil {
		return fmt.Errorf("prove: decoding opcode stream: %w", err)
	}

	witnessData, err := os.ReadFile(c.String("witness"))
	if err != nil {
		return fmt.Errorf("prove: reading witness file: %w", err)
	}
	var witnessDoc r1cs.WitnessDoc
	if err := json.Unmarshal(witnessData, &witnessDoc); err != nil {
		return fmt.Errorf("prove: unmarshaling witness file: %w", err)
	}
	acir, err := r1cs.DecodeWitness(witnessDoc)
	if err != nil {
		return fmt.Errorf("prove: decoding witness file: %w", err)
	}

	log.Info().Int("opcodes", len(opcodes)).Int("acir_inputs", len(acir)).Msg("compiling")
	inst, err := r1cs.Compile(opcodes)
	if err != nil {
		return fmt.Errorf("prove: compiling opcode stream: %w", err)
	}

	if r1csOut := c.String("r1cs_out"); r1csOut != "" {
		doc, err := serialize.EncodeR1CS(inst, prog.PublicInputs)
		if err != nil {
			return fmt.Errorf("prove: encoding r1cs document: %w", err)
		}
		if err := serialize.WriteR1CS(r1csOut, doc); err != nil {
			return fmt.Errorf("prove: %w", err)
		}
	}

	wprog, err := witness.NewProgram(inst.Builders)
	if err != nil {
		return fmt.Errorf("prove: scheduling witness program: %w", err)
	}

	log.Info().Int("constraints", inst.A.NumRows).Msg("solving witness")
	z, err := wprog.Solve(acir, transcript.New(), witness.NewMemoryState())
	if err != nil {
		return fmt.Errorf("prove: solving witness: %w", err)
	}

	log.Info().Msg("proving")
	proof, err := spartan.Prove(inst, z, transcript.New())
	if err != nil {
		return fmt.Errorf("prove: %w", err)
	}

	if err := serialize.WriteProof(c.String("out"), proof); err != nil {
		return fmt.Errorf("prove: %w", err)
	}
	log.Info().Str("out", c.String("out")).Msg("wrote proof")
	return nil
}
