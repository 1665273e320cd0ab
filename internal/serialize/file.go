package serialize

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/reilabs/provekit-go/internal/spartan"
)

// WriteR1CS JSON-encodes doc to path, the format cmd/compile produces
// and ReadR1CS loads back.
func WriteR1CS(path string, doc *R1CSDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize: marshaling r1cs document: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadR1CS loads a document previously written by WriteR1CS.
func ReadR1CS(path string) (*R1CSDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("serialize: reading r1cs document: %w", err)
	}
	var doc R1CSDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("serialize: unmarshaling r1cs document: %w", err)
	}
	return &doc, nil
}

// WriteProof JSON-encodes a spartan proof to path, the file cmd/prove
// writes and a verifier reads back.
func WriteProof(path string, proof *spartan.Proof) error {
	data, err := json.MarshalIndent(EncodeSpartanProof(proof), "", "  ")
	if err != nil {
		return fmt.Errorf("serialize: marshaling proof: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadProof loads a proof previously written by WriteProof.
func ReadProof(path string) (*spartan.Proof, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("serialize: reading proof: %w", err)
	}
	var doc SpartanProofDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("serialize: unmarshaling proof: %w", err)
	}
	return DecodeSpartanProof(doc), nil
}
