package serialize

import (
	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/merkle"
	"github.com/reilabs/provekit-go/internal/spartan"
	"github.com/reilabs/provekit-go/internal/whir"
)

// AuthPathDoc is merkle.AuthPath with its sibling hashes in canonical
// wire form.
type AuthPathDoc struct {
	LeafIndex int
	Siblings  []Repr
}

func encodeAuthPath(p merkle.AuthPath) AuthPathDoc {
	return AuthPathDoc{LeafIndex: p.LeafIndex, Siblings: ToReprSlice(p.Siblings)}
}

func decodeAuthPath(d AuthPathDoc) merkle.AuthPath {
	return merkle.AuthPath{LeafIndex: d.LeafIndex, Siblings: FromReprSlice(d.Siblings)}
}

// RoundOpeningDoc is whir.RoundOpening with its field elements in
// canonical wire form.
type RoundOpeningDoc struct {
	Index      int
	Left       Repr
	Right      Repr
	LeftPath   AuthPathDoc
	RightPath  AuthPathDoc
	Folded     Repr
	FoldedPath AuthPathDoc
}

// WhirProofDoc is the wire form of a whir.Proof: every field.Element
// replaced by its canonical Repr, matching the teacher's
// MultiPath[KeccakDigest]/[][]Fp256 style transcript hints.
type WhirProofDoc struct {
	RoundRoots    []Repr
	FoldingPoint  []Repr
	FinalValue    Repr
	RoundOpenings [][]RoundOpeningDoc
}

// EncodeWhirProof converts p to its wire form.
func EncodeWhirProof(p *whir.Proof) WhirProofDoc {
	openings := make([][]RoundOpeningDoc, len(p.RoundOpenings))
	for i, round := range p.RoundOpenings {
		docs := make([]RoundOpeningDoc, len(round))
		for j, o := range round {
			docs[j] = RoundOpeningDoc{
				Index:      o.Index,
				Left:       ToRepr(o.Left),
				Right:      ToRepr(o.Right),
				LeftPath:   encodeAuthPath(o.LeftPath),
				RightPath:  encodeAuthPath(o.RightPath),
				Folded:     ToRepr(o.Folded),
				FoldedPath: encodeAuthPath(o.FoldedPath),
			}
		}
		openings[i] = docs
	}
	return WhirProofDoc{
		RoundRoots:    ToReprSlice(p.RoundRoots),
		FoldingPoint:  ToReprSlice(p.FoldingPoint),
		FinalValue:    ToRepr(p.FinalValue),
		RoundOpenings: openings,
	}
}

// DecodeWhirProof is the inverse of EncodeWhirProof.
func DecodeWhirProof(d WhirProofDoc) *whir.Proof {
	openings := make([][]whir.RoundOpening, len(d.RoundOpenings))
	for i, round := range d.RoundOpenings {
		os := make([]whir.RoundOpening, len(round))
		for j, o := range round {
			os[j] = whir.RoundOpening{
				Index:      o.Index,
				Left:       FromRepr(o.Left),
				Right:      FromRepr(o.Right),
				LeftPath:   decodeAuthPath(o.LeftPath),
				RightPath:  decodeAuthPath(o.RightPath),
				Folded:     FromRepr(o.Folded),
				FoldedPath: decodeAuthPath(o.FoldedPath),
			}
		}
		openings[i] = os
	}
	return &whir.Proof{
		RoundRoots:    FromReprSlice(d.RoundRoots),
		FoldingPoint:  FromReprSlice(d.FoldingPoint),
		FinalValue:    FromRepr(d.FinalValue),
		RoundOpenings: openings,
	}
}

// RoundPolyDoc and InnerRoundPolyDoc are the wire forms of spartan's
// per-round sum-check polynomials.
type RoundPolyDoc struct{ Evals [4]Repr }
type InnerRoundPolyDoc struct{ Evals [3]Repr }

// SpartanProofDoc is the wire form of a spartan.Proof.
type SpartanProofDoc struct {
	MaskedCommitmentRoot Repr
	MaskCommitmentRoot   Repr
	BlindCommitmentRoot  Repr
	SumBlind             Repr

	OuterRounds            []RoundPolyDoc
	FinalA, FinalB, FinalC Repr
	FinalBlind             Repr
	BlindProof             WhirProofDoc

	InnerRounds []InnerRoundPolyDoc
	FinalZ      Repr
	MaskedProof WhirProofDoc
	MaskProof   WhirProofDoc
}

// EncodeSpartanProof converts p to its wire form.
func EncodeSpartanProof(p *spartan.Proof) SpartanProofDoc {
	outer := make([]RoundPolyDoc, len(p.OuterRounds))
	for i, r := range p.OuterRounds {
		outer[i] = RoundPolyDoc{Evals: [4]Repr{ToRepr(r.Evals[0]), ToRepr(r.Evals[1]), ToRepr(r.Evals[2]), ToRepr(r.Evals[3])}}
	}
	inner := make([]InnerRoundPolyDoc, len(p.InnerRounds))
	for i, r := range p.InnerRounds {
		inner[i] = InnerRoundPolyDoc{Evals: [3]Repr{ToRepr(r.Evals[0]), ToRepr(r.Evals[1]), ToRepr(r.Evals[2])}}
	}
	return SpartanProofDoc{
		MaskedCommitmentRoot: ToRepr(p.MaskedCommitmentRoot),
		MaskCommitmentRoot:   ToRepr(p.MaskCommitmentRoot),
		BlindCommitmentRoot:  ToRepr(p.BlindCommitmentRoot),
		SumBlind:             ToRepr(p.SumBlind),
		OuterRounds:          outer,
		FinalA:               ToRepr(p.FinalA),
		FinalB:               ToRepr(p.FinalB),
		FinalC:               ToRepr(p.FinalC),
		FinalBlind:           ToRepr(p.FinalBlind),
		BlindProof:           EncodeWhirProof(p.BlindProof),
		InnerRounds:          inner,
		FinalZ:               ToRepr(p.FinalZ),
		MaskedProof:          EncodeWhirProof(p.MaskedProof),
		MaskProof:            EncodeWhirProof(p.MaskProof),
	}
}

// DecodeSpartanProof is the inverse of EncodeSpartanProof.
func DecodeSpartanProof(d SpartanProofDoc) *spartan.Proof {
	outer := make([]spartan.RoundPoly, len(d.OuterRounds))
	for i, r := range d.OuterRounds {
		outer[i] = spartan.RoundPoly{Evals: [4]field.Element{
			FromRepr(r.Evals[0]), FromRepr(r.Evals[1]), FromRepr(r.Evals[2]), FromRepr(r.Evals[3]),
		}}
	}
	inner := make([]spartan.InnerRoundPoly, len(d.InnerRounds))
	for i, r := range d.InnerRounds {
		inner[i] = spartan.InnerRoundPoly{Evals: [3]field.Element{
			FromRepr(r.Evals[0]), FromRepr(r.Evals[1]), FromRepr(r.Evals[2]),
		}}
	}
	return &spartan.Proof{
		MaskedCommitmentRoot: FromRepr(d.MaskedCommitmentRoot),
		MaskCommitmentRoot:   FromRepr(d.MaskCommitmentRoot),
		BlindCommitmentRoot:  FromRepr(d.BlindCommitmentRoot),
		SumBlind:             FromRepr(d.SumBlind),
		OuterRounds:          outer,
		FinalA:               FromRepr(d.FinalA),
		FinalB:               FromRepr(d.FinalB),
		FinalC:               FromRepr(d.FinalC),
		FinalBlind:           FromRepr(d.FinalBlind),
		BlindProof:           DecodeWhirProof(d.BlindProof),
		InnerRounds:          inner,
		FinalZ:               FromRepr(d.FinalZ),
		MaskedProof:          DecodeWhirProof(d.MaskedProof),
		MaskProof:            DecodeWhirProof(d.MaskProof),
	}
}
