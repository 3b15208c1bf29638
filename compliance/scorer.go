// Package compliance scores assets on corruption and ESG inputs and decides
// whether they may be traded at all.
package compliance

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

const (
	DefaultCorruptionThreshold = 70.0
	DefaultESGThreshold        = 40.0

	worstCorruption = 100.0
	worstESG        = 0.0
)

type Verdict string

const (
	Pass  Verdict = "pass"
	Block Verdict = "block"
)

// Thresholds decide the verdict. An asset is blocked when its corruption
// index is at or above Corruption, or its ESG score is below ESG.
type Thresholds struct {
	Corruption      float64
	ESG             float64
	BlockedSegments []string
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Corruption: DefaultCorruptionThreshold,
		ESG:        DefaultESGThreshold,
	}
}

// Inputs are the externally supplied scores for one asset. A nil score is
// unknown and is evaluated as the worst possible value.
type Inputs struct {
	CorruptionIndex *float64 // 0..100, higher is more corrupt
	ESGScore        *float64 // 0..100, higher is better
	Segment         string
}

// Scores builds Inputs from two known values.
func Scores(corruptionIndex, esgScore float64) Inputs {
	return Inputs{CorruptionIndex: &corruptionIndex, ESGScore: &esgScore}
}

// Record is the immutable outcome of one evaluation.
type Record struct {
	Asset           string
	CorruptionIndex float64
	ESGScore        float64
	Segment         string
	Verdict         Verdict
	Reasons         []string
	Time            time.Time
}

func (r Record) Blocked() bool { return r.Verdict == Block }

// Reason joins the blocking reasons.
func (r Record) Reason() string { return strings.Join(r.Reasons, "; ") }

// Evaluate is a pure function of its arguments and never fails.
func Evaluate(asset string, in Inputs, th Thresholds, at time.Time) Record {
	corruption := sanitize(in.CorruptionIndex, worstCorruption)
	esg := sanitize(in.ESGScore, worstESG)

	rec := Record{
		Asset:           asset,
		CorruptionIndex: corruption,
		ESGScore:        esg,
		Segment:         in.Segment,
		Verdict:         Pass,
		Time:            at,
	}

	if in.Segment != "" && slices.ContainsFunc(th.BlockedSegments, func(s string) bool {
		return strings.EqualFold(s, in.Segment)
	}) {
		rec.Reasons = append(rec.Reasons, fmt.Sprintf("segment %s is prohibited", in.Segment))
	}
	if corruption >= th.Corruption {
		rec.Reasons = append(rec.Reasons,
			fmt.Sprintf("corruption index %.1f >= %.1f", corruption, th.Corruption))
	}
	if esg < th.ESG {
		rec.Reasons = append(rec.Reasons,
			fmt.Sprintf("esg score %.1f < %.1f", esg, th.ESG))
	}
	if len(rec.Reasons) > 0 {
		rec.Verdict = Block
	}
	return rec
}

func sanitize(v *float64, worst float64) float64 {
	if v == nil || math.IsNaN(*v) || *v < 0 || *v > 100 {
		return worst
	}
	return *v
}

// Scorer evaluates against a fixed set of thresholds.
type Scorer struct {
	th Thresholds
}

func NewScorer(th Thresholds) *Scorer {
	th.BlockedSegments = slices.Clone(th.BlockedSegments)
	return &Scorer{th: th}
}

func (s *Scorer) Thresholds() Thresholds { return s.th }

func (s *Scorer) Evaluate(asset string, in Inputs, at time.Time) Record {
	return Evaluate(asset, in, s.th, at)
}
