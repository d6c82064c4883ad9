// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package present derives display values from backend records: sentiment,
// momentum, trending and severity labels, relevance percentages, source
// inference, pagination and load-error text.
//
// Every function is pure and total. Nil, NaN and out-of-range inputs degrade
// to a neutral or unknown label instead of failing. The thresholds are fixed
// presentation policy.
package present

import (
	"fmt"
	"math"
)

// Tone groups labels for coloring.
type Tone int

const (
	ToneNeutral Tone = iota
	TonePositive
	ToneStrongPositive
	ToneNegative
	ToneStrongNegative
	ToneWarning
	ToneMuted
)

// Sentiment is a sentiment class.
type Sentiment string

const (
	SentimentVeryPositive Sentiment = "Very Positive"
	SentimentPositive     Sentiment = "Positive"
	SentimentNeutral      Sentiment = "Neutral"
	SentimentNegative     Sentiment = "Negative"
	SentimentVeryNegative Sentiment = "Very Negative"
	SentimentNoData       Sentiment = "No data"
)

// SentimentOf classifies a score in [-1, 1].
func SentimentOf(score *float64) Sentiment {
	s, ok := known(score)
	if !ok {
		return SentimentNoData
	}
	switch {
	case s > 0.3:
		return SentimentVeryPositive
	case s > 0.1:
		return SentimentPositive
	case s < -0.3:
		return SentimentVeryNegative
	case s < -0.1:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Tone returns the coloring group; No data reads as neutral.
func (s Sentiment) Tone() Tone {
	switch s {
	case SentimentVeryPositive:
		return ToneStrongPositive
	case SentimentPositive:
		return TonePositive
	case SentimentNegative:
		return ToneNegative
	case SentimentVeryNegative:
		return ToneStrongNegative
	case SentimentNoData:
		return ToneMuted
	}
	return ToneNeutral
}

// Momentum is a momentum class.
type Momentum string

const (
	MomentumRising    Momentum = "Rising"
	MomentumGrowing   Momentum = "Growing"
	MomentumStable    Momentum = "Stable"
	MomentumFalling   Momentum = "Falling"
	MomentumDeclining Momentum = "Declining"
	MomentumUnknown   Momentum = "Unknown"
)

// MomentumOf classifies a momentum value.
func MomentumOf(m *float64) Momentum {
	v, ok := known(m)
	if !ok {
		return MomentumUnknown
	}
	switch {
	case v > 0.5:
		return MomentumRising
	case v > 0.1:
		return MomentumGrowing
	case v < -0.5:
		return MomentumDeclining
	case v < -0.1:
		return MomentumFalling
	default:
		return MomentumStable
	}
}

// Tone returns the coloring group.
func (m Momentum) Tone() Tone {
	switch m {
	case MomentumRising:
		return ToneStrongPositive
	case MomentumGrowing:
		return TonePositive
	case MomentumFalling:
		return ToneNegative
	case MomentumDeclining:
		return ToneStrongNegative
	case MomentumUnknown:
		return ToneMuted
	}
	return ToneNeutral
}

// Arrow is a one-glyph trend hint for tables.
func (m Momentum) Arrow() string {
	switch m {
	case MomentumRising:
		return "⇈"
	case MomentumGrowing:
		return "↑"
	case MomentumFalling:
		return "↓"
	case MomentumDeclining:
		return "⇊"
	case MomentumStable:
		return "→"
	}
	return "·"
}

// Trending is a trending-score class.
type Trending string

const (
	TrendingHot     Trending = "Hot"
	TrendingActive  Trending = "Active"
	TrendingQuiet   Trending = "Quiet"
	TrendingUnknown Trending = "Unknown"
)

// TrendingOf classifies a trending score in [0, 1].
func TrendingOf(score *float64) Trending {
	s, ok := known(score)
	if !ok {
		return TrendingUnknown
	}
	switch {
	case s >= 0.8:
		return TrendingHot
	case s >= 0.5:
		return TrendingActive
	default:
		return TrendingQuiet
	}
}

// Tone returns the coloring group.
func (t Trending) Tone() Tone {
	switch t {
	case TrendingHot:
		return ToneWarning
	case TrendingActive:
		return TonePositive
	case TrendingUnknown:
		return ToneMuted
	}
	return ToneNeutral
}

// Severity is an anomaly severity class.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
	SeverityUnknown  Severity = "Unknown"
)

// SeverityOf classifies an anomaly score in [0, 1].
func SeverityOf(score float64) Severity {
	if math.IsNaN(score) {
		return SeverityUnknown
	}
	switch {
	case score >= 0.8:
		return SeverityCritical
	case score >= 0.5:
		return SeverityHigh
	case score >= 0.3:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Tone returns the coloring group.
func (s Severity) Tone() Tone {
	switch s {
	case SeverityCritical:
		return ToneStrongNegative
	case SeverityHigh:
		return ToneNegative
	case SeverityMedium:
		return ToneWarning
	case SeverityUnknown:
		return ToneMuted
	}
	return ToneNeutral
}

// Rank orders severities for sorting, Critical first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// Relevance maps a similarity distance in [0, 2] to a percentage:
// 0 → 100, 2 → 0. Values outside the range are clamped; NaN reads as 0.
func Relevance(similarity float64) float64 {
	if math.IsNaN(similarity) {
		return 0
	}
	s := math.Min(math.Max(similarity, 0), 2)
	return (1 - s/2) * 100
}

// Percent formats a fraction in [0, 1] as "42%"; nil and NaN print "n/a".
func Percent(f *float64) string {
	v, ok := known(f)
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%%", v*100)
}

// Signed formats a score with an explicit sign, e.g. "+0.42"; nil prints "n/a".
func Signed(f *float64) string {
	v, ok := known(f)
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f", v)
}

func known(f *float64) (float64, bool) {
	if f == nil || math.IsNaN(*f) {
		return 0, false
	}
	return *f, true
}
