package variant

import (
	"math/rand"
	"strings"
)

const (
	// OptionCount is the number of answers offered in buttons mode.
	OptionCount = 4
	// distractorWindow is the half-width of the neighbourhood distractors come from.
	distractorWindow = 5
)

// Options returns OptionCount distinct positive values including correct, in
// random order. Distractors are drawn uniformly without replacement from
// [max(1, correct-5), correct+5]; when that window holds fewer than three
// candidates the upper bound grows in steps of five.
func Options(rnd *rand.Rand, correct int) []int {
	lo := correct - distractorWindow
	if lo < 1 {
		lo = 1
	}
	hi := correct + distractorWindow
	candidates := candidatesIn(lo, hi, correct)
	for len(candidates) < OptionCount-1 {
		hi += distractorWindow
		candidates = candidatesIn(lo, hi, correct)
	}

	rnd.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	options := make([]int, 0, OptionCount)
	options = append(options, correct)
	options = append(options, candidates[:OptionCount-1]...)
	rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

func candidatesIn(lo, hi, correct int) []int {
	if hi < lo {
		return nil
	}
	out := make([]int, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		if v != correct {
			out = append(out, v)
		}
	}
	return out
}

// TextOptions returns file-supplied options, appending the answer when it is
// missing and shuffling in that case so it is not always last.
func TextOptions(rnd *rand.Rand, answer string, options []string) []string {
	out := make([]string, len(options))
	copy(out, options)
	for _, opt := range out {
		if strings.EqualFold(strings.TrimSpace(opt), strings.TrimSpace(answer)) {
			return out
		}
	}
	out = append(out, answer)
	rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
