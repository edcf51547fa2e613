// Package consensus hosts the proof-of-work math shared by block sealing
// and chain validation: the sealing primitive (Seal) and the difficulty
// retarget function (Difficulty). Factoring these out of core/types and
// core/chain keeps the retarget computation's determinism contract in one
// place, mirroring the separation between a consensus engine and the
// miner that drives it.
package consensus

// TargetBlockTime is the desired spacing between blocks, in seconds.
const TargetBlockTime = 10

// AdjustmentInterval is the width, in blocks, of the timing window each
// retarget compares against TargetBlockTime.
const AdjustmentInterval = 5

// Difficulty returns the difficulty that should apply to the block that
// would extend a chain whose existing blocks (genesis first) have the
// given timestamps, carrying forward from an initial difficulty value.
// No other input may influence the result: the same prefix must always
// yield the same expected difficulty, because chain validation calls
// this once per block — against each growing prefix — to defend against
// a long chain mined at trivial difficulty.
//
// The retarget is re-evaluated on every block once the chain reaches
// ADJUSTMENT_INTERVAL+1 blocks, each time comparing the spacing between
// the current tip and the block ADJUSTMENT_INTERVAL positions back
// against TARGET_BLOCK_TIME, and threading the resulting difficulty
// forward one block at a time (not in fixed epochs).
func Difficulty(timestamps []int64, initial int) int {
	difficulty := initial
	expected := int64(TargetBlockTime * AdjustmentInterval)
	for length := AdjustmentInterval + 1; length <= len(timestamps); length++ {
		actual := timestamps[length-1] - timestamps[length-1-AdjustmentInterval]
		switch {
		case actual < expected/2:
			difficulty++
		case actual > expected*2:
			if difficulty > 0 {
				difficulty--
			}
		}
	}
	return difficulty
}
