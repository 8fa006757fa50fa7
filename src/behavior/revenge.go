package behavior

import "journalapi/src/model"

// DetectRevengeTrading scans a newest-first trade window for revenge
// sequences: a loss followed within 15 minutes by a trade whose volume is
// more than 1.3x the losing trade's volume. Both trades of every qualifying
// pair are flagged.
//
// The returned ids are ordered loss-then-follow-up per pair. A trade that
// participates in two overlapping sequences appears twice; callers treat the
// list as evidence, not a set.
func DetectRevengeTrading(trades []model.Trade) []uint {
	if len(trades) < 2 {
		return nil
	}

	var flagged []uint

	// trades[i] is the follow-up, trades[i+1] the earlier trade.
	for i := 0; i+1 < len(trades); i++ {
		followUp := trades[i]
		loss := trades[i+1]

		if !loss.IsLoss() {
			continue
		}

		gap := followUp.CreatedAt.Sub(loss.CreatedAt)
		if gap < 0 || gap >= RevengeMaxGap {
			continue
		}

		// A zero or missing volume would make the ratio unbounded.
		lossVolume := loss.Volume
		if lossVolume == 0 {
			lossVolume = 1
		}

		if followUp.Volume/lossVolume > RevengeVolumeRatio {
			flagged = append(flagged, loss.ID, followUp.ID)
		}
	}

	return flagged
}
