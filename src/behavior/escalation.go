package behavior

import "journalapi/src/model"

// DetectLotSizeEscalation inspects the three most-recent trades of a
// newest-first window. Volumes must be strictly decreasing in list order
// (i.e. strictly increasing chronologically) and the newest volume must
// exceed the oldest by more than 1.5x. Returns the ratio and whether the
// escalation fired.
func DetectLotSizeEscalation(trades []model.Trade) (float64, bool) {
	if len(trades) < EscalationMinTrades {
		return 0, false
	}

	volumes := make([]float64, EscalationMinTrades)
	for i := 0; i < EscalationMinTrades; i++ {
		v := trades[i].Volume
		if v == 0 {
			v = MissingVolumeDefault
		}
		volumes[i] = v
	}

	if !(volumes[0] > volumes[1] && volumes[1] > volumes[2]) {
		return 0, false
	}

	ratio := volumes[0] / volumes[2]
	if ratio <= EscalationRatio {
		return 0, false
	}

	return ratio, true
}
