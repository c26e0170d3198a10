package domain

// DeriveStatus maps a store's audit history to its lifecycle status.
// 店舗ステータスは監査履歴からのみ導出される純関数で、単発再計算と
// 一括再計算の両方がこの関数を共有することで優先順位のズレを防ぐ。
//
// Evaluation order is significant:
//  1. any audit with result pass        -> passed
//  2. else any audit with result fail   -> failed
//  3. else any audit with >= 1 image    -> audited
//  4. else                              -> not_audited
//
// A store holding both pass and fail audits therefore resolves to passed.
// Placeholder audits never contribute a judgment.
func DeriveStatus(audits []Audit) Status {
	anyFail := false
	anyEvidence := false
	for _, audit := range audits {
		if result, ok := audit.EffectiveResult(); ok {
			if result == ResultPass {
				return StatusPassed
			}
			anyFail = true
		}
		if audit.HasEvidence() {
			anyEvidence = true
		}
	}
	if anyFail {
		return StatusFailed
	}
	if anyEvidence {
		return StatusAudited
	}
	return StatusNotAudited
}
