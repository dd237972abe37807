package recurring

import (
	"github.com/google/uuid"

	"github.com/gnuhannes/my-private-finances/internal/domain"
)

// Merge reconciles a detection run with the stored patterns of an account.
//
// Matched patterns get their financial fields refreshed and are reactivated
// unless the user confirmed them. Stored patterns the run did not produce
// are deactivated unless user confirmed; nothing is deleted.
func Merge(accountID uuid.UUID, detections []Detection, existing []*domain.RecurringPattern) *domain.RecurringMerge {
	merge := &domain.RecurringMerge{AccountID: accountID}

	byKey := make(map[domain.PatternKey]*domain.RecurringPattern, len(existing))
	for _, p := range existing {
		byKey[p.Key()] = p
	}

	seen := make(map[domain.PatternKey]bool, len(detections))
	for _, d := range detections {
		key := domain.PatternKey{Payee: domain.NormalizePayee(d.Payee), Frequency: d.Frequency}
		seen[key] = true

		pattern, ok := byKey[key]
		if !ok {
			pattern = &domain.RecurringPattern{
				ID:        uuid.New(),
				AccountID: accountID,
				Payee:     key.Payee,
				Frequency: d.Frequency,
				IsActive:  true,
			}
		}

		pattern.TypicalAmount = d.TypicalAmount.Round(2)
		pattern.Confidence = d.Confidence.Round(2)
		pattern.LastSeen = domain.Date(d.LastSeen)
		pattern.OccurrenceCount = d.OccurrenceCount
		pattern.CategoryID = d.CategoryID

		if ok {
			if !pattern.UserConfirmed {
				pattern.IsActive = true
			}
			merge.Updated = append(merge.Updated, pattern)
		} else {
			merge.Created = append(merge.Created, pattern)
		}
	}

	for _, p := range existing {
		if seen[p.Key()] || p.UserConfirmed || !p.IsActive {
			continue
		}
		p.IsActive = false
		merge.Deactivated = append(merge.Deactivated, p)
	}

	return merge
}
