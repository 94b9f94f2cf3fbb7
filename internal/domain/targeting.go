package domain

// SelectTargets returns every customer profile whose tag set intersects the
// chosen tags. An empty chosen set selects zero targets: a broadcast requires
// explicit opt-in, so omitting the filter must never address the entire
// customer base.
func SelectTargets(customers []ConversationProfile, chosenTags []string) []ConversationProfile {
	if len(chosenTags) == 0 {
		return nil
	}
	chosen := make(map[string]struct{}, len(chosenTags))
	for _, tag := range chosenTags {
		chosen[tag] = struct{}{}
	}

	var out []ConversationProfile
	for _, customer := range customers {
		for _, tag := range customer.Tags {
			if _, ok := chosen[tag]; ok {
				out = append(out, customer)
				break
			}
		}
	}
	return out
}
