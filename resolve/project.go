package resolve

import "crm-api/domain"

// ProjectStages overlays each contact's Stage from the pipeline collection,
// which is authoritative. Contacts without a pipeline item keep whatever
// stage value they already carry (absent means "New" at display time). When a
// contact has several items, the most recently active one wins.
func ProjectStages(contacts []domain.Contact, items []domain.PipelineItem) []domain.Contact {
	latest := make(map[string]domain.PipelineItem, len(items))
	for _, item := range items {
		if item.ContactID == "" {
			continue
		}
		current, ok := latest[item.ContactID]
		if !ok || item.LastActivity.After(current.LastActivity) {
			latest[item.ContactID] = item
		}
	}
	out := make([]domain.Contact, len(contacts))
	copy(out, contacts)
	for i := range out {
		if item, ok := latest[out[i].ID]; ok {
			out[i].Stage = string(item.Stage)
		}
	}
	return out
}
