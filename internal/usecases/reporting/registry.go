package reporting

import "github.com/vfg2006/ads-insights-api/internal/domain"

// Registry holds the report catalog in display order.
type Registry struct {
	order []string
	byKey map[string]*Definition
}

// NewRegistry builds the full catalog.
func NewRegistry() *Registry {
	defs := []*Definition{
		campaignsDefinition(),
		budgetsDefinition(),
		adGroupsDefinition(),
		keywordsDefinition(),
		searchTermsDefinition(),
		searchTermGapDefinition(),
		adsDefinition(),
		devicesDefinition(),
		ageRangesDefinition(),
		gendersDefinition(),
		locationsDefinition(),
		landingPagesDefinition(),
		conversionActionsDefinition(),
		hourOfDayDefinition(),
		dayOfWeekDefinition(),
		changeHistoryDefinition(),
	}

	r := &Registry{
		order: make([]string, 0, len(defs)),
		byKey: make(map[string]*Definition, len(defs)),
	}
	for _, def := range defs {
		r.order = append(r.order, def.Key)
		r.byKey[def.Key] = def
	}
	return r
}

// Get looks a definition up by its report key.
func (r *Registry) Get(key string) (*Definition, bool) {
	def, ok := r.byKey[key]
	return def, ok
}

// Keys lists every report key in display order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

// weeklyBlocks is the condensed constituent set of the weekly digest. The AI
// analysis uses every block in the catalog.
var weeklyBlocks = []string{
	KeyCampaigns,
	KeyKeywords,
	KeySearchTerms,
	KeyDevices,
	KeyConversionActions,
}

// ForKind returns the constituent definitions of one composite report kind.
func (r *Registry) ForKind(kind domain.ReportKind) []*Definition {
	if kind == domain.KindWeekly {
		defs := make([]*Definition, 0, len(weeklyBlocks))
		for _, key := range weeklyBlocks {
			defs = append(defs, r.byKey[key])
		}
		return defs
	}

	defs := make([]*Definition, 0, len(r.order))
	for _, key := range r.order {
		defs = append(defs, r.byKey[key])
	}
	return defs
}
