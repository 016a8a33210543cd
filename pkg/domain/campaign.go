package domain

// CampaignConfig is the full ad-platform payload assembled before publishing.
type CampaignConfig struct {
	Campaign CampaignSpec `json:"campaign"`
	AdSet    AdSetSpec    `json:"adset"`
	Ad       AdSpec       `json:"ad"`
}

// CampaignSpec describes the top-level campaign object.
type CampaignSpec struct {
	Name                string   `json:"name"`
	Objective           string   `json:"objective"`
	SpecialAdCategories []string `json:"special_ad_categories"`
}

// AdSetSpec describes budget, schedule and audience.
type AdSetSpec struct {
	Name             string    `json:"name"`
	DailyBudget      int64     `json:"daily_budget"`                // minor currency units
	BillingEvent     string    `json:"billing_event,omitempty"`
	OptimizationGoal string    `json:"optimization_goal,omitempty"`
	Targeting        Targeting `json:"targeting"`
}

// Targeting is the audience definition of an ad set.
type Targeting struct {
	Countries []string `json:"countries,omitempty"`
	AgeMin    int      `json:"age_min,omitempty"`
	AgeMax    int      `json:"age_max,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

// AdSpec is the creative copy of the ad.
type AdSpec struct {
	Name         string `json:"name"`
	Headline     string `json:"headline"`
	PrimaryText  string `json:"primary_text"`
	Description  string `json:"description,omitempty"`
	CallToAction string `json:"call_to_action"`
	Link         string `json:"link"`
}

// Clone deep-copies the configuration.
func (c *CampaignConfig) Clone() *CampaignConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.Campaign.SpecialAdCategories = cloneSlice(c.Campaign.SpecialAdCategories)
	out.AdSet.Targeting.Countries = cloneSlice(c.AdSet.Targeting.Countries)
	out.AdSet.Targeting.Interests = cloneSlice(c.AdSet.Targeting.Interests)
	return &out
}
