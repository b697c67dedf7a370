package fetcher

// ProviderRecord is one provider entry of a daily response.
type ProviderRecord struct {
	Name    string        `json:"name"`
	Metrics []Observation `json:"metrics"`
}

// Observation is a single metric value recorded for a provider.
type Observation struct {
	Label     string `json:"label"`
	Value     Value  `json:"defaultValue"`
	CreatedAt string `json:"createdAt"`
}
