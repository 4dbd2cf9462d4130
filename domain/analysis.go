package domain

// AnalysisRequest is a resolved multi-scenario analysis.
type AnalysisRequest struct {
	General   DealParameters                 `json:"general"`
	Scenarios map[string]ScenarioAssumptions `json:"scenarios"`
}

type AnalysisResponse struct {
	AnalysisID string                    `json:"analysisId"`
	Cached     bool                      `json:"cached"`
	Results    map[string]ScenarioResult `json:"results"`
	Errors     map[string]string         `json:"errors,omitempty"`
}

type SensitivityResponse struct {
	Points    []SensitivityPoint            `json:"points,omitempty"`
	Scenarios map[string][]SensitivityPoint `json:"scenarios,omitempty"`
	Errors    map[string]string             `json:"errors,omitempty"`
}
