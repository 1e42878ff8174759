package rubric

// Default returns the built-in rubric used when no rubric is configured or
// a configured one fails validation. Callers inject it at the boundary; the
// evaluation engine itself never reaches for it.
func Default() *Rubric {
	return &Rubric{
		Name:        "default",
		Description: "Built-in demo evaluation rubric",
		Method:      MethodWeightedMean,
		Criteria: []Criterion{
			{ID: "technical_accuracy", Label: "Technical Accuracy", Description: "Correctness of technical claims and explanations", Weight: 0.30},
			{ID: "clarity", Label: "Clarity", Description: "How easy the explanation is to follow", Weight: 0.25},
			{ID: "completeness", Label: "Completeness", Description: "Coverage of key features and flows", Weight: 0.20},
			{ID: "production_quality", Label: "Production Quality", Description: "Audio clarity and pacing", Weight: 0.05},
			{ID: "value_demonstration", Label: "Value Demonstration", Description: "Articulation of business/customer value", Weight: 0.15},
			{ID: "multimodal_alignment", Label: "Multimodal Alignment", Description: "Transcript and visuals are consistent", Weight: 0.05},
		},
		Scale:      Scale{Min: 1, Max: 10},
		Thresholds: Thresholds{Pass: 6.5, Revise: 5.0},
	}
}
