package messagequeue

// ScenarioCompiledPayload is the schema for scenario.compiled messages.
type ScenarioCompiledPayload struct {
	CompileID    string   `json:"compile_id"`
	Services     []string `json:"services"`     // in rendering order
	Participants []string `json:"participants"` // declaration order
	Secrets      []string `json:"secrets"`      // placeholder names, sorted
}
