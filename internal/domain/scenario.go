package domain

// BackRunStage is one staged sell executed by the attacker after the
// victim's trade in a replayed scenario.
type BackRunStage struct {
	TokensSold   uint64
	SolReceived  uint64
	NetLamports  int64   // proceeds minus attributed entry cost and gas
	PriceAfter   float64 // curve price after the stage
}

// ScenarioResult captures one hypothetical sandwich replayed against
// fresh bonding-curve reserves: the victim's baseline execution with no
// attack, the attacked execution, and the attacker's staged exit.
type ScenarioResult struct {
	RunID string

	// Victim intent
	VictimSolIn     uint64
	VictimMinTokens uint64

	// Executions
	BaselineTokensOut uint64 // victim tokens with no attack
	FrontRunSolIn     uint64
	FrontRunTokensOut uint64
	VictimTokensOut   uint64 // victim tokens after the front-run

	// Economics
	ExtractedLamports   uint64 // victim overpayment vs baseline
	BackRuns            []BackRunStage
	AttackerNetLamports int64
}
