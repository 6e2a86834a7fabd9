package domain

// FrontRunEvent records a victim trade together with the bot trades
// that executed before it in the same direction.
type FrontRunEvent struct {
	Victim    *TradeFact
	FrontRuns []*TradeFact
}

// BackRunEvent records a victim trade together with the bot trades
// that executed after it in the opposite direction.
type BackRunEvent struct {
	Victim   *TradeFact
	BackRuns []*TradeFact
}

// SandwichDetection is a victim bracketed by at least one front-run and
// one back-run leg, with the attackers' aggregate result over all legs.
type SandwichDetection struct {
	Victim        *TradeFact
	FrontRuns     []*TradeFact
	BackRuns      []*TradeFact
	NetProfitSol  int64 // sum of leg lamport deltas
	NetTokenDelta int64 // sum of leg token deltas
}

// DetectionSummary is the full output of one detection run. Events
// appear in ascending slot order of their victims; a victim may appear
// in more than one sequence.
type DetectionSummary struct {
	FrontRuns  []FrontRunEvent
	BackRuns   []BackRunEvent
	Sandwiches []SandwichDetection
}
