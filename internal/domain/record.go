package domain

// DetectionKind labels what pattern a persisted detection describes.
type DetectionKind string

const (
	KindFrontRun DetectionKind = "front_run"
	KindBackRun  DetectionKind = "back_run"
	KindSandwich DetectionKind = "sandwich"
)

// DetectionRecord is the flattened, persistable form of one detection
// event. Leg trades are referenced by signature; the full facts live in
// the trade fact store.
type DetectionRecord struct {
	DetectionID        string
	Kind               DetectionKind
	Mint               string
	VictimSignature    string
	VictimSlot         uint64
	FrontRunSignatures []string
	BackRunSignatures  []string
	NetProfitSol       int64
	NetTokenDelta      int64
}
