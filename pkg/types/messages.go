package types

// Client -> Server
// InitDraft: {}                       (pool comes from the server catalog)
// DraftPick:        algorithm_id: string
// SubmitAction:     action: "attack" | "switch" | "boost" | "defend", target?: string
// ChallengeResult:  accuracy: number (0-100)
// Reset: {}
const (
	MsgInitDraft       = "InitDraft"
	MsgDraftPick       = "DraftPick"
	MsgSubmitAction    = "SubmitAction"
	MsgChallengeResult = "ChallengeResult"
	MsgReset           = "Reset"
)

// Server -> Client
// StateSnapshot: snapshot (see Snapshot)
// Error:         error: string
const (
	MsgStateSnapshot = "StateSnapshot"
	MsgError         = "Error"
)
